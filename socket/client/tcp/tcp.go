/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package tcp is the connect() factory surface (component 7a): it dials a
// TCP endpoint and hands back a synchronous io.Reader/io.Writer facade over
// the asynchronous connection core in package conn. TLS, connection
// pooling, and reconnection are out of scope here, same as for the
// connection core itself.
package tcp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nabbar/tcpsock/logger"
	"github.com/nabbar/tcpsock/socket"
	"github.com/nabbar/tcpsock/socket/bufpool"
	"github.com/nabbar/tcpsock/socket/config"
	"github.com/nabbar/tcpsock/socket/conn"
	"github.com/nabbar/tcpsock/socket/monitor"
	"github.com/nabbar/tcpsock/socket/oppool"
)

// ErrAddress is returned by New when the given address is empty or cannot
// be resolved as a TCP endpoint.
var ErrAddress = errors.New("invalid or unresolvable tcp address")

// Option customizes a ClientTCP at construction time.
type Option func(*ClientTCP)

// WithConfig overrides the default connection configuration.
func WithConfig(cfg config.Config) Option {
	return func(c *ClientTCP) { c.cfg = cfg }
}

// WithLogger overrides the default (discarding) logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *ClientTCP) { c.log = log }
}

// WithMonitor overrides the default (unregistered) connection monitor.
func WithMonitor(mon monitor.Monitor) Option {
	return func(c *ClientTCP) { c.mon = mon }
}

// ClientTCP dials one remote endpoint and exposes it as an io.ReadWriteCloser.
type ClientTCP struct {
	address  string
	resolved *net.TCPAddr

	cfg     config.Config
	bufPool bufpool.Pool
	ctxPool oppool.Pool
	mon     monitor.Monitor
	log     logrus.FieldLogger

	mu     sync.Mutex
	b      *conn.Bridge
	errFn  func(...error)
	infoFn func(local, remote net.Addr, state socket.ConnState)
}

// New validates address and returns an unconnected client. Call Connect to
// actually dial.
func New(address string, opts ...Option) (*ClientTCP, error) {
	if address == "" {
		return nil, ErrAddress
	}

	resolved, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, ErrAddress
	}

	c := &ClientTCP{
		address:  address,
		resolved: resolved,
		cfg:      config.Default(),
		log:      logger.Discard(),
	}

	for _, o := range opts {
		o(c)
	}

	if c.bufPool == nil {
		c.bufPool = bufpool.New(c.cfg.BufferChunksCount, c.cfg.SocketBufferSize)
	}
	if c.ctxPool == nil {
		c.ctxPool = oppool.New(c.cfg.SendReceivePoolSize)
	}
	if c.mon == nil {
		c.mon = monitor.New(nil)
	}

	return c, nil
}

// RegisterFuncError registers the callback invoked with any terminal
// connection error. Passing nil unregisters it.
func (c *ClientTCP) RegisterFuncError(fn func(...error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errFn = fn
}

// RegisterFuncInfo registers the callback invoked on every lifecycle state
// transition this client drives directly (dial, new). Passing nil
// unregisters it.
func (c *ClientTCP) RegisterFuncInfo(fn func(local, remote net.Addr, state socket.ConnState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infoFn = fn
}

func (c *ClientTCP) notifyInfo(local, remote net.Addr, state socket.ConnState) {
	c.mu.Lock()
	fn := c.infoFn
	c.mu.Unlock()
	if fn != nil {
		fn(local, remote, state)
	}
}

// Connect dials the configured address and arms reception. It blocks until
// the dial completes or ctx is done.
func (c *ClientTCP) Connect(ctx context.Context) error {
	c.notifyInfo(nil, c.resolved, socket.ConnectionDial)

	var d net.Dialer
	sock, err := d.DialContext(ctx, "tcp", c.address)
	if err != nil {
		c.mu.Lock()
		fn := c.errFn
		c.mu.Unlock()
		if fn != nil {
			fn(err)
		}
		return err
	}

	cn := conn.NewUnbound(c.address, c.cfg, c.bufPool, c.ctxPool, c.mon, c.log, func(closeErr error) {
		c.mu.Lock()
		fn := c.errFn
		c.mu.Unlock()
		if fn != nil && closeErr != nil {
			fn(closeErr)
		}
	})

	bridge := conn.NewBridge(cn)

	if err = cn.InitSocket(sock); err != nil {
		_ = sock.Close()
		return err
	}

	c.mu.Lock()
	c.b = bridge
	c.mu.Unlock()

	c.notifyInfo(sock.LocalAddr(), sock.RemoteAddr(), socket.ConnectionNew)

	return nil
}

// IsConnected reports whether a socket has been dialed and not yet closed.
func (c *ClientTCP) IsConnected() bool {
	c.mu.Lock()
	b := c.b
	c.mu.Unlock()
	return b != nil && !b.Connection().IsClosed()
}

// Write enqueues p on the outbound coalescing engine and reports it fully
// queued; actual transmission happens asynchronously.
func (c *ClientTCP) Write(p []byte) (int, error) {
	c.mu.Lock()
	b := c.b
	c.mu.Unlock()
	if b == nil {
		return 0, socket.ErrNotConnected
	}
	return b.Write(p)
}

// Read blocks until at least one received byte range is available, copying
// as much as fits into p.
func (c *ClientTCP) Read(p []byte) (int, error) {
	c.mu.Lock()
	b := c.b
	c.mu.Unlock()
	if b == nil {
		return 0, socket.ErrNotConnected
	}
	return b.Read(p)
}

// Once writes the full contents of req, then invokes fn with a reader over
// whatever comes back, a one-shot request/response convenience for
// protocols that do not need a persistent connection.
func (c *ClientTCP) Once(ctx context.Context, req io.Reader, fn func(io.Reader)) error {
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(req); err != nil {
		return err
	}
	if _, err := c.Write(buf.Bytes()); err != nil {
		return err
	}

	fn(c)
	return nil
}

// Close tears the underlying connection down via the shared close protocol.
func (c *ClientTCP) Close() error {
	c.mu.Lock()
	b := c.b
	c.mu.Unlock()
	if b == nil {
		return nil
	}
	return b.Close()
}
