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

// Package conn implements the connection core (§3, §4.4-§4.6): the
// Connection type that owns one connected socket, coalesces outbound writes,
// recycles receive buffers through a shared pool, and delivers received byte
// ranges to a single registered consumer.
//
// The spec is written against an OS-completion-callback model (a
// SocketAsyncEventArgs-style "did it fire async?" bifurcation). Go's net.Conn
// already blocks the calling goroutine on Read/Write, so that bifurcation
// collapses: the outbound drain and the inbound arm loop each run on their
// own dedicated goroutine and is never re-entered recursively (the receive
// loop is started once by InitSocket; a drain loop is started by EnqueueSend
// whenever none is running, and at most one runs at a time), so
// producer calls (EnqueueSend, ReceiveAsync) never block on socket I/O. See
// DESIGN.md for the full list of such deliberate translations.
package conn

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	liberr "github.com/nabbar/tcpsock/errors"
	"github.com/nabbar/tcpsock/socket"
	"github.com/nabbar/tcpsock/socket/bufpool"
	"github.com/nabbar/tcpsock/socket/config"
	"github.com/nabbar/tcpsock/socket/monitor"
	"github.com/nabbar/tcpsock/socket/oppool"
)

// Counters are the advisory, monotonic per-connection counters of §3.
type Counters struct {
	PacketsSent     uint64
	PacketsReceived uint64
	BytesSent       uint64
	BytesReceived   uint64
	AsyncSendCalls  uint64
	AsyncRecvCalls  uint64
	AsyncCallbacks  uint64
}

// Connection owns one connected socket (§3). The zero value is not usable;
// construct with NewUnbound followed by InitSocket, or via the client/tcp
// and server/tcp factories.
type Connection struct {
	id     string
	remote string

	cfg     config.Config
	bufPool bufpool.Pool
	ctxPool oppool.Pool
	mon     monitor.Monitor
	log     logrus.FieldLogger

	onClosed func(error)

	sockMu sync.Mutex
	sock   net.Conn

	sendMu       sync.Mutex
	sendQueue    [][]byte
	sendInFlight bool
	sendCtx      *oppool.Context

	receiveMu    sync.Mutex
	consumer     func([]FilledRange)
	receiveQueue []queuedRange

	rcvCtxMu sync.Mutex
	rcvCtx   *oppool.Context

	closed atomic.Bool

	packetsSent     atomic.Uint64
	packetsReceived atomic.Uint64
	bytesSent       atomic.Uint64
	bytesReceived   atomic.Uint64
	asyncSendCalls  atomic.Uint64
	asyncRecvCalls  atomic.Uint64
	asyncCallbacks  atomic.Uint64
}

// NewUnbound constructs a Connection with no socket yet. It is not
// operational until InitSocket succeeds (§3 "Lifecycle").
//
// onClosed, if non-nil, is invoked exactly once when the connection closes,
// carrying the terminal error: nil for an explicit Close, and for a peer
// close the read's io.EOF (or a PeerClosed error when a zero-byte read
// reports no error).
func NewUnbound(remote string, cfg config.Config, bufPool bufpool.Pool, ctxPool oppool.Pool, mon monitor.Monitor, log logrus.FieldLogger, onClosed func(error)) *Connection {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Connection{
		id:       uuid.NewString(),
		remote:   remote,
		cfg:      cfg,
		bufPool:  bufPool,
		ctxPool:  ctxPool,
		mon:      mon,
		log:      log,
		onClosed: onClosed,
	}
}

// ID returns the generated correlation ID for this connection, stable for
// its whole lifetime, used to disambiguate log lines across multiplexed
// connections.
func (c *Connection) ID() string {
	return c.id
}

// noDelaySetter is satisfied by *net.TCPConn; init_socket disables Nagle
// when the underlying socket supports it (§3 "init_socket").
type noDelaySetter interface {
	SetNoDelay(bool) error
}

// InitSocket transitions the connection Unbound -> Open (§4.6). It acquires
// both operation contexts, disables Nagle's algorithm when possible, and
// arms the first receive. If the socket is already disposed, init
// short-circuits straight to Closed.
func (c *Connection) InitSocket(sock net.Conn) error {
	if sock == nil {
		return liberr.ProgrammingError.Error()
	}

	c.sockMu.Lock()
	c.sock = sock
	c.sockMu.Unlock()

	if nd, ok := sock.(noDelaySetter); ok {
		if err := nd.SetNoDelay(true); err != nil {
			c.closeInternal(err)
			return nil
		}
	}

	c.sendCtx = c.ctxPool.Get()
	c.sendCtx.BindSocket(sock)

	c.rcvCtx = c.ctxPool.Get()
	c.rcvCtx.BindSocket(sock)

	go c.receiveLoop()

	return nil
}

// RemoteAddr returns the peer address of the underlying socket, or nil if
// the connection has been closed.
func (c *Connection) RemoteAddr() net.Addr {
	c.sockMu.Lock()
	defer c.sockMu.Unlock()
	if c.sock == nil {
		return nil
	}
	return c.sock.RemoteAddr()
}

// LocalAddr returns the local address of the underlying socket, or nil if
// the connection has been closed.
func (c *Connection) LocalAddr() net.Addr {
	c.sockMu.Lock()
	defer c.sockMu.Unlock()
	if c.sock == nil {
		return nil
	}
	return c.sock.LocalAddr()
}

// EffectiveEndpoint returns the remote endpoint string this connection was
// constructed with, stable even after close.
func (c *Connection) EffectiveEndpoint() string {
	return c.remote
}

// IsClosed reports whether close_internal has already run.
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// SendQueueSize returns the current queued slice count (§6 "send_queue_size"),
// advisory only: it can change the instant after it is read.
func (c *Connection) SendQueueSize() int {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return len(c.sendQueue)
}

// Counters returns a snapshot of the advisory counters (§3).
func (c *Connection) Counters() Counters {
	return Counters{
		PacketsSent:     c.packetsSent.Load(),
		PacketsReceived: c.packetsReceived.Load(),
		BytesSent:       c.bytesSent.Load(),
		BytesReceived:   c.bytesReceived.Load(),
		AsyncSendCalls:  c.asyncSendCalls.Load(),
		AsyncRecvCalls:  c.asyncRecvCalls.Load(),
		AsyncCallbacks:  c.asyncCallbacks.Load(),
	}
}

// Close triggers the close protocol (§4.6) with no associated error. It is
// safe to call more than once or concurrently with any other operation.
func (c *Connection) Close() error {
	c.closeInternal(nil)
	return nil
}

// closeInternal implements close_internal (§4.6): idempotent, single-shot,
// returns the send context when no send is in flight (the receive context is
// returned by the receive loop; see the asymmetry documented in §9) and fires
// the connection_closed listener exactly once.
func (c *Connection) closeInternal(err error) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}

	c.mon.Closed()

	if c.cfg.Verbose {
		snap := c.Counters()
		c.log.WithFields(logrus.Fields{
			"conn_id":          c.id,
			"remote":           c.remote,
			"state":            socket.ConnectionClose.String(),
			"packets_sent":     snap.PacketsSent,
			"packets_received": snap.PacketsReceived,
			"bytes_sent":       snap.BytesSent,
			"bytes_received":   snap.BytesReceived,
		}).Info("closing connection")
	}

	c.sockMu.Lock()
	sock := c.sock
	c.sock = nil
	c.sockMu.Unlock()

	if sock != nil {
		closeSocket(sock, c.cfg.SocketCloseTimeout)
	}

	// The send context is returned here only if no send is in flight; an
	// in-flight drain returns it itself once its write call unblocks. The
	// receive context is never touched here at all — it is returned from
	// inside the receive loop's own error path (see receive.go). Reversing
	// either half of this asymmetry risks a double-return race (§9).
	c.sendMu.Lock()
	if !c.sendInFlight && c.sendCtx != nil {
		ctx := c.sendCtx
		c.sendCtx = nil
		c.sendMu.Unlock()
		c.ctxPool.Return(ctx)
	} else {
		c.sendMu.Unlock()
	}

	if c.onClosed != nil {
		c.onClosed(socket.ErrorFilter(err))
	}
}

// closeSocket shuts down both directions and closes the socket, bounding the
// close call with a deadline rather than a true cancellable timeout — net.Conn
// offers no "close with timeout" primitive, so a deadline on the connection
// is the closest equivalent an arbitrary net.Conn supports.
func closeSocket(sock net.Conn, timeout time.Duration) {
	type halfCloser interface {
		CloseRead() error
		CloseWrite() error
	}

	if hc, ok := sock.(halfCloser); ok {
		_ = hc.CloseRead()
		_ = hc.CloseWrite()
	}

	if timeout > 0 {
		_ = sock.SetDeadline(time.Now().Add(timeout))
	}

	_ = sock.Close()
}
