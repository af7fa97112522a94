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

// Package tcp is the from_accepted() factory surface (component 7b),
// supplemented with the accept loop a complete server needs (the
// distillation this module started from dropped it, see SPEC_FULL.md). TLS
// is out of scope, same as for the connection core; New's first argument is
// reserved for it and must be nil.
package tcp

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	liberr "github.com/nabbar/tcpsock/errors"
	errpool "github.com/nabbar/tcpsock/errors/pool"
	"github.com/nabbar/tcpsock/logger"
	"github.com/nabbar/tcpsock/socket/bufpool"
	"github.com/nabbar/tcpsock/socket/config"
	"github.com/nabbar/tcpsock/socket/conn"
	"github.com/nabbar/tcpsock/socket/monitor"
	"github.com/nabbar/tcpsock/socket/oppool"
)

// Handler processes one accepted connection. It is called on its own
// goroutine and owns the bridge until it returns; the server closes the
// bridge itself once Handler returns, mirroring from_accepted's contract
// that the accept loop, not the handler, owns final teardown.
type Handler func(b *conn.Bridge)

// ServerTCP listens on one TCP endpoint and dispatches every accepted
// connection, wrapped as a conn.Bridge, to the registered handler.
type ServerTCP interface {
	Listen(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Close() error
	IsRunning() bool
	IsGone() bool
	OpenConnections() int64
	// Errors returns every non-nil terminal error seen across every
	// connection this server has served so far, in no defined order.
	Errors() []error
}

// Option customizes a server at construction time.
type Option func(*server)

func WithConfig(cfg config.Config) Option {
	return func(s *server) { s.cfg = cfg }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *server) { s.log = log }
}

func WithMonitor(mon monitor.Monitor) Option {
	return func(s *server) { s.mon = mon }
}

type server struct {
	address string
	handler Handler

	cfg     config.Config
	bufPool bufpool.Pool
	ctxPool oppool.Pool
	mon     monitor.Monitor
	log     logrus.FieldLogger

	mu       sync.Mutex
	listener net.Listener
	running  atomic.Bool
	gone     atomic.Bool
	open     atomic.Int64

	// errs aggregates the terminal close error of every connection this
	// server has served, so an operator can inspect what went wrong across
	// the whole accept loop's lifetime rather than per-handler only.
	errs errpool.Pool
}

// New builds a ServerTCP bound to address. tlsReserved must be nil: TLS
// termination is out of scope for this connection core (see SPEC_FULL.md
// Non-goals).
func New(tlsReserved any, handler Handler, cfg config.Config, address string, opts ...Option) (ServerTCP, error) {
	if tlsReserved != nil {
		return nil, liberr.ProgrammingError.Errorf("tls is not supported by this connection core")
	}
	if handler == nil {
		return nil, liberr.ProgrammingError.Error()
	}

	s := &server{
		address: address,
		handler: handler,
		cfg:     cfg,
		log:     logger.Discard(),
		errs:    errpool.New(),
	}

	for _, o := range opts {
		o(s)
	}

	if s.bufPool == nil {
		s.bufPool = bufpool.New(s.cfg.BufferChunksCount, s.cfg.SocketBufferSize)
	}
	if s.ctxPool == nil {
		s.ctxPool = oppool.New(s.cfg.SendReceivePoolSize)
	}
	if s.mon == nil {
		s.mon = monitor.New(nil)
	}

	return s, nil
}

// Listen opens the listening socket and accepts connections until ctx is
// done or Close/Shutdown is called. It blocks for the lifetime of the
// server, matching from_accepted's caller (the accept loop) owning the
// listening socket for as long as the server runs.
func (s *server) Listen(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.running.Store(true)
	defer s.running.Store(false)

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	for {
		sock, aerr := ln.Accept()
		if aerr != nil {
			if s.gone.Load() {
				return nil
			}
			return aerr
		}

		go s.serve(sock)
	}
}

func (s *server) serve(sock net.Conn) {
	s.open.Add(1)
	defer s.open.Add(-1)

	cn := conn.NewUnbound(sock.RemoteAddr().String(), s.cfg, s.bufPool, s.ctxPool, s.mon, s.log, func(err error) {
		s.errs.Add(err)
	})
	bridge := conn.NewBridge(cn)

	if err := cn.InitSocket(sock); err != nil {
		_ = sock.Close()
		return
	}

	defer func() { _ = bridge.Close() }()

	s.handler(bridge)
}

// Shutdown stops accepting new connections and waits for in-flight
// connections to drain on their own; it does not forcibly close them.
func (s *server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.gone.Store(true)
	if ln != nil {
		_ = ln.Close()
	}

	drained := make(chan struct{})
	go func() {
		t := time.NewTicker(5 * time.Millisecond)
		defer t.Stop()
		for s.open.Load() > 0 {
			<-t.C
		}
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new connections immediately, without waiting for
// in-flight connections.
func (s *server) Close() error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()

	s.gone.Store(true)
	if ln != nil {
		return ln.Close()
	}
	return nil
}

// IsRunning reports whether the accept loop is currently active.
func (s *server) IsRunning() bool {
	return s.running.Load()
}

// IsGone reports whether Close or Shutdown has been called.
func (s *server) IsGone() bool {
	return s.gone.Load()
}

// OpenConnections reports the number of connections currently being served.
func (s *server) OpenConnections() int64 {
	return s.open.Load()
}

// Errors returns every non-nil terminal close error collected across every
// connection served so far.
func (s *server) Errors() []error {
	return s.errs.Slice()
}
