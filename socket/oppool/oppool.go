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

// Package oppool implements the Socket Operation Context Pool (§4.2): a
// small pool of reusable pending-operation descriptors, each bundling a
// buffer pointer, a completion callback slot and a reference to the owning
// socket, so the connection core never allocates one per send/receive.
package oppool

import (
	"net"
	"sync"

	"github.com/nabbar/tcpsock/socket/bufpool"
)

// Context is a reusable descriptor for one pending socket operation.
type Context struct {
	mu   sync.Mutex
	sock net.Conn
	buf  bufpool.Buffer
	cb   func(n int, err error)
}

// BindSocket attaches the owning socket to this context.
func (c *Context) BindSocket(s net.Conn) {
	c.mu.Lock()
	c.sock = s
	c.mu.Unlock()
}

// Socket returns the owning socket, or nil if detached.
func (c *Context) Socket() net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock
}

// BindBuffer attaches the buffer this operation is reading into or writing
// from.
func (c *Context) BindBuffer(b bufpool.Buffer) {
	c.mu.Lock()
	c.buf = b
	c.mu.Unlock()
}

// Buffer returns the currently bound buffer, if any.
func (c *Context) Buffer() (bufpool.Buffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf, c.buf.Valid()
}

// UnbindBuffer clears the buffer binding to (null, 0, 0) so the next arm can
// rebind it.
func (c *Context) UnbindBuffer() {
	c.mu.Lock()
	c.buf = bufpool.Buffer{}
	c.mu.Unlock()
}

// SetListener stores the completion callback for this operation.
func (c *Context) SetListener(cb func(n int, err error)) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

// Listener returns the completion callback, if any.
func (c *Context) Listener() func(n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cb
}

func (c *Context) reset() {
	c.mu.Lock()
	c.sock = nil
	c.buf = bufpool.Buffer{}
	c.cb = nil
	c.mu.Unlock()
}

// Pool hands out and reclaims Context values.
type Pool interface {
	// Get yields a context with all callback slots empty and no attached
	// buffer or socket.
	Get() *Context

	// Return detaches any listener, clears the socket reference and clears
	// any buffer pointer before storing the context back in the pool.
	Return(c *Context)
}

type pool struct {
	p sync.Pool
}

// New constructs a Pool. size is advisory: the underlying sync.Pool may grow
// and shrink under GC pressure regardless, matching the original's "small
// pool" framing without pretending Go offers a hard bound.
func New(size int) Pool {
	return &pool{
		p: sync.Pool{
			New: func() any { return &Context{} },
		},
	}
}

func (p *pool) Get() *Context {
	return p.p.Get().(*Context)
}

func (p *pool) Return(c *Context) {
	if c == nil {
		return
	}
	c.reset()
	p.p.Put(c)
}
