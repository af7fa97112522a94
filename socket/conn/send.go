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

package conn

import (
	liberr "github.com/nabbar/tcpsock/errors"
	"github.com/nabbar/tcpsock/socket"
	"github.com/nabbar/tcpsock/socket/oppool"
)

// EnqueueSend implements enqueue_send (§4.4): it copies p into the send
// queue and returns immediately. If no drain is currently running, it starts
// one on a dedicated goroutine; otherwise the running drain will pick the
// new data up on its next pass. Ordering of queued writes relative to each
// other is preserved (send_order, §9).
func (c *Connection) EnqueueSend(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if c.closed.Load() {
		return liberr.SocketDisposed.Error()
	}

	buf := make([]byte, len(p))
	copy(buf, p)

	c.sendMu.Lock()
	c.sendQueue = append(c.sendQueue, buf)
	c.mon.Scheduled(len(buf))
	c.asyncSendCalls.Add(1)

	start := !c.sendInFlight
	if start {
		c.sendInFlight = true
	}
	c.sendMu.Unlock()

	if start {
		go c.drainLoop()
	}

	return nil
}

// drainLoop is the outbound coalescing engine (§4.4). It runs as a tail loop
// on its own goroutine rather than recursing: each pass coalesces every
// buffer currently queued, up to the configured packet ceiling, into one
// socket.Write call, then checks whether more arrived while it was writing
// before deciding to stop. Exactly one drainLoop instance runs at a time for
// a given connection (coalescing_bound, single_consumer, §9).
//
// Drain procedure step 1 (§4.4) bails out whenever the monitor reports
// send-blocked, the same as an empty queue: the queue is left intact and
// sendInFlight cleared, so the next EnqueueSend (or an operator clearing
// send-blocked and then enqueuing) starts a fresh drain.
func (c *Connection) drainLoop() {
	for {
		c.sendMu.Lock()
		if len(c.sendQueue) == 0 || c.mon.IsSendBlocked() {
			c.sendInFlight = false
			ctxToReturn := c.drainReturnCtxLocked()
			c.sendMu.Unlock()
			if ctxToReturn != nil {
				c.ctxPool.Return(ctxToReturn)
			}
			return
		}

		staged, n := c.stageLocked()
		c.sendMu.Unlock()

		if n == 0 {
			continue
		}

		c.mon.SendStarting(n)
		written, err := c.writeStaged(staged[:n])
		c.mon.SendCompleted(written)

		c.packetsSent.Add(1)
		c.bytesSent.Add(uint64(written))

		if err != nil {
			// A failed write ends the drain: hand the send context back here,
			// since closeInternal leaves it alone while a send is in flight.
			c.sendMu.Lock()
			ctx := c.sendCtx
			c.sendCtx = nil
			c.sendMu.Unlock()
			c.ctxPool.Return(ctx)
			c.closeInternal(err)
			return
		}
	}
}

// stageLocked must be called with sendMu held. It drains queued buffers into
// a freshly allocated staging slice bounded by MaxSendPacketSize, leaving any
// remainder (a single oversized buffer, or buffers that did not fit) at the
// front of the queue for the next pass.
func (c *Connection) stageLocked() ([]byte, int) {
	limit := c.cfg.MaxSendPacketSize
	if limit <= 0 {
		limit = socket.MaxSendPacketSize
	}

	staged := make([]byte, 0, limit)
	i := 0
	for i < len(c.sendQueue) {
		b := c.sendQueue[i]
		if len(staged)+len(b) > limit {
			if len(staged) == 0 {
				// A single buffer exceeds the ceiling: send it whole on its
				// own pass rather than deadlock waiting for room.
				staged = append(staged, b...)
				i++
			}
			break
		}
		staged = append(staged, b...)
		i++
	}

	c.sendQueue = c.sendQueue[i:]
	return staged, len(staged)
}

// drainReturnCtxLocked is called whenever the drain stops (empty queue or
// send-blocked). If the connection has already been closed it takes the send
// context, whose return close_internal deferred while a drain was in flight,
// and hands it to the caller; otherwise it returns nil. Must be called with
// sendMu held.
func (c *Connection) drainReturnCtxLocked() *oppool.Context {
	if !c.closed.Load() || c.sendCtx == nil {
		return nil
	}
	ctx := c.sendCtx
	c.sendCtx = nil
	return ctx
}

// writeStaged performs the single blocking socket.Write call for one
// coalesced pass, filtering the common "already closed" races down to nil
// (error_classification, §5).
func (c *Connection) writeStaged(p []byte) (int, error) {
	c.sendMu.Lock()
	ctx := c.sendCtx
	c.sendMu.Unlock()

	if ctx == nil {
		return 0, liberr.SocketDisposed.Error()
	}

	sock := ctx.Socket()
	if sock == nil {
		return 0, liberr.SocketDisposed.Error()
	}

	n, err := sock.Write(p)
	if err != nil {
		if filtered := socket.ErrorFilter(err); filtered == nil {
			return n, nil
		}
		return n, liberr.TransportError.Error(err)
	}
	return n, nil
}
