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
	"context"

	liberr "github.com/nabbar/tcpsock/errors"
	"github.com/nabbar/tcpsock/socket"
)

// FilledRange is a received byte range backed by a pooled buffer. Bytes()
// narrows to the portion the socket actually filled; Release must still be
// called exactly once regardless, and it checks the full loaned buffer back
// in, never the narrowed view — a release action that only referenced the
// filled sub-range would under-report the buffer's real extent to the pool
// (buffer_accounting, §9).
type FilledRange struct {
	full    []byte
	filled  int
	release func()
}

// Bytes returns the filled portion of the underlying buffer. The slice is
// only valid until Release is called.
func (f FilledRange) Bytes() []byte {
	return f.full[:f.filled]
}

// Len returns the number of bytes actually received into this range.
func (f FilledRange) Len() int {
	return f.filled
}

// Release returns the backing buffer to the pool. Safe to call at most
// once; the dispatch loop calls it automatically after the registered
// consumer returns, so callers normally never call it themselves.
func (f FilledRange) Release() {
	if f.release != nil {
		f.release()
	}
}

// queuedRange pairs a delivered FilledRange with nothing else — kept as its
// own type so dispatch can grow additional bookkeeping later without
// changing FilledRange's public shape.
type queuedRange struct {
	r FilledRange
}

// SetConsumer registers the single callback that receives the next
// dispatched batch (single_consumer, §9). The slot is cleared again by
// dispatch right before the callback runs, so re-registering synchronously
// from within the callback's own invocation, the normal pattern for staying
// armed across batches, succeeds. Registering while a different
// registration is still pending (no dispatch has cleared it yet) is a
// programming error.
func (c *Connection) SetConsumer(fn func([]FilledRange)) error {
	c.receiveMu.Lock()
	defer c.receiveMu.Unlock()

	if c.consumer != nil {
		return liberr.ProgrammingError.Error()
	}
	c.consumer = fn
	return nil
}

// ReceiveAsync implements the receive_async(callback) entry point (§4.5,
// §6): it registers callback as consumer for the next dispatched batch,
// counting the call. Receiving itself is continuously armed by receiveLoop
// from InitSocket onward; ReceiveAsync only binds who gets told about the
// next batch, with the same re-registration semantics as SetConsumer.
func (c *Connection) ReceiveAsync(callback func([]FilledRange)) error {
	c.asyncRecvCalls.Add(1)
	return c.SetConsumer(callback)
}

// receiveLoop is the inbound dispatch engine's arm loop (§4.5). Like
// drainLoop, it is a tail loop on a dedicated goroutine, not a recursive
// re-arm: each pass checks out a pooled buffer, blocks on one socket.Read,
// and on success hands the filled range to dispatch before looping to arm
// the next read. On any read error (including peer close) it tears the
// connection down and returns the receive context itself, since close_internal
// never touches it directly (§9).
func (c *Connection) receiveLoop() {
	for {
		if c.closed.Load() {
			return
		}

		buf, err := c.bufPool.CheckOut(context.Background())
		if err != nil {
			c.closeInternal(err)
			return
		}

		c.rcvCtxMu.Lock()
		ctx := c.rcvCtx
		if ctx != nil {
			ctx.BindBuffer(buf)
		}
		c.rcvCtxMu.Unlock()

		if ctx == nil {
			_ = c.bufPool.CheckIn(buf)
			return
		}

		c.mon.ReceiveStarting()
		n, rerr := ctx.Socket().Read(buf.Bytes())
		c.mon.ReceiveCompleted(n)

		c.rcvCtxMu.Lock()
		ctx.UnbindBuffer()
		c.rcvCtxMu.Unlock()

		if n > 0 {
			c.packetsReceived.Add(1)
			c.bytesReceived.Add(uint64(n))

			fr := FilledRange{
				full:   buf.Bytes(),
				filled: n,
				release: func() {
					_ = c.bufPool.CheckIn(buf)
				},
			}
			c.dispatch(fr)
		} else {
			_ = c.bufPool.CheckIn(buf)
		}

		if rerr != nil {
			c.teardownReceive(rerr)
			return
		}

		if n == 0 {
			c.teardownReceive(liberr.PeerClosed.Error())
			return
		}
	}
}

// teardownReceive returns the receive context (the one context close_internal
// never releases) and then runs the shared close protocol.
func (c *Connection) teardownReceive(err error) {
	c.rcvCtxMu.Lock()
	ctx := c.rcvCtx
	c.rcvCtx = nil
	c.rcvCtxMu.Unlock()

	if ctx != nil {
		c.ctxPool.Return(ctx)
	}

	c.closeInternal(err)
}

// dispatch implements the dispatch half of §4.5: it atomically takes
// whatever is queued plus the registered consumer, clearing the consumer
// slot in the same step so the callback may re-register from within its own
// invocation (the documented normal pattern, §4.5/§8 Scenario 6) instead of
// racing a slot dispatch has not yet freed, invokes the consumer exactly
// once outside of any lock, then releases every delivered range.
func (c *Connection) dispatch(fr FilledRange) {
	c.receiveMu.Lock()
	c.receiveQueue = append(c.receiveQueue, queuedRange{r: fr})
	batch := c.receiveQueue
	c.receiveQueue = nil
	consumer := c.consumer
	c.consumer = nil
	c.receiveMu.Unlock()

	if consumer == nil {
		for _, q := range batch {
			q.r.Release()
		}
		return
	}

	ranges := make([]FilledRange, len(batch))
	total := 0
	for i, q := range batch {
		ranges[i] = q.r
		total += q.r.Len()
	}

	consumer(ranges)
	c.asyncCallbacks.Add(1)

	for _, q := range batch {
		q.r.Release()
	}

	c.mon.ReceiveDispatched(total)

	if c.cfg.Verbose {
		c.log.WithFields(map[string]interface{}{
			"conn_id": c.id,
			"state":   socket.ConnectionRead.String(),
			"bytes":   total,
		}).Debug("dispatched received bytes")
	}
}
