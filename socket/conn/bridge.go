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
	"io"
	"sync"
)

// Bridge adapts a Connection's async EnqueueSend/consumer pair to the
// blocking io.ReadWriteCloser shape the client/tcp and server/tcp factory
// surfaces, and callers layering a framed protocol on top, expect. The
// connection core itself stays callback-driven; Bridge is the one place
// that turns callbacks back into a goroutine-blocking Read.
type Bridge struct {
	c *Connection

	mu      sync.Mutex
	pending []byte
	dataCh  chan []byte
	errCh   chan error
}

// NewBridge wraps c, registering itself as c's sole consumer. It must be
// called before c.InitSocket so no received range is dropped.
func NewBridge(c *Connection) *Bridge {
	b := &Bridge{
		c:      c,
		dataCh: make(chan []byte, 16),
		errCh:  make(chan error, 1),
	}

	// dispatch clears the consumer slot before invoking it (§4.5), so the
	// bridge re-registers itself from inside its own invocation to stay
	// armed across every subsequent batch, the normal pattern the spec
	// documents, rather than a one-shot subscription.
	var onBatch func(ranges []FilledRange)
	onBatch = func(ranges []FilledRange) {
		for _, r := range ranges {
			cp := make([]byte, r.Len())
			copy(cp, r.Bytes())
			b.dataCh <- cp
		}
		_ = c.SetConsumer(onBatch)
	}
	_ = c.SetConsumer(onBatch)

	prior := c.onClosed
	c.onClosed = func(err error) {
		if prior != nil {
			prior(err)
		}
		b.closeWith(err)
	}

	return b
}

func (b *Bridge) closeWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.errCh:
	default:
	}
	if err == nil {
		err = io.EOF
	}
	b.errCh <- err
	close(b.dataCh)
}

// Write enqueues p on the outbound coalescing engine.
func (b *Bridge) Write(p []byte) (int, error) {
	if err := b.c.EnqueueSend(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Read blocks until a dispatched range is available, or the connection
// closes.
func (b *Bridge) Read(p []byte) (int, error) {
	b.mu.Lock()
	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		b.mu.Unlock()
		return n, nil
	}
	b.mu.Unlock()

	data, ok := <-b.dataCh
	if !ok {
		select {
		case err := <-b.errCh:
			return 0, err
		default:
			return 0, io.EOF
		}
	}

	n := copy(p, data)
	if n < len(data) {
		b.mu.Lock()
		b.pending = append(b.pending, data[n:]...)
		b.mu.Unlock()
	}
	return n, nil
}

// Close tears down the underlying connection.
func (b *Bridge) Close() error {
	return b.c.Close()
}

// Connection returns the wrapped connection, for callers that also need
// RemoteAddr/LocalAddr/Counters/ID.
func (b *Bridge) Connection() *Connection {
	return b.c
}
