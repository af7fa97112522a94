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

// Package bufpool implements the Byte Buffer Pool (§4.1): a fixed-capacity
// pool of equally sized contiguous byte regions, handed out as Buffer values
// and returned for reuse. Buffer identity (not content) is what lets the
// pool detect a double check-in.
package bufpool

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	liberr "github.com/nabbar/tcpsock/errors"
)

// Buffer is a borrowed region on loan from a Pool: a (backing, offset,
// length) triple. The zero Buffer is not valid; only values returned by
// Pool.CheckOut may be used.
type Buffer struct {
	pool *pool
	idx  int
	off  int
	ln   int
}

// Bytes returns the full loaned region, offset and length as checked out.
func (b Buffer) Bytes() []byte {
	return b.pool.chunks[b.idx][b.off : b.off+b.ln]
}

// Len returns the length of the loaned region.
func (b Buffer) Len() int {
	return b.ln
}

// Valid reports whether this Buffer was produced by a CheckOut and not yet
// returned.
func (b Buffer) Valid() bool {
	return b.pool != nil
}

// Pool hands out and reclaims fixed-size Buffer values.
type Pool interface {
	// CheckOut yields a region of exactly ChunkSize() bytes. It blocks until
	// a region is free or ctx is done; a nil context behaves like
	// context.Background(). Returns a PoolExhausted Error if ctx is done
	// before a region frees up.
	CheckOut(ctx context.Context) (Buffer, error)

	// CheckIn returns a previously checked-out Buffer. Returning a Buffer
	// that was never checked out, or checking in the same Buffer twice, is a
	// programming error and is reported rather than silently accepted.
	CheckIn(b Buffer) error

	// Cap returns the configured number of chunks in the pool.
	Cap() int

	// ChunkSize returns the configured size of each chunk.
	ChunkSize() int
}

type pool struct {
	chunks [][]byte
	free   chan int
	sem    *semaphore.Weighted

	mu          sync.Mutex
	outstanding map[int]bool
}

// New constructs a Pool of chunks equally sized regions, each chunkSize
// bytes. Both must be strictly positive.
func New(chunks int, chunkSize int) Pool {
	if chunks <= 0 {
		chunks = 1
	}
	if chunkSize <= 0 {
		chunkSize = 1
	}

	p := &pool{
		chunks:      make([][]byte, chunks),
		free:        make(chan int, chunks),
		sem:         semaphore.NewWeighted(int64(chunks)),
		outstanding: make(map[int]bool, chunks),
	}

	for i := 0; i < chunks; i++ {
		p.chunks[i] = make([]byte, chunkSize)
		p.free <- i
	}

	return p
}

func (p *pool) Cap() int {
	return len(p.chunks)
}

func (p *pool) ChunkSize() int {
	if len(p.chunks) == 0 {
		return 0
	}
	return len(p.chunks[0])
}

func (p *pool) CheckOut(ctx context.Context) (Buffer, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return Buffer{}, liberr.PoolExhausted.Error(err)
	}

	idx := <-p.free

	p.mu.Lock()
	p.outstanding[idx] = true
	p.mu.Unlock()

	return Buffer{pool: p, idx: idx, off: 0, ln: len(p.chunks[idx])}, nil
}

func (p *pool) CheckIn(b Buffer) error {
	if b.pool != p {
		return liberr.ProgrammingError.Error()
	}

	p.mu.Lock()
	if !p.outstanding[b.idx] {
		p.mu.Unlock()
		return liberr.ProgrammingError.Error()
	}
	delete(p.outstanding, b.idx)
	p.mu.Unlock()

	p.free <- b.idx
	p.sem.Release(1)
	return nil
}
