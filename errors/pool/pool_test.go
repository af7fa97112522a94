/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package pool_test

import (
	"errors"
	"sync"
	"testing"

	errpool "github.com/nabbar/tcpsock/errors/pool"
)

func TestPool_AddAndSlice(t *testing.T) {
	p := errpool.New()

	if err := p.Error(); err != nil {
		t.Fatalf("Error() on empty pool = %v, want nil", err)
	}

	p.Add(nil, errors.New("one"), nil, errors.New("two"))

	if got := p.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := len(p.Slice()); got != 2 {
		t.Errorf("len(Slice()) = %d, want 2", got)
	}
	if err := p.Error(); err == nil {
		t.Errorf("Error() on populated pool = nil, want non-nil")
	}
}

func TestPool_GetSetDel(t *testing.T) {
	p := errpool.New()
	p.Add(errors.New("first"))

	max := p.MaxId()
	if p.Get(max) == nil {
		t.Fatalf("Get(%d) = nil, want the added error", max)
	}

	sentinel := errors.New("replaced")
	p.Set(max, sentinel)
	if !errors.Is(p.Get(max), sentinel) {
		t.Errorf("Get(%d) after Set = %v, want %v", max, p.Get(max), sentinel)
	}

	p.Del(max)
	if p.Get(max) != nil {
		t.Errorf("Get(%d) after Del = %v, want nil", max, p.Get(max))
	}
	if p.Len() != 0 {
		t.Errorf("Len() after Del = %d, want 0", p.Len())
	}
}

func TestPool_Last(t *testing.T) {
	p := errpool.New()
	if p.Last() != nil {
		t.Errorf("Last() on empty pool = %v, want nil", p.Last())
	}

	last := errors.New("last")
	p.Add(errors.New("first"), errors.New("middle"), last)

	if !errors.Is(p.Last(), last) {
		t.Errorf("Last() = %v, want %v", p.Last(), last)
	}
}

func TestPool_Clear(t *testing.T) {
	p := errpool.New()
	p.Add(errors.New("one"), errors.New("two"))
	before := p.MaxId()
	p.Clear()

	if p.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", p.Len())
	}
	if p.Error() != nil {
		t.Errorf("Error() after Clear() = %v, want nil", p.Error())
	}

	// the sequence counter does not reset, so indices keep advancing.
	p.Add(errors.New("three"))
	if p.MaxId() <= before {
		t.Errorf("MaxId() after Clear()+Add() = %d, want > %d", p.MaxId(), before)
	}
}

func TestPool_ConcurrentAdd(t *testing.T) {
	p := errpool.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			p.Add(errors.New("concurrent"))
		}(i)
	}
	wg.Wait()

	if got := p.Len(); got != 50 {
		t.Errorf("Len() after concurrent Add = %d, want 50", got)
	}
}
