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

package errors

import (
	"math"
	"strconv"
)

// CodeError is a numeric error classification, similar in spirit to HTTP status codes.
type CodeError uint16

const (
	// UnknownError is the fallback code when no specific classification applies.
	UnknownError CodeError = 0

	// PeerClosed marks a zero-byte receive, treated as a normal remote close.
	PeerClosed CodeError = 1000

	// TransportError marks any non-success socket error raised by the OS.
	TransportError CodeError = 1001

	// SocketDisposed marks an operation that raced a socket already torn down.
	SocketDisposed CodeError = 1002

	// ProgrammingError marks a caller contract violation (double registration, double release, ...).
	ProgrammingError CodeError = 1003

	// PoolExhausted marks a pool unable to serve a check-out.
	PoolExhausted CodeError = 1004

	UnknownMessage = "unknown error"
	NullMessage    = ""
)

var codeMessage = map[CodeError]string{
	PeerClosed:       "peer closed the connection",
	TransportError:   "transport error",
	SocketDisposed:   "socket disposed mid-operation",
	ProgrammingError: "programming error",
	PoolExhausted:    "pool exhausted",
}

// ParseCodeError clamps an int64 into the valid CodeError range.
func ParseCodeError(i int64) CodeError {
	if i < 0 {
		return UnknownError
	} else if i >= int64(math.MaxUint16) {
		return math.MaxUint16
	}
	return CodeError(i)
}

func (c CodeError) Uint16() uint16 {
	return uint16(c)
}

func (c CodeError) Int() int {
	return int(c)
}

func (c CodeError) String() string {
	return strconv.Itoa(c.Int())
}

// Message returns the registered message for the code, or UnknownMessage.
func (c CodeError) Message() string {
	if c == UnknownError {
		return UnknownMessage
	} else if m, ok := codeMessage[c]; ok {
		return m
	}
	return UnknownMessage
}

// Error builds a new Error from this code with optional parent errors.
func (c CodeError) Error(p ...error) Error {
	return New(c.Uint16(), c.Message(), p...)
}

// IfError builds a new Error from this code only if at least one non-nil parent is given.
func (c CodeError) IfError(e ...error) Error {
	return IfError(c.Uint16(), c.Message(), e...)
}

// Errorf builds a new Error from this code with a formatted message.
func (c CodeError) Errorf(pattern string, args ...any) Error {
	return Newf(c.Uint16(), pattern, args...)
}
