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

// Package socket holds the shared constants, connection states and error
// filtering used by the buffer pool, operation context pool, monitor and
// connection core sub-packages.
package socket

import "errors"

// ErrNotConnected is returned by facade operations attempted before Connect
// (or the equivalent accept path) has produced a bound connection.
var ErrNotConnected = errors.New("not connected")

// DefaultBufferSize is the default chunk size handed out by the byte buffer pool.
const DefaultBufferSize = 32 * 1024

// MaxSendPacketSize is the soft ceiling the outbound coalescing engine drains
// the send queue up to before posting one OS send (§4.4).
const MaxSendPacketSize = 64 * 1024

// EOL is the line separator byte used by line-oriented protocols layered on
// top of this raw byte pipe. The connection core itself never inspects it.
const EOL = '\n'
