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

// Package errors provides small, code-classified errors for the socket core.
//
// It trades the full hierarchy/trace machinery of a general-purpose error
// package for the handful of properties the connection core actually needs:
// a numeric classification, parent chaining compatible with errors.Is/As, and
// a pool for accumulating errors raised across concurrent engines.
package errors

import (
	"errors"
	"fmt"
)

// Error extends the standard error with a numeric code and parent chaining.
type Error interface {
	error

	// IsCode reports whether this error's own code matches the given code.
	IsCode(code CodeError) bool
	// HasCode reports whether this error or any parent has the given code.
	HasCode(code CodeError) bool
	// GetCode returns this error's own code.
	GetCode() CodeError

	// Is implements compatibility with the standard errors.Is function.
	Is(e error) bool
	// Unwrap implements compatibility with the standard errors.Unwrap function.
	Unwrap() error

	// Add appends non-nil parents to this error.
	Add(parent ...error)
}

type ers struct {
	c uint16
	e string
	p []error
}

func (e *ers) Error() string {
	if e == nil {
		return NullMessage
	}
	return e.e
}

func (e *ers) GetCode() CodeError {
	if e == nil {
		return UnknownError
	}
	return CodeError(e.c)
}

func (e *ers) IsCode(code CodeError) bool {
	return e.GetCode() == code
}

func (e *ers) HasCode(code CodeError) bool {
	if e.IsCode(code) {
		return true
	}
	for _, p := range e.p {
		var pe Error
		if errors.As(p, &pe) && pe.HasCode(code) {
			return true
		}
	}
	return false
}

func (e *ers) Is(target error) bool {
	var o *ers
	if !errors.As(target, &o) {
		return false
	}
	return e.c == o.c && e.e == o.e
}

func (e *ers) Unwrap() error {
	if len(e.p) == 0 {
		return nil
	}
	if len(e.p) == 1 {
		return e.p[0]
	}
	return errors.Join(e.p...)
}

func (e *ers) Add(parent ...error) {
	for _, p := range parent {
		if p != nil {
			e.p = append(e.p, p)
		}
	}
}

// New builds an Error with the given code, message and optional parents.
func New(code uint16, message string, parent ...error) Error {
	e := &ers{c: code, e: message}
	e.Add(parent...)
	return e
}

// Newf builds an Error with a formatted message.
func Newf(code uint16, pattern string, args ...any) Error {
	return New(code, fmt.Sprintf(pattern, args...))
}

// IfError builds an Error only when at least one non-nil parent is supplied.
// Returns nil otherwise, which is the common pattern for aggregating optional errors.
func IfError(code uint16, message string, parent ...error) Error {
	var p []error
	for _, e := range parent {
		if e != nil {
			p = append(p, e)
		}
	}
	if len(p) == 0 {
		return nil
	}
	return New(code, message, p...)
}
