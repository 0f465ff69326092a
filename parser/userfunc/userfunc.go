/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package userfunc adapts a user-supplied Go function, loaded once at
// configuration time, into a parser.Parser. It is the escape hatch for
// formats no built-in covers: operators embedding this module provide a Func and get
// the same Init/Parse/Stats contract as the built-in parsers, including
// run statistics and panic containment.
package userfunc

import (
	"fmt"

	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the userfunc package.
const (
	ErrorNilFunc liberr.CodeError = iota + liberr.MinPkgParser + 40
	ErrorPanicked
)

// Func is the signature a user-supplied parser function must implement.
type Func func(data []byte) (*record.Content, error)

// Parser adapts a Func into a parser.Parser.
type Parser struct {
	parser.Counters
	fn Func
}

// New builds a userfunc Parser wrapping fn. fn is resolved once, at
// construction time, and never reloaded.
func New(fn Func) *Parser {
	return &Parser{fn: fn}
}

// Init validates that a function was supplied.
func (p *Parser) Init() error {
	if p.fn == nil {
		return ErrorNilFunc.Error(nil)
	}
	return nil
}

// Stats returns the parser's run counters.
func (p *Parser) Stats() parser.Stats {
	return p.Counters.Snapshot()
}

// Parse invokes the wrapped function, converting any panic into an error
// so a misbehaving user function cannot crash the collection pipeline.
func (p *Parser) Parse(data []byte) (*record.Content, error) {
	return p.Counters.Observe(func() (c *record.Content, e error) {
		if p.fn == nil {
			return nil, ErrorNilFunc.Error(nil)
		}

		defer func() {
			if r := recover(); r != nil {
				c, e = nil, ErrorPanicked.Error(fmt.Errorf("%v", r))
			}
		}()

		return p.fn(data)
	})
}
