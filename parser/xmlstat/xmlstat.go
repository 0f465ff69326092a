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

// Package xmlstat parses XML status documents - Tomcat's
// /manager/status?XML=true and ARSO-style weather observation XML share
// the same shape: a tree of elements, each either holding text or
// attributes, that flattens into dotted-path metrics the same way
// jsonflat flattens JSON. Element attributes are flattened under
// "<path>.@<attr>"; element text becomes the metric at "<path>" when
// numeric.
package xmlstat

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

// MaxDepth bounds the element nesting walked while flattening.
const MaxDepth = 16

// MinKeys is the fewest metrics a flattened document must yield before it
// is considered parseable.
const MinKeys = 1

// Error codes for the xmlstat package.
const (
	ErrorDecode  liberr.CodeError = iota + liberr.MinPkgParser + 30
	ErrorTooDeep
)

// Parser implements parser.Parser for XML status documents.
type Parser struct {
	parser.Counters
}

// New builds an xmlstat Parser.
func New() *Parser {
	return &Parser{}
}

// Init is a no-op: xmlstat carries no per-instance state.
func (p *Parser) Init() error {
	return nil
}

// Stats returns the parser's run counters.
func (p *Parser) Stats() parser.Stats {
	return p.Counters.Snapshot()
}

// Parse decodes raw as XML and flattens it into a record.Content.
func (p *Parser) Parse(raw []byte) (*record.Content, error) {
	return p.Counters.Observe(func() (*record.Content, error) {
		dec := xml.NewDecoder(bytes.NewReader(raw))
		content := record.NewContent()

		type frame struct {
			path string
			text strings.Builder
		}
		var stack []*frame

		for {
			tok, err := dec.Token()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, ErrorDecode.Error(err)
			}

			switch t := tok.(type) {
			case xml.StartElement:
				if len(stack)+1 > MaxDepth {
					return nil, ErrorTooDeep.Error(nil)
				}
				path := t.Name.Local
				if len(stack) > 0 {
					path = stack[len(stack)-1].path + "." + t.Name.Local
				}
				for _, a := range t.Attr {
					setIfFloat(content, path+".@"+a.Name.Local, a.Value)
				}
				stack = append(stack, &frame{path: path})
			case xml.CharData:
				if len(stack) > 0 {
					stack[len(stack)-1].text.Write(t)
				}
			case xml.EndElement:
				if len(stack) == 0 {
					continue
				}
				f := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				setIfFloat(content, f.path, strings.TrimSpace(f.text.String()))
			}
		}

		if content.Len() < MinKeys {
			return nil, parser.ErrorTooFewSamples.Error(fmt.Errorf("flattened %d numeric key(s) from document, want at least %d", content.Len(), MinKeys))
		}

		return content, nil
	})
}

func setIfFloat(content *record.Content, key, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		content.Set(key, v)
	}
}
