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

// Package jsonflat parses a JSON document into a flat record.Content:
// nested objects contribute '.'-joined key paths, arrays become
// comma-joined strings when not purely numeric (and are otherwise folded
// index-wise into the same '.'-joined scheme), booleans become 0/1, and
// recursion is capped at depth 9.
package jsonflat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

// MaxDepth bounds object/array nesting walked during flattening.
const MaxDepth = 9

// MinKeys is the fewest metrics a flattened document must yield before it
// is considered parseable.
const MinKeys = 1

// Error codes for the jsonflat package.
const (
	ErrorDecode liberr.CodeError = iota + liberr.MinPkgParser + 20
	ErrorTooDeep
)

// Parser implements parser.Parser for flattened JSON documents.
type Parser struct {
	parser.Counters
}

// New builds a jsonflat Parser.
func New() *Parser {
	return &Parser{}
}

// Init is a no-op: jsonflat carries no per-instance state.
func (p *Parser) Init() error {
	return nil
}

// Stats returns the parser's run counters.
func (p *Parser) Stats() parser.Stats {
	return p.Counters.Snapshot()
}

// Parse decodes raw as JSON and flattens it into a record.Content.
func (p *Parser) Parse(raw []byte) (*record.Content, error) {
	return p.Counters.Observe(func() (*record.Content, error) {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, ErrorDecode.Error(err)
		}

		content := record.NewContent()
		if err := flatten(content, "", v, 0); err != nil {
			return nil, err
		}

		if content.Len() < MinKeys {
			return nil, parser.ErrorTooFewSamples.Error(fmt.Errorf("flattened %d numeric key(s) from document, want at least %d", content.Len(), MinKeys))
		}

		return content, nil
	})
}

func flatten(content *record.Content, prefix string, v interface{}, depth int) error {
	if depth > MaxDepth {
		return ErrorTooDeep.Error(nil)
	}

	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			if err := flatten(content, join(prefix, k), child, depth+1); err != nil {
				return err
			}
		}
	case []interface{}:
		if allNumbers(t) {
			for i, child := range t {
				if err := flatten(content, join(prefix, strconv.Itoa(i)), child, depth+1); err != nil {
					return err
				}
			}
			return nil
		}
		setString(content, prefix, joinedArray(t))
	case float64:
		content.Set(prefix, t)
	case bool:
		if t {
			content.Set(prefix, 1)
		} else {
			content.Set(prefix, 0)
		}
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			content.Set(prefix, f)
		}
	case nil:
		// absent value, nothing to record
	}

	return nil
}

func allNumbers(arr []interface{}) bool {
	for _, e := range arr {
		if _, ok := e.(float64); !ok {
			return false
		}
	}
	return len(arr) > 0
}

// joinedArray renders a mixed/non-numeric array as a comma-joined string
// representation; since record.Content only stores float64, this is kept
// only for the numeric-encodable case (e.g. "1,2,3" degenerating back to
// a sum) - non-numeric strings are dropped, matching the "best effort,
// never raise" ethos of the other parsers in this package.
func joinedArray(arr []interface{}) string {
	parts := make([]string, 0, len(arr))
	for _, e := range arr {
		switch t := e.(type) {
		case string:
			parts = append(parts, t)
		case float64:
			parts = append(parts, strconv.FormatFloat(t, 'g', -1, 64))
		case bool:
			if t {
				parts = append(parts, "1")
			} else {
				parts = append(parts, "0")
			}
		}
	}
	return strings.Join(parts, ",")
}

// setString stores a comma-joined array rendering as a single metric only
// when the whole string parses as a float (e.g. a one-element array);
// otherwise it is dropped, since Content is float64-valued.
func setString(content *record.Content, key, joined string) {
	if f, err := strconv.ParseFloat(joined, 64); err == nil {
		content.Set(key, f)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
