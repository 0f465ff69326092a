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

package record

import (
	"math"
	"regexp"
	"time"
)

// KeyPattern is the set of characters a parsed key may contain. Parsers
// must normalize whitespace/other separators to '.' or '_' before
// emitting a key.
var KeyPattern = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Content is an insertion-ordered string->float64 map. It is the payload of
// a Parsed record. Content is never mutated in place by a filter; filters
// clone it via Content.Clone and hand back a new instance.
type Content struct {
	keys   []string
	values map[string]float64
}

// NewContent returns an empty, ready-to-use Content.
func NewContent() *Content {
	return &Content{values: make(map[string]float64)}
}

// Set inserts or overwrites key with v. Re-setting an existing key keeps
// its original position in Keys() - this is the documented "last wins,
// first position kept" duplicate-key merge policy.
func (c *Content) Set(key string, v float64) {
	if c.values == nil {
		c.values = make(map[string]float64)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = v
}

// Get returns the value for key and whether it is present.
func (c *Content) Get(key string) (float64, bool) {
	if c.values == nil {
		return 0, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Delete removes key, preserving the order of the remaining keys.
func (c *Content) Delete(key string) {
	if c.values == nil {
		return
	}
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice must be
// treated as read-only by the caller.
func (c *Content) Keys() []string {
	return c.keys
}

// Len returns the number of keys.
func (c *Content) Len() int {
	return len(c.keys)
}

// Clone returns an independent deep copy: appending to the clone never
// affects the original and vice versa.
func (c *Content) Clone() *Content {
	n := &Content{
		keys:   make([]string, len(c.keys)),
		values: make(map[string]float64, len(c.values)),
	}
	copy(n.keys, c.keys)
	for k, v := range c.values {
		n.values[k] = v
	}
	return n
}

// Validate checks every key against KeyPattern and every value for
// finiteness; NaN/Inf never leaves the parse stage.
func (c *Content) Validate() liberrValidationError {
	for _, k := range c.keys {
		if !KeyPattern.MatchString(k) {
			return &invalidKey{key: k}
		}
		v := c.values[k]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &invalidValue{key: k, val: v}
		}
	}
	return nil
}

// liberrValidationError is a tiny local interface so Validate can return
// either of two concrete diagnostics without pulling liberr into a
// value-type package; callers that want a liberr.Error wrap it themselves
// (see parser.WrapValidation).
type liberrValidationError interface {
	error
	Key() string
}

type invalidKey struct{ key string }

func (e *invalidKey) Error() string { return "parsed key does not match [A-Za-z0-9_.]+: " + e.key }
func (e *invalidKey) Key() string   { return e.key }

type invalidValue struct {
	key string
	val float64
}

func (e *invalidValue) Error() string {
	return "parsed value is not finite for key: " + e.key
}
func (e *invalidValue) Key() string { return e.key }

// Parsed is a clone of a Raw record's routing metadata plus decoded
// content. Parsed records are independent: Clone produces a value that
// shares no mutable state with its origin.
type Parsed struct {
	ID     string
	Driver string
	URL    string
	Host   string
	Port   int

	Filters  []string
	Storages []string

	FetchStart time.Time
	FetchEnd   time.Time

	Content *Content
}

// FromRaw builds a Parsed record carrying raw's routing metadata and an
// empty Content, ready for a parser to populate.
func FromRaw(r *Raw) *Parsed {
	return &Parsed{
		ID:         r.ID,
		Driver:     r.Driver,
		URL:        r.URL,
		Host:       r.Host,
		Port:       r.Port,
		Filters:    append([]string(nil), r.Filters...),
		Storages:   append([]string(nil), r.Storages...),
		FetchStart: r.Start,
		FetchEnd:   r.End,
		Content:    NewContent(),
	}
}

// Clone returns a record that shares no mutable state with p: the prior
// record survives unmodified after a filter mutates the clone.
func (p *Parsed) Clone() *Parsed {
	return &Parsed{
		ID:         p.ID,
		Driver:     p.Driver,
		URL:        p.URL,
		Host:       p.Host,
		Port:       p.Port,
		Filters:    append([]string(nil), p.Filters...),
		Storages:   append([]string(nil), p.Storages...),
		FetchStart: p.FetchStart,
		FetchEnd:   p.FetchEnd,
		Content:    p.Content.Clone(),
	}
}
