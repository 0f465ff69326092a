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

// Package filter defines the rewrite-stage capability set: a Filter receives a clone
// of a parsed record and may rename/add/drop keys, scale/transform
// values, or attach routing metadata (hostname override, storage-routing
// override). Filters are pure - same input always yields the same output
// - and run in source-declared order; an error aborts the remainder of
// the pipeline for that record.
package filter

import (
	"sync"

	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the filter package.
const (
	ErrorUnknownFilter liberr.CodeError = iota + liberr.MinPkgFilter
	ErrorNilRecord
)

// Filter is polymorphic over content-only and whole-record transforms
//. Either method may be a no-op; FilterObj is the only one
// permitted to touch routing metadata (hostname override, storage
// routing), FilterContent only touches the key/value content.
type Filter interface {
	FilterContent(content *record.Content) (*record.Content, error)
	FilterObj(rec *record.Parsed) (*record.Parsed, error)
}

// Chain applies filter names, in order, to rec - cloning before each
// step so the input record is never mutated. It stops and returns the
// error from the first filter that fails, discarding the in-progress
// clone.
func Chain(reg *Registry, rec *record.Parsed, names []string) (*record.Parsed, error) {
	if rec == nil {
		return nil, ErrorNilRecord.Error(nil)
	}

	cur := rec
	for _, name := range names {
		f, ok := reg.Get(name)
		if !ok {
			return nil, ErrorUnknownFilter.Error(nil)
		}

		clone := cur.Clone()

		content, err := f.FilterContent(clone.Content)
		if err != nil {
			return nil, err
		}
		clone.Content = content

		obj, err := f.FilterObj(clone)
		if err != nil {
			return nil, err
		}
		cur = obj
	}

	return cur, nil
}

// Registry is a read-only-after-load, name-keyed set of Filters.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Filter
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Filter)}
}

// Register adds or replaces the Filter bound to name.
func (r *Registry) Register(name string, f Filter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = f
}

// Get looks up a Filter by name.
func (r *Registry) Get(name string) (Filter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.m[name]
	return f, ok
}

// Names returns every registered filter name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}
