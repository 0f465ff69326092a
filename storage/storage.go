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

// Package storage defines the sink capability set: a Storage accepts a
// parsed record (Store), may be told to abandon a pending one (Cancel),
// and can be drained and closed (Shutdown). It emits exactly one Result
// per accepted Store call, success or failure.
package storage

import (
	"context"
	"sync"

	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the storage package.
const (
	ErrorUnknownStorage liberr.CodeError = iota + liberr.MinPkgStorage
	ErrorShutdown
	ErrorQueueFull
)

// Result is the outcome of one accepted store() call: exactly one Result
// is emitted per id, either OK (with driver-specific Info) or an error
// (Reason).
type Result struct {
	ID     string
	OK     bool
	Info   string
	Reason error
}

// Storage is polymorphic over store/cancel/shutdown.
// Results are delivered asynchronously on the channel returned by
// Results - the coordinator is the only reader of that channel.
type Storage interface {
	Store(rec *record.Parsed) (string, error)
	Cancel(id string)
	Shutdown(ctx context.Context) error
	Results() <-chan Result
}

// Counters is the point-in-time bookkeeping every sink exposes:
// enqueued, succeeded, failed, and the current queue depth.
type Counters struct {
	Enqueued   uint64
	Succeeded  uint64
	Failed     uint64
	QueueDepth int
}

// Instrumented is implemented by sinks that expose Counters; the
// coordinator type-asserts for it rather than widening Storage, since a
// test double or future driver may reasonably skip bookkeeping.
type Instrumented interface {
	Counters() Counters
}

// Registry is a read-only-after-load, name-keyed set of Storages.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Storage
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Storage)}
}

// Register adds or replaces the Storage bound to name.
func (r *Registry) Register(name string, s Storage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = s
}

// Get looks up a Storage by name.
func (r *Registry) Get(name string) (Storage, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[name]
	return s, ok
}

// Names returns every registered storage name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}

// Shutdown calls Shutdown on every registered storage, collecting errors
// rather than stopping at the first one so every sink gets a chance to
// flush within its own grace period.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for _, s := range r.m {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
