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

// Package parser defines the parse-stage capability set: a Parser turns raw bytes
// into a record.Content. Concrete drivers live in sub-packages
// (textsimple, jsonflat, xmlstat, webstatus, userfunc); this package only
// holds the shared interface, the stats bookkeeping every parser embeds,
// and the name-keyed registry the coordinator dispatches through.
package parser

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

const pkgName = "statcollect/parser"

// Error codes for the parser package.
const (
	ErrorTooFewSamples liberr.CodeError = iota + liberr.MinPkgParser
	ErrorUnknownParser
	ErrorEmptyPayload
)

func init() {
	if liberr.ExistInMapMessage(ErrorTooFewSamples) {
		panic(fmt.Errorf("error code collision with package %s", pkgName))
	}

	liberr.RegisterIdFctMessage(ErrorTooFewSamples, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorTooFewSamples:
		return "too few recognizable samples in payload"
	case ErrorUnknownParser:
		return "unknown parser"
	case ErrorEmptyPayload:
		return "empty payload"
	}

	return liberr.NullMessage
}

// Parser is polymorphic over init/parse. Implementations
// must fail fast on hostile input: the line/byte cap documented on each
// concrete parser keeps every Parse call bounded in time, since parsing
// runs inline on the coordinator task and may never suspend.
type Parser interface {
	Init() error
	Parse(data []byte) (*record.Content, error)
	Stats() Stats
}

// Stats is the per-parser run bookkeeping: ok/err counts, summed parse
// time, rolling averages. It is read via a point-in-time snapshot; updates are
// atomic so the hot parse path never takes a lock.
type Stats struct {
	CountOK  uint64
	CountErr uint64
	TimeSum  time.Duration
	AvgTime  time.Duration
}

// Counters is an embeddable stats recorder; concrete parsers embed it and
// call Observe around their Parse body.
type Counters struct {
	ok      atomic.Uint64
	errs    atomic.Uint64
	timeSum atomic.Int64
}

// Observe wraps fn, timing it and bumping the ok/err counters based on
// whether fn returned an error.
func (c *Counters) Observe(fn func() (*record.Content, error)) (*record.Content, error) {
	t0 := time.Now()
	content, err := fn()
	elapsed := time.Since(t0)

	c.timeSum.Add(int64(elapsed))
	if err != nil {
		c.errs.Add(1)
	} else {
		c.ok.Add(1)
	}
	return content, err
}

// Snapshot returns a point-in-time copy of the counters.
func (c *Counters) Snapshot() Stats {
	ok := c.ok.Load()
	errs := c.errs.Load()
	sum := time.Duration(c.timeSum.Load())

	var avg time.Duration
	if total := ok + errs; total > 0 {
		avg = sum / time.Duration(total)
	}

	return Stats{CountOK: ok, CountErr: errs, TimeSum: sum, AvgTime: avg}
}

// Registry is a read-only-after-load, name-keyed set of Parsers, built
// once at configuration time and never mutated afterwards, so lookups on
// the hot path need no lock ordering story.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Parser
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Parser)}
}

// Register adds or replaces the Parser bound to name.
func (r *Registry) Register(name string, p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = p
}

// Get looks up a Parser by name.
func (r *Registry) Get(name string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[name]
	return p, ok
}

// Names returns every registered parser name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}
