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

// Package filesink implements the file storage sink: each accepted
// record is serialized with a deterministic, round-trip-exact
// binary encoding and written asynchronously to
// "dir/prefix+startMicros+"-"+id+".bin", where dir is a strftime-expanded
// template resolved at store time.
package filesink

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/nabbar/statcollect/record"
	"github.com/nabbar/statcollect/storage"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the filesink package.
const (
	ErrorMkdir  liberr.CodeError = iota + liberr.MinPkgStorage + 10
	ErrorEncode
	ErrorWrite
	ErrorShutdownTimeout
)

// WireRecord is the gob-encoded, round-trip-exact representation of a
// record.Parsed. Content is flattened to parallel slices so key order is
// preserved through encode/decode.
type WireRecord struct {
	ID         string
	Driver     string
	URL        string
	Host       string
	Port       int
	Filters    []string
	Storages   []string
	FetchStart time.Time
	FetchEnd   time.Time
	Keys       []string
	Values     []float64
}

func toWire(rec *record.Parsed) WireRecord {
	keys := rec.Content.Keys()
	values := make([]float64, len(keys))
	for i, k := range keys {
		values[i], _ = rec.Content.Get(k)
	}
	return WireRecord{
		ID: rec.ID, Driver: rec.Driver, URL: rec.URL, Host: rec.Host, Port: rec.Port,
		Filters: rec.Filters, Storages: rec.Storages,
		FetchStart: rec.FetchStart, FetchEnd: rec.FetchEnd,
		Keys: keys, Values: values,
	}
}

// FromWire reconstructs a record.Parsed from its decoded wire form -
// exported so tests (and any future replay tool) can verify a round trip
// without reaching into package internals.
func FromWire(w WireRecord) *record.Parsed {
	content := record.NewContent()
	for i, k := range w.Keys {
		content.Set(k, w.Values[i])
	}
	return &record.Parsed{
		ID: w.ID, Driver: w.Driver, URL: w.URL, Host: w.Host, Port: w.Port,
		Filters: w.Filters, Storages: w.Storages,
		FetchStart: w.FetchStart, FetchEnd: w.FetchEnd,
		Content: content,
	}
}

// Sink is a file storage sink rooted at a strftime template.
type Sink struct {
	dirTemplate string
	prefix      string

	mu      sync.Mutex
	pending map[string]bool
	results chan storage.Result
	stop    chan struct{}

	enqueued  atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// Counters returns a point-in-time snapshot of enqueued/succeeded/failed
// counts and the number of writes currently in flight.
func (s *Sink) Counters() storage.Counters {
	s.mu.Lock()
	depth := len(s.pending)
	s.mu.Unlock()

	return storage.Counters{
		Enqueued:   s.enqueued.Load(),
		Succeeded:  s.succeeded.Load(),
		Failed:     s.failed.Load(),
		QueueDepth: depth,
	}
}

// New builds a Sink. dirTemplate is expanded with strftime verbs at
// store-time (e.g. "/var/lib/statcollect/%Y/%m/%d"); prefix is prepended
// to every written filename.
func New(dirTemplate, prefix string) *Sink {
	return &Sink{
		dirTemplate: dirTemplate,
		prefix:      prefix,
		pending:     make(map[string]bool),
		results:     make(chan storage.Result, 64),
		stop:        make(chan struct{}),
	}
}

// Results returns the channel store outcomes are delivered on.
func (s *Sink) Results() <-chan storage.Result {
	return s.results
}

// Store accepts rec, encodes it, and writes it asynchronously. The
// returned id is rec.ID; the caller tracks it in its own outstanding set
// until a Result with this ID arrives.
func (s *Sink) Store(rec *record.Parsed) (string, error) {
	id := rec.ID
	now := time.Now()

	s.mu.Lock()
	s.pending[id] = true
	s.mu.Unlock()
	s.enqueued.Add(1)

	go s.write(id, rec, now)

	return id, nil
}

func (s *Sink) write(id string, rec *record.Parsed, start time.Time) {
	defer func() {
		s.mu.Lock()
		delete(s.pending, id)
		s.mu.Unlock()
	}()

	dir, err := strftime.Format(s.dirTemplate, start)
	if err != nil {
		s.emit(storage.Result{ID: id, Reason: ErrorMkdir.Error(err)})
		return
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.emit(storage.Result{ID: id, Reason: ErrorMkdir.Error(err)})
		return
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toWire(rec)); err != nil {
		s.emit(storage.Result{ID: id, Reason: ErrorEncode.Error(err)})
		return
	}

	name := fmt.Sprintf("%s%d-%s.bin", s.prefix, start.UnixMicro(), id)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		s.emit(storage.Result{ID: id, Reason: ErrorWrite.Error(err)})
		return
	}

	s.emit(storage.Result{ID: id, OK: true, Info: path})
}

func (s *Sink) emit(r storage.Result) {
	if r.OK {
		s.succeeded.Add(1)
	} else {
		s.failed.Add(1)
	}

	select {
	case s.results <- r:
	case <-s.stop:
	}
}

// Cancel marks id as no longer awaited by the caller. The in-flight write
// (if any) still completes and still emits a Result, which the caller may
// simply ignore having already dropped id from its own tracking.
func (s *Sink) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Shutdown waits for in-flight writes to finish or ctx to expire. Either
// way it closes stop, releasing any write goroutine still blocked handing
// its Result to a full results channel.
func (s *Sink) Shutdown(ctx context.Context) error {
	defer func() {
		select {
		case <-s.stop:
		default:
			close(s.stop)
		}
	}()

	for {
		s.mu.Lock()
		n := len(s.pending)
		s.mu.Unlock()

		if n == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ErrorShutdownTimeout.Error(ctx.Err())
		case <-time.After(5 * time.Millisecond):
		}
	}
}
