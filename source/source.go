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

// Package source defines the fetch-stage capability set: a Source is polymorphic
// over {start(), stop(), signature(), statistics()}. Concrete drivers
// (httpsrc, execsrc, socketsrc, staticsrc) implement Fetcher; Scheduled
// wraps any Fetcher with the fetchInterval/fetchTimeout/jitter schedule
// contract, guaranteeing at most one fetch in flight per source and
// delivering completed fetches as record.Raw to a caller-supplied sink
// function.
package source

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/statcollect/record"
	"github.com/nabbar/statcollect/runner/ticker"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the source package.
const (
	ErrorFetchTimeout liberr.CodeError = iota + liberr.MinPkgSource
	ErrorNoFetcher
)

// Fetcher is the minimal contract a concrete driver implements: perform
// one fetch and return the raw payload plus the routing metadata to
// stamp onto the record.Raw envelope. Drivers must respect ctx's
// deadline - Scheduled derives one from fetchTimeout.
type Fetcher interface {
	Driver() string
	URL() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Config is the declarative schedule + routing configuration shared by
// every source.
type Config struct {
	FetchInterval time.Duration
	FetchTimeout  time.Duration
	Jitter        time.Duration

	Parsers  []string
	Filters  []string
	Storages []string

	Host string
	Port int
}

// Sink receives one completed fetch as a record.Raw. The caller (the
// pipeline coordinator) owns everything past this point.
type Sink func(*record.Raw)

// Scheduled wraps a Fetcher with the fixed-interval/jitter/timeout
// schedule contract: invoked exactly once per interval in steady state,
// overruns are cancelled and counted as errors without ever overlapping
// the next fire.
type Scheduled struct {
	cfg     Config
	fetcher Fetcher
	sink    Sink

	tck ticker.Ticker

	mu      sync.Mutex
	running bool

	errCount atomic.Uint64
	okCount  atomic.Uint64
}

// NewScheduled builds a Scheduled source. sink is called synchronously
// from the ticker's own goroutine - exactly one fetch is ever in flight,
// so the caller never observes concurrent Sink invocations for the same
// source.
func NewScheduled(cfg Config, fetcher Fetcher, sink Sink) *Scheduled {
	s := &Scheduled{cfg: cfg, fetcher: fetcher, sink: sink}
	s.tck = ticker.New(cfg.FetchInterval, s.fire)
	return s
}

// Start begins the schedule.
func (s *Scheduled) Start() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	_ = s.tck.Start(context.Background())
}

// Stop cancels any in-flight fetch and halts the schedule.
func (s *Scheduled) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.tck.Stop(ctx)
}

// Signature identifies this source for logging/introspection.
func (s *Scheduled) Signature() string {
	return s.fetcher.Driver() + " " + s.fetcher.URL()
}

// Statistics returns the running ok/error counters.
func (s *Scheduled) Statistics() map[string]float64 {
	return map[string]float64{
		"ok":    float64(s.okCount.Load()),
		"error": float64(s.errCount.Load()),
	}
}

func (s *Scheduled) fire(ctx context.Context, _ *time.Ticker) error {
	if s.fetcher == nil {
		return ErrorNoFetcher.Error(nil)
	}

	if s.cfg.Jitter > 0 {
		d := time.Duration(rand.Int63n(int64(s.cfg.Jitter)))
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	timeout := s.cfg.FetchTimeout
	if timeout <= 0 {
		timeout = s.cfg.FetchInterval
	}
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	payload, err := s.fetcher.Fetch(fctx)
	end := time.Now()

	if err != nil {
		s.errCount.Add(1)
		return err
	}

	raw := NewRaw(s.fetcher, s.cfg, payload, start, end)
	if err := raw.Validate(); err != nil {
		s.errCount.Add(1)
		return err
	}

	s.okCount.Add(1)
	if s.sink != nil {
		s.sink(raw)
	}
	return nil
}

// NewRaw builds a record.Raw from a completed fetch, stamping the
// routing metadata carried on cfg.
func NewRaw(f Fetcher, cfg Config, payload []byte, start, end time.Time) *record.Raw {
	r := record.NewRaw(f.Driver(), f.URL(), cfg.Host, cfg.Port)
	r.Parsers = append([]string(nil), cfg.Parsers...)
	r.Filters = append([]string(nil), cfg.Filters...)
	r.Storages = append([]string(nil), cfg.Storages...)
	r.Start = start
	r.End = end
	r.Payload = payload
	return r
}
