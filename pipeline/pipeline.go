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

// Package pipeline implements the coordinator: the single task that
// routes every record.Raw handed to it through
// parse -> filter-in-declared-order -> storage fan-out, owns the
// per-record outstanding-ack bookkeeping, and exposes the read-only
// SessionSnapshot/SessionReset telemetry boundary. It is the only
// component that knows about sources, parsers, filters and storages all
// at once; every other package only knows record.Raw/record.Parsed.
package pipeline

import (
	"context"
	"sync"
	"time"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/nabbar/statcollect/filter"
	liblog "github.com/nabbar/statcollect/logger"
	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/record"
	"github.com/nabbar/statcollect/storage"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the pipeline package.
const (
	ErrorUnknownParser liberr.CodeError = iota + liberr.MinPkgPipeline
	ErrorShutdownTimeout
)

// Source is the capability set of every driver the coordinator
// schedules: start/stop the fetch loop, identify it for
// logging, and report its running counters. source.Scheduled satisfies
// this without any adapter.
type Source interface {
	Start()
	Stop()
	Signature() string
	Statistics() map[string]float64
}

// Config holds the coordinator's own tunables.
type Config struct {
	// IntakeBuffer sizes the bounded channel sources deliver record.Raw
	// into; the coordinator's own task drains it serially.
	IntakeBuffer int

	// StorageHighWaterMark is the per-storage queue-depth threshold past
	// which the coordinator stops feeding that storage and counts the
	// record as dropped for "queue full" instead of calling Store.
	StorageHighWaterMark int

	// ShutdownGrace bounds how long Stop waits for in-flight records to
	// drain their outstanding storage acks before giving up.
	ShutdownGrace time.Duration

	// StorageShutdownGrace bounds the separate grace period storages get
	// to flush once the coordinator itself has stopped accepting work.
	StorageShutdownGrace time.Duration
}

// DefaultConfig returns sane defaults for a Config left unset.
func DefaultConfig() Config {
	return Config{
		IntakeBuffer:         1024,
		StorageHighWaterMark: 256,
		ShutdownGrace:        5 * time.Second,
		StorageShutdownGrace: 5 * time.Second,
	}
}

type pending struct {
	rec     *record.Parsed
	awaited map[string]bool // storage name -> still awaiting ack
}

// Coordinator is the routing task. Build one with New, register sources with
// RegisterSource, then Start it; Intake is the Sink every registered
// source's schedule is constructed with.
type Coordinator struct {
	cfg Config
	log liblog.FuncLog

	parsers  *parser.Registry
	filters  *filter.Registry
	storages *storage.Registry

	mu      sync.Mutex
	sources map[string]Source

	intake chan *record.Raw
	result chan namedResult

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once

	pendMu  sync.Mutex
	pending map[string]*pending

	counters coordinatorCounters
}

type namedResult struct {
	storage string
	res     storage.Result
}

// New builds a Coordinator wired to the given registries. log may be nil,
// in which case logging is a no-op (useful in tests).
func New(cfg Config, parsers *parser.Registry, filters *filter.Registry, storages *storage.Registry, log liblog.FuncLog) *Coordinator {
	if cfg.IntakeBuffer <= 0 {
		cfg.IntakeBuffer = 1024
	}
	if cfg.StorageHighWaterMark <= 0 {
		cfg.StorageHighWaterMark = 256
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 5 * time.Second
	}
	if cfg.StorageShutdownGrace <= 0 {
		cfg.StorageShutdownGrace = 5 * time.Second
	}

	return &Coordinator{
		cfg:      cfg,
		log:      log,
		parsers:  parsers,
		filters:  filters,
		storages: storages,
		sources:  make(map[string]Source),
		intake:   make(chan *record.Raw, cfg.IntakeBuffer),
		result:   make(chan namedResult, cfg.IntakeBuffer),
		stop:     make(chan struct{}),
		pending:  make(map[string]*pending),
	}
}

// RegisterSource adds a named Source. Sources are started by Start and
// stopped by Stop, in no particular order.
func (c *Coordinator) RegisterSource(name string, s Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[name] = s
}

// Intake is the Sink every source's schedule should be constructed with
// (source.NewScheduled(cfg, fetcher, coordinator.Intake)). It never
// blocks the calling source: if the bounded inbox is full the record is
// dropped and counted, so a slow coordinator can never stall a fetch
// schedule.
func (c *Coordinator) Intake(raw *record.Raw) {
	select {
	case c.intake <- raw:
	default:
		c.counters.intakeDropped.Add(1)
		c.logWarn("pipeline: intake full, dropping raw record", raw)
	}
}

// Start launches the coordinator's own task, a result fan-in goroutine
// per registered storage, and every registered source.
func (c *Coordinator) Start() {
	c.mu.Lock()
	storages := c.storages.Names()
	sources := make([]Source, 0, len(c.sources))
	for _, s := range c.sources {
		sources = append(sources, s)
	}
	c.mu.Unlock()

	for _, name := range storages {
		st, ok := c.storages.Get(name)
		if !ok {
			continue
		}
		c.wg.Add(1)
		go c.drainStorageResults(name, st)
	}

	c.wg.Add(1)
	go c.run()

	for _, s := range sources {
		s.Start()
	}
}

// Stop signals every source to stop, drains outstanding records for up
// to cfg.ShutdownGrace, then flushes storages within their own
// cfg.StorageShutdownGrace. Any
// records still outstanding once both grace periods expire are logged as
// lost, never blocked on indefinitely.
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	sources := make([]Source, 0, len(c.sources))
	for _, s := range c.sources {
		sources = append(sources, s)
	}
	c.mu.Unlock()

	for _, s := range sources {
		s.Stop()
	}

	c.drainPending(c.cfg.ShutdownGrace)

	c.stopOnce.Do(func() { close(c.stop) })
	c.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.StorageShutdownGrace)
	defer cancel()

	var merr *multierror.Error
	for _, err := range c.storages.Shutdown(ctx) {
		merr = multierror.Append(merr, err)
	}
	if merr != nil {
		return merr.ErrorOrNil()
	}
	return nil
}

func (c *Coordinator) drainPending(grace time.Duration) {
	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		c.pendMu.Lock()
		n := len(c.pending)
		c.pendMu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	c.pendMu.Lock()
	defer c.pendMu.Unlock()
	for id := range c.pending {
		c.counters.lost.Add(1)
		c.logWarn("pipeline: shutdown grace expired with record still outstanding", id)
		delete(c.pending, id)
	}
}

// run is the coordinator's single serial task: it multiplexes record.Raw
// from every source and storage.Result from every sink on one goroutine,
// so the pipeline state needs no locking beyond the registries.
func (c *Coordinator) run() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stop:
			return
		case raw := <-c.intake:
			c.handleRaw(raw)
		case nr := <-c.result:
			c.handleResult(nr)
		}
	}
}

func (c *Coordinator) drainStorageResults(name string, st storage.Storage) {
	defer c.wg.Done()
	for {
		select {
		case <-c.stop:
			return
		case res, ok := <-st.Results():
			if !ok {
				return
			}
			select {
			case c.result <- namedResult{storage: name, res: res}:
			case <-c.stop:
				return
			}
		}
	}
}

// handleRaw drives one record through parse, filter, and fan-out.
func (c *Coordinator) handleRaw(raw *record.Raw) {
	if err := raw.Validate(); err != nil {
		c.counters.invalid.Add(1)
		c.logWarn("pipeline: dropping invalid raw record", err)
		return
	}

	content, perr := c.parse(raw)
	if perr != nil {
		c.counters.parseErr.Add(1)
		c.logWarn("pipeline: all parsers failed for record", raw.ID)
		return
	}

	if err := record.ValidateContent(content); err != nil {
		c.counters.parseErr.Add(1)
		c.logWarn("pipeline: parsed content failed validation", raw.ID)
		return
	}

	pr := record.FromRaw(raw)
	pr.Content = content

	final, ferr := filter.Chain(c.filters, pr, pr.Filters)
	if ferr != nil {
		c.counters.filterErr.Add(1)
		c.logWarn("pipeline: filter chain aborted for record", raw.ID)
		return
	}

	c.fanout(final)
}

// parse tries each declared parser in order and returns the first
// successful result; when all fail the record is dropped and the error
// counted.
func (c *Coordinator) parse(raw *record.Raw) (*record.Content, error) {
	var lastErr error
	for _, name := range raw.Parsers {
		p, ok := c.parsers.Get(name)
		if !ok {
			lastErr = ErrorUnknownParser.Error(nil)
			continue
		}
		content, err := p.Parse(raw.Payload)
		if err != nil {
			lastErr = err
			continue
		}
		return content, nil
	}
	if lastErr == nil {
		lastErr = parser.ErrorEmptyPayload.Error(nil)
	}
	return nil, lastErr
}

// fanout dispatches final to every declared storage, tracking the
// outstanding ack set so acks + nacks + backpressure-skips always sums
// to the number of declared storages. Each destination receives an
// independent clone it may hold until it acknowledges or fails.
func (c *Coordinator) fanout(final *record.Parsed) {
	if len(final.Storages) == 0 {
		return
	}

	p := &pending{rec: final, awaited: make(map[string]bool, len(final.Storages))}
	for _, name := range final.Storages {
		p.awaited[name] = true
	}

	c.pendMu.Lock()
	c.pending[final.ID] = p
	c.pendMu.Unlock()

	for _, name := range final.Storages {
		st, ok := c.storages.Get(name)
		if !ok {
			c.ackStorage(final.ID, name, false, "unknown storage")
			continue
		}

		if inst, ok := st.(storage.Instrumented); ok {
			if inst.Counters().QueueDepth >= c.cfg.StorageHighWaterMark {
				c.counters.backpressure.Add(1)
				c.ackStorage(final.ID, name, false, "queue full")
				continue
			}
		}

		if _, err := st.Store(final.Clone()); err != nil {
			c.ackStorage(final.ID, name, false, "store rejected")
		}
	}
}

func (c *Coordinator) handleResult(nr namedResult) {
	c.ackStorage(nr.res.ID, nr.storage, nr.res.OK, nr.res.Reason)
}

// ackStorage removes name from id's outstanding set, discarding the
// pending record once every declared storage has acked, nacked, or been
// skipped for backpressure.
func (c *Coordinator) ackStorage(id, name string, ok bool, reason interface{}) {
	c.pendMu.Lock()
	p, found := c.pending[id]
	if !found {
		c.pendMu.Unlock()
		return
	}
	delete(p.awaited, name)
	empty := len(p.awaited) == 0
	if empty {
		delete(c.pending, id)
	}
	c.pendMu.Unlock()

	if ok {
		c.counters.storeOK.Add(1)
	} else {
		c.counters.storeErr.Add(1)
		if reason != nil {
			c.logWarn("pipeline: storage nack", name, reason)
		}
	}
}

func (c *Coordinator) logWarn(msg string, data ...interface{}) {
	if c.log == nil {
		return
	}
	l := c.log()
	if l == nil {
		return
	}
	l.Warning(msg, data)
}
