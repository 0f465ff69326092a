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

package pipeline

import (
	"strings"
	"sync/atomic"

	"github.com/nabbar/statcollect/storage"
)

// coordinatorCounters are the pipeline's own bookkeeping, read via
// SessionSnapshot("pipeline") and never touched outside the owning task
// except through atomic ops.
type coordinatorCounters struct {
	storeOK       atomic.Uint64
	storeErr      atomic.Uint64
	backpressure  atomic.Uint64
	parseErr      atomic.Uint64
	filterErr     atomic.Uint64
	invalid       atomic.Uint64
	intakeDropped atomic.Uint64
	lost          atomic.Uint64
}

func (c *coordinatorCounters) snapshot() map[string]float64 {
	return map[string]float64{
		"store_ok":        float64(c.storeOK.Load()),
		"store_err":       float64(c.storeErr.Load()),
		"backpressure":    float64(c.backpressure.Load()),
		"parse_err":       float64(c.parseErr.Load()),
		"filter_err":      float64(c.filterErr.Load()),
		"invalid":         float64(c.invalid.Load()),
		"intake_dropped":  float64(c.intakeDropped.Load()),
		"lost_at_shutdown": float64(c.lost.Load()),
	}
}

func (c *coordinatorCounters) reset() {
	c.storeOK.Store(0)
	c.storeErr.Store(0)
	c.backpressure.Store(0)
	c.parseErr.Store(0)
	c.filterErr.Store(0)
	c.invalid.Store(0)
	c.intakeDropped.Store(0)
	c.lost.Store(0)
}

// SourceNames lists the registered source names, in the order callers
// can pair with --source-config/--source-doc lookups.
func (c *Coordinator) SourceNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.sources))
	for name := range c.sources {
		names = append(names, name)
	}
	return names
}

// SessionNames lists every session name SessionSnapshot currently
// recognizes: "pipeline" plus one "source:<name>"/"storage:<name>" pair
// per registered driver. Used by the Prometheus gauge exporter to decide
// what to scrape without guessing at naming conventions.
func (c *Coordinator) SessionNames() []string {
	c.mu.Lock()
	names := make([]string, 0, len(c.sources)+1)
	names = append(names, "pipeline")
	for name := range c.sources {
		names = append(names, "source:"+name)
	}
	c.mu.Unlock()

	for _, name := range c.storages.Names() {
		names = append(names, "storage:"+name)
	}
	return names
}

// SessionSnapshot is the one synchronous cross-subsystem call: it
// returns a point-in-time copy of the named component's counters without
// ever touching I/O. Recognized session
// names are "pipeline" (the coordinator's own counters), "source:<name>",
// and "storage:<name>"; an unknown name returns (nil, false).
func (c *Coordinator) SessionSnapshot(name string) (map[string]float64, bool) {
	if name == "pipeline" {
		return c.counters.snapshot(), true
	}

	if rest, ok := strings.CutPrefix(name, "source:"); ok {
		c.mu.Lock()
		s, found := c.sources[rest]
		c.mu.Unlock()
		if !found {
			return nil, false
		}
		return s.Statistics(), true
	}

	if rest, ok := strings.CutPrefix(name, "storage:"); ok {
		st, found := c.storages.Get(rest)
		if !found {
			return nil, false
		}
		inst, ok := st.(storage.Instrumented)
		if !ok {
			return map[string]float64{}, true
		}
		cnt := inst.Counters()
		return map[string]float64{
			"enqueued":    float64(cnt.Enqueued),
			"succeeded":   float64(cnt.Succeeded),
			"failed":      float64(cnt.Failed),
			"queue_depth": float64(cnt.QueueDepth),
		}, true
	}

	return nil, false
}

// SessionReset zeroes the named component's counters and reports whether
// the name was recognized. Only the pipeline's own counters and
// individually resettable drivers support reset; sources report their
// own running totals and are reset by restarting them, which this
// boundary call deliberately does not do (resetting counters must never
// restart a schedule).
func (c *Coordinator) SessionReset(name string) bool {
	if name == "pipeline" {
		c.counters.reset()
		return true
	}
	return false
}
