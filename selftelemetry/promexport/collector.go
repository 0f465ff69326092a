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

// Package promexport adapts the coordinator's session-snapshot surface
// onto a Prometheus prometheus.Collector, so the same internal
// gauges the text/JSON self-telemetry handler renders can also
// be scraped in Prometheus' own exposition format at a "/metrics" mount
// point. It holds no counters of its own: every Collect call re-reads the
// coordinator's snapshot, the same non-blocking call selftelemetry.Handler
// makes.
package promexport

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshotter is the subset of the pipeline coordinator's telemetry
// boundary this collector calls. SessionNames lists what to scrape; SessionSnapshot reads
// one session's counters without touching I/O.
type Snapshotter interface {
	SessionNames() []string
	SessionSnapshot(name string) (map[string]float64, bool)
}

// Collector exports every recognized session's counters as gauges, named
// "statcollect_<session>_<counter>" with illegal Prometheus identifier
// characters (":", ".", "-") folded to "_". It is an "unchecked" collector
// in Prometheus' own terminology: the set of metrics it emits varies with
// however many sources and storages are registered at scrape time, so
// Describe intentionally sends no descriptors and the metric set is
// collected on demand rather than pre-declared.
type Collector struct {
	tel Snapshotter
}

// New builds a Collector reading from tel. tel is typically a
// *pipeline.Coordinator.
func New(tel Snapshotter) *Collector {
	return &Collector{tel: tel}
}

// Describe intentionally sends nothing; see the Collector doc comment.
func (c *Collector) Describe(_ chan<- *prometheus.Desc) {}

// Collect reads every session this Collector's Snapshotter currently
// recognizes and emits one untyped gauge per counter key.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, session := range c.tel.SessionNames() {
		snap, ok := c.tel.SessionSnapshot(session)
		if !ok {
			continue
		}

		sessionLabel := sanitize(session)
		for key, val := range snap {
			desc := prometheus.NewDesc(
				"statcollect_"+sessionLabel+"_"+sanitize(key),
				"statcollect internal counter "+key+" for session "+session,
				nil, nil,
			)
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, val)
		}
	}
}

// sanitize folds the separators session names and counter keys use
// ("source:foo", "cpu.user") into Prometheus' metric-name charset.
func sanitize(s string) string {
	r := strings.NewReplacer(":", "_", ".", "_", "-", "_")
	return r.Replace(s)
}
