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

package selftelemetry

import (
	"net/http"

	"github.com/nabbar/statcollect/selftelemetry/promexport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// promNames narrows Snapshotter down to the superset promexport.Collector
// needs; both cmd/collector and cmd/agent hand in a *pipeline.Coordinator,
// which satisfies it already via its own SessionNames/SessionSnapshot pair.
type promNames interface {
	Snapshotter
	SessionNames() []string
}

// Mux builds the embedded HTTP surface exposing the daemon's own
// internal gauges for scraping: the per-session text/JSON handler at
// every path, and a Prometheus exposition of the same counters at
// "/metrics" for tooling that expects that format instead of polling
// named sessions one at a time.
func Mux(tel promNames) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(promexport.New(tel))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/", Handler(tel))
	return mux
}
