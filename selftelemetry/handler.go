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

// Package selftelemetry implements the daemon's own HTTP surface:
// GET /<session>?mode=&reset=&json= reads a point-in-time counter
// snapshot off whatever implements Snapshotter (the pipeline
// coordinator, in production) and renders it as the daemon's own
// KEY=FLOAT2DP text format or as JSON. It holds no business logic of
// its own and is deliberately unauthenticated.
package selftelemetry

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// SearchOKMarker is the trailing literal every text response ends with.
const SearchOKMarker = "<!--SEARCH OK-->\n"

// Snapshotter is the subset of the pipeline coordinator's telemetry
// boundary this handler calls: SessionSnapshot returns a point-in-time copy of a
// named component's counters, SessionReset zeroes them. Both must be
// non-blocking - this handler is invoked on an HTTP goroutine and must
// never wait on pipeline I/O.
type Snapshotter interface {
	SessionSnapshot(name string) (map[string]float64, bool)
	SessionReset(name string) bool
}

// Handler builds the self-telemetry http.HandlerFunc. The
// session name is taken from the request path with its leading slash
// trimmed, e.g. GET /mysource -> session "mysource".
func Handler(tel Snapshotter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")

		snap, ok := tel.SessionSnapshot(name)
		if !ok {
			http.NotFound(w, r)
			return
		}

		q := r.URL.Query()
		if q.Get("reset") == "1" {
			tel.SessionReset(name)
		}

		wantJSON := q.Get("json") == "1" || acceptsJSON(r.Header.Get("Accept"))
		if wantJSON {
			writeJSON(w, snap)
			return
		}
		writeText(w, snap, q)
	}
}

func acceptsJSON(accept string) bool {
	return strings.Contains(accept, "/json")
}

func writeJSON(w http.ResponseWriter, snap map[string]float64) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(snap)
}

// writeText renders the KEY=FLOAT2DP text format:
// an optional "qsize=N" preamble (N being the number of keys in this
// snapshot, the closest local analogue to a queue size for a generic
// counter map), one "key=value" line per counter sorted for deterministic
// output, then the trailing marker.
func writeText(w http.ResponseWriter, snap map[string]float64, q map[string][]string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	if len(q["qsize"]) > 0 {
		b.WriteString("qsize=")
		b.WriteString(strconv.Itoa(len(keys)))
		b.WriteString("\n")
	}
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strconv.FormatFloat(snap[k], 'f', 2, 64))
		b.WriteString("\n")
	}
	b.WriteString(SearchOKMarker)

	_, _ = w.Write([]byte(b.String()))
}
