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

// Package webstatus parses the status-page formats of Nginx (stub_status),
// Apache/Lighttpd (mod_status scoreboard) and Varnish, producing a flat
// record.Content. Every driver is best-effort: unrecognized lines are
// skipped rather than failing the whole parse.
package webstatus

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/record"
)

// MinKeys is the fewest metrics a status page must yield before it is
// considered parseable - one
// recognized line is enough to tell a real status page from a garbage
// or empty response.
const MinKeys = 1

// Flavor selects which status dialect to decode.
type Flavor int

const (
	// Nginx decodes the stub_status module output.
	Nginx Flavor = iota
	// ApacheLighttpd decodes the mod_status / lighttpd server-status
	// scoreboard output.
	ApacheLighttpd
	// Varnish decodes "name value description" varnishstat -1 output.
	Varnish
)

// Parser implements parser.Parser for one webstatus Flavor.
type Parser struct {
	parser.Counters
	Flavor Flavor
}

// New builds a webstatus Parser for the given flavor.
func New(f Flavor) *Parser {
	return &Parser{Flavor: f}
}

// Init is a no-op: webstatus parsers carry no per-instance state.
func (p *Parser) Init() error {
	return nil
}

// Stats returns the parser's run counters.
func (p *Parser) Stats() parser.Stats {
	return p.Counters.Snapshot()
}

// Parse decodes raw according to p.Flavor.
func (p *Parser) Parse(raw []byte) (*record.Content, error) {
	return p.Counters.Observe(func() (*record.Content, error) {
		var content *record.Content
		switch p.Flavor {
		case ApacheLighttpd:
			content = parseApacheLighttpd(raw)
		case Varnish:
			content = parseVarnish(raw)
		default:
			content = parseNginx(raw)
		}

		if content.Len() < MinKeys {
			return nil, parser.ErrorTooFewSamples.Error(fmt.Errorf("recognized %d key(s) from %s status page, want at least %d", content.Len(), p.Flavor, MinKeys))
		}

		return content, nil
	})
}

// String names a Flavor for diagnostics.
func (f Flavor) String() string {
	switch f {
	case ApacheLighttpd:
		return "apache/lighttpd"
	case Varnish:
		return "varnish"
	default:
		return "nginx"
	}
}

// parseNginx decodes stub_status output, e.g.:
//
//	Active connections: 7
//	server accepts handled requests
//	 10 10 15
//	Reading: 1 Writing: 2 Waiting: 4
func parseNginx(raw []byte) *record.Content {
	content := record.NewContent()

	sc := bufio.NewScanner(bytes.NewReader(raw))
	var sawHeader bool

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "Active connections:"):
			if v, ok := lastField(line); ok {
				content.Set("connections", v)
			}
		case strings.HasPrefix(line, "server accepts"):
			sawHeader = true
		case sawHeader:
			fields := strings.Fields(line)
			if len(fields) == 3 {
				setIfFloat(content, "accepts", fields[0])
				setIfFloat(content, "handled", fields[1])
				setIfFloat(content, "requests", fields[2])
			}
			sawHeader = false
		case strings.HasPrefix(line, "Reading:"):
			for k, v := range keyColonValuePairs(line) {
				content.Set(strings.ToLower(k), v)
			}
		}
	}

	return content
}

// parseApacheLighttpd decodes mod_status/server-status text output.
// "Total Accesses: 100" becomes totalAccesses=100; "Scoreboard: RRWKK"
// is tallied per-character into reading/writing/waiting/keepalive/idle
// counts.
func parseApacheLighttpd(raw []byte) *record.Content {
	content := record.NewContent()

	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "Total Accesses:"):
			if v, ok := lastField(line); ok {
				content.Set("totalAccesses", v)
			}
		case strings.HasPrefix(line, "Total kBytes:"):
			if v, ok := lastField(line); ok {
				content.Set("totalKBytes", v)
			}
		case strings.HasPrefix(line, "BusyWorkers:"), strings.HasPrefix(line, "BusyServers:"):
			if v, ok := lastField(line); ok {
				content.Set("busyWorkers", v)
			}
		case strings.HasPrefix(line, "IdleWorkers:"), strings.HasPrefix(line, "IdleServers:"):
			if v, ok := lastField(line); ok {
				content.Set("idleWorkers", v)
			}
		case strings.HasPrefix(line, "Scoreboard:"):
			tallyScoreboard(content, strings.TrimSpace(strings.TrimPrefix(line, "Scoreboard:")))
		}
	}

	return content
}

// scoreboardKeys maps a single Apache scoreboard character to the metric
// it contributes to. "_" (waiting for connection) also counts as waiting.
var scoreboardKeys = map[byte]string{
	'R': "reading",
	'W': "writing",
	'K': "keepalive",
	'D': "dns",
	'C': "closing",
	'L': "logging",
	'G': "finishing",
	'I': "idleCleanup",
	'.': "open",
	'_': "waiting",
}

func tallyScoreboard(content *record.Content, board string) {
	counts := make(map[string]float64)
	waiting := 0.0
	for i := 0; i < len(board); i++ {
		c := board[i]
		if c == '_' {
			waiting++
			continue
		}
		if name, ok := scoreboardKeys[c]; ok {
			counts[name]++
		}
	}
	for name, n := range counts {
		content.Set(name, n)
	}
	// "K" (keepalive) also contributes to a read+write-adjacent "waiting"
	// bucket per the literal Apache scoreboard convention used by most
	// status-page scraping tools: K slots are idle, waiting for the next
	// keepalive request.
	content.Set("waiting", waiting+counts["keepalive"])
}

// parseVarnish decodes "name value description" lines from varnishstat -1.
func parseVarnish(raw []byte) *record.Content {
	content := record.NewContent()

	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		setIfFloat(content, normalizeVarnishKey(fields[0]), fields[1])
	}
	return content
}

func normalizeVarnishKey(k string) string {
	return strings.ReplaceAll(k, ".", "_")
}

func setIfFloat(content *record.Content, key, raw string) {
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		content.Set(key, v)
	}
}

func lastField(line string) (float64, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// keyColonValuePairs splits "Reading: 1 Writing: 2 Waiting: 4" into
// {"Reading":1, "Writing":2, "Waiting":4}.
func keyColonValuePairs(line string) map[string]float64 {
	out := make(map[string]float64)
	fields := strings.Fields(line)
	for i := 0; i+1 < len(fields); i += 2 {
		key := strings.TrimSuffix(fields[i], ":")
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			continue
		}
		out[key] = v
	}
	return out
}
