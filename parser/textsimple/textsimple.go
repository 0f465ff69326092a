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

// Package textsimple parses one-metric-per-line text: "key=value" or
// "key value", '#'/';' comment lines, blank lines skipped, whitespace
// inside a key folded to '.', last occurrence of a duplicate key wins.
package textsimple

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

// MaxLines bounds the number of lines scanned, keeping Parse's running
// time bounded on hostile input.
const MaxLines = 100000

// MinKeys is the fewest recognizable "key=value"/"key: value" lines a
// payload must yield before it is considered parseable; anything below
// fails fast with a diagnostic instead of emitting a near-empty map.
const MinKeys = 1

// Error codes for the textsimple package.
const (
	ErrorScan liberr.CodeError = iota + liberr.MinPkgParser + 10
)

// Parser implements parser.Parser for the textsimple format.
type Parser struct {
	parser.Counters
}

// New builds a textsimple Parser.
func New() *Parser {
	return &Parser{}
}

// Init is a no-op: textsimple carries no per-instance state.
func (p *Parser) Init() error {
	return nil
}

// Stats returns the parser's run counters.
func (p *Parser) Stats() parser.Stats {
	return p.Counters.Snapshot()
}

// Parse turns raw into a record.Content, one metric per non-comment line.
func (p *Parser) Parse(raw []byte) (*record.Content, error) {
	return p.Counters.Observe(func() (*record.Content, error) {
		content := record.NewContent()

		sc := bufio.NewScanner(bytes.NewReader(raw))
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		lines := 0
		for sc.Scan() {
			lines++
			if lines > MaxLines {
				break
			}

			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
				continue
			}

			key, val, ok := splitKV(line)
			if !ok {
				continue
			}

			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				continue
			}

			content.Set(normalizeKey(key), f)
		}

		if err := sc.Err(); err != nil {
			return nil, ErrorScan.Error(err)
		}

		if content.Len() < MinKeys {
			return nil, parser.ErrorTooFewSamples.Error(fmt.Errorf("recognized %d key(s) over %d scanned line(s), want at least %d", content.Len(), lines, MinKeys))
		}

		return content, nil
	})
}

// splitKV splits "key=value" or "key:value" (last '=' or ':' in the line
// is the separator, so a key may itself contain whitespace, e.g.
// "vmstat sys:0.50"). Falls back to whitespace
// splitting when neither separator is present.
func splitKV(line string) (string, string, bool) {
	if i := strings.LastIndexByte(line, '='); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
	}
	if i := strings.LastIndexByte(line, ':'); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1], true
}

// normalizeKey folds any whitespace inside a key to '.', so "vmstat sys"
// becomes "vmstat.sys" the same way "vmstat.sys" already reads.
func normalizeKey(key string) string {
	return strings.Join(strings.Fields(key), ".")
}
