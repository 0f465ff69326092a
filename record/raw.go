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

// Package record defines the two envelope types that flow through the
// pipeline: Raw (one completed fetch) and Parsed (one decoded sample set).
// Both are plain, immutable-by-convention value carriers - no method on
// either type mutates the payload it is called on; every transform returns
// a clone.
package record

import (
	"time"

	"github.com/google/uuid"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the record package.
const (
	ErrorRawInvalid liberr.CodeError = iota + liberr.MinPkgRecord
	ErrorParsedInvalid
)

// Raw is one completed fetch cycle, owned by a Source until handed to the
// coordinator, then consumed by the parser stage and discarded.
type Raw struct {
	ID     string // unique within the process lifetime
	Driver string // source-driver tag, e.g. "http", "exec"
	URL    string // logical fetch URL
	Host   string // resolved host
	Port   int    // resolved port

	Parsers  []string // ordered
	Filters  []string // ordered
	Storages []string // unordered set

	Start time.Time // monotonic, sub-ms
	End   time.Time // monotonic, sub-ms

	Payload []byte
}

// NewRaw builds a Raw record, stamping a fresh process-unique ID.
func NewRaw(driver, url, host string, port int) *Raw {
	return &Raw{
		ID:     uuid.NewString(),
		Driver: driver,
		URL:    url,
		Host:   host,
		Port:   port,
	}
}

// Validate enforces the invariants from the data model: end >= start,
// non-empty payload, and the identifying fields set before the record
// leaves its source.
func (r *Raw) Validate() liberr.Error {
	if r == nil {
		return ErrorRawInvalid.Error(nil)
	}
	if r.ID == "" || r.Driver == "" || r.URL == "" {
		return ErrorRawInvalid.Error(nil)
	}
	if len(r.Parsers) == 0 {
		return ErrorRawInvalid.Error(nil)
	}
	if r.End.Before(r.Start) {
		return ErrorRawInvalid.Error(nil)
	}
	if len(r.Payload) == 0 {
		return ErrorRawInvalid.Error(nil)
	}
	return nil
}

// Duration is the elapsed fetch time, End - Start.
func (r *Raw) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
