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

package filter

import "github.com/nabbar/statcollect/record"

// Route attaches routing metadata to the whole record: an optional
// hostname override and an optional replacement for the storage-name
// list. Either field left empty/nil leaves that aspect of the record
// untouched.
type Route struct {
	Base
	HostOverride string
	Storages     []string
}

// NewRoute builds a Route filter.
func NewRoute(hostOverride string, storages []string) *Route {
	return &Route{HostOverride: hostOverride, Storages: storages}
}

// FilterObj applies the configured overrides to a clone of rec.
func (r *Route) FilterObj(rec *record.Parsed) (*record.Parsed, error) {
	out := rec.Clone()
	if r.HostOverride != "" {
		out.Host = r.HostOverride
	}
	if r.Storages != nil {
		out.Storages = append([]string(nil), r.Storages...)
	}
	return out, nil
}
