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

// Rename renames keys present in Mapping from old to new. Keys absent
// from Mapping pass through untouched; a rename onto an existing
// destination key follows Content.Set's last-wins/first-position-kept
// policy.
type Rename struct {
	Base
	Mapping map[string]string
}

// NewRename builds a Rename filter from an old->new key mapping.
func NewRename(mapping map[string]string) *Rename {
	return &Rename{Mapping: mapping}
}

// FilterContent applies the configured renames.
func (r *Rename) FilterContent(content *record.Content) (*record.Content, error) {
	out := record.NewContent()
	for _, k := range content.Keys() {
		v, _ := content.Get(k)
		if nk, ok := r.Mapping[k]; ok {
			out.Set(nk, v)
		} else {
			out.Set(k, v)
		}
	}
	return out, nil
}
