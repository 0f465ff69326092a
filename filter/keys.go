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

// Drop removes every key listed in Keys.
type Drop struct {
	Base
	Keys []string
}

// NewDrop builds a Drop filter for the given keys.
func NewDrop(keys ...string) *Drop {
	return &Drop{Keys: keys}
}

// FilterContent removes the configured keys from a clone of content.
func (d *Drop) FilterContent(content *record.Content) (*record.Content, error) {
	out := content.Clone()
	for _, k := range d.Keys {
		out.Delete(k)
	}
	return out, nil
}

// Add inserts the fixed keys in Values that are not already present -
// useful for attaching a constant tag metric (e.g. "up"=1) alongside
// whatever the parser produced.
type Add struct {
	Base
	Values map[string]float64
}

// NewAdd builds an Add filter from a fixed key->value mapping.
func NewAdd(values map[string]float64) *Add {
	return &Add{Values: values}
}

// FilterContent sets every configured key, overwriting any existing value
// under that key (explicit Add always wins).
func (a *Add) FilterContent(content *record.Content) (*record.Content, error) {
	out := content.Clone()
	for k, v := range a.Values {
		out.Set(k, v)
	}
	return out, nil
}
