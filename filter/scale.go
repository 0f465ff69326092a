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

import (
	"math"

	"github.com/nabbar/statcollect/record"

	liberr "github.com/nabbar/statcollect/errors"
)

// ErrorNonFinite is returned when a scale factor would push a value out
// of the finite range Content.Validate requires.
const ErrorNonFinite liberr.CodeError = iota + liberr.MinPkgFilter + 10

// Scale multiplies every value for keys in Factors by their factor. Keys
// absent from Factors pass through unchanged.
type Scale struct {
	Base
	Factors map[string]float64
}

// NewScale builds a Scale filter from a key->multiplier mapping.
func NewScale(factors map[string]float64) *Scale {
	return &Scale{Factors: factors}
}

// FilterContent applies the configured multipliers.
func (s *Scale) FilterContent(content *record.Content) (*record.Content, error) {
	out := record.NewContent()
	for _, k := range content.Keys() {
		v, _ := content.Get(k)
		if f, ok := s.Factors[k]; ok {
			v *= f
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, ErrorNonFinite.Error(nil)
			}
		}
		out.Set(k, v)
	}
	return out, nil
}
