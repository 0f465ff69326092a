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

package parser_test

import (
	"errors"

	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/record"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubParser struct{ fail bool }

func (s *stubParser) Init() error { return nil }
func (s *stubParser) Parse(data []byte) (*record.Content, error) {
	if s.fail {
		return nil, errors.New("boom")
	}
	c := record.NewContent()
	c.Set("k", 1)
	return c, nil
}
func (s *stubParser) Stats() parser.Stats { return parser.Stats{} }

var _ = Describe("Registry", func() {
	It("registers and looks up parsers by name", func() {
		r := parser.NewRegistry()
		r.Register("a", &stubParser{})

		p, ok := r.Get("a")
		Expect(ok).To(BeTrue())
		Expect(p).ToNot(BeNil())

		_, ok = r.Get("missing")
		Expect(ok).To(BeFalse())

		Expect(r.Names()).To(ConsistOf("a"))
	})
})

var _ = Describe("Counters", func() {
	It("tracks ok/err counts and a rolling average", func() {
		var c parser.Counters

		_, _ = c.Observe(func() (*record.Content, error) {
			return record.NewContent(), nil
		})
		_, _ = c.Observe(func() (*record.Content, error) {
			return nil, errors.New("boom")
		})

		st := c.Snapshot()
		Expect(st.CountOK).To(Equal(uint64(1)))
		Expect(st.CountErr).To(Equal(uint64(1)))
	})
})
