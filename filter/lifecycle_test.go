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

package filter_test

import (
	"github.com/nabbar/statcollect/filter"
	"github.com/nabbar/statcollect/record"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newParsed() *record.Parsed {
	c := record.NewContent()
	c.Set("a", 1)
	c.Set("b", 2)
	return &record.Parsed{
		ID:       "rec-1",
		Driver:   "http",
		Host:     "orig-host",
		Storages: []string{"graphite"},
		Content:  c,
	}
}

var _ = Describe("Base", func() {
	It("is a true no-op on content and the whole record", func() {
		p := newParsed()
		var b filter.Base

		content, err := b.FilterContent(p.Content)
		Expect(err).ToNot(HaveOccurred())
		Expect(content).To(Equal(p.Content))

		out, err := b.FilterObj(p)
		Expect(err).ToNot(HaveOccurred())
		Expect(out).To(Equal(p))
	})
})

var _ = Describe("Rename", func() {
	It("renames mapped keys and passes through the rest", func() {
		f := filter.NewRename(map[string]string{"a": "alpha"})
		content, err := f.FilterContent(newParsed().Content)
		Expect(err).ToNot(HaveOccurred())

		_, ok := content.Get("a")
		Expect(ok).To(BeFalse())

		v, ok := content.Get("alpha")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1.0))

		v, ok = content.Get("b")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(2.0))
	})
})

var _ = Describe("Scale", func() {
	It("multiplies configured keys only", func() {
		f := filter.NewScale(map[string]float64{"a": 10})
		content, err := f.FilterContent(newParsed().Content)
		Expect(err).ToNot(HaveOccurred())

		v, _ := content.Get("a")
		Expect(v).To(Equal(10.0))
		v, _ = content.Get("b")
		Expect(v).To(Equal(2.0))
	})
})

var _ = Describe("Drop", func() {
	It("removes the configured keys", func() {
		f := filter.NewDrop("a")
		content, err := f.FilterContent(newParsed().Content)
		Expect(err).ToNot(HaveOccurred())

		_, ok := content.Get("a")
		Expect(ok).To(BeFalse())
		_, ok = content.Get("b")
		Expect(ok).To(BeTrue())
	})

	It("leaves the original content untouched", func() {
		orig := newParsed().Content
		f := filter.NewDrop("a")
		_, _ = f.FilterContent(orig)

		_, ok := orig.Get("a")
		Expect(ok).To(BeTrue())
	})
})

var _ = Describe("Route", func() {
	It("overrides host and storages on a clone, leaving the original untouched", func() {
		p := newParsed()
		f := filter.NewRoute("new-host", []string{"filesink"})

		out, err := f.FilterObj(p)
		Expect(err).ToNot(HaveOccurred())
		Expect(out.Host).To(Equal("new-host"))
		Expect(out.Storages).To(Equal([]string{"filesink"}))

		Expect(p.Host).To(Equal("orig-host"))
		Expect(p.Storages).To(Equal([]string{"graphite"}))
	})
})

var _ = Describe("Chain", func() {
	It("applies filters in order and stops at the first error", func() {
		reg := filter.NewRegistry()
		reg.Register("rename", filter.NewRename(map[string]string{"a": "alpha"}))
		reg.Register("scale", filter.NewScale(map[string]float64{"alpha": 2}))

		out, err := filter.Chain(reg, newParsed(), []string{"rename", "scale"})
		Expect(err).ToNot(HaveOccurred())

		v, ok := out.Content.Get("alpha")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(2.0))
	})

	It("errors on an unknown filter name", func() {
		reg := filter.NewRegistry()
		_, err := filter.Chain(reg, newParsed(), []string{"missing"})
		Expect(err).To(HaveOccurred())
	})

	It("never mutates the record passed in", func() {
		reg := filter.NewRegistry()
		reg.Register("rename", filter.NewRename(map[string]string{"a": "alpha"}))

		p := newParsed()
		_, err := filter.Chain(reg, p, []string{"rename"})
		Expect(err).ToNot(HaveOccurred())

		_, ok := p.Content.Get("a")
		Expect(ok).To(BeTrue())
	})
})
