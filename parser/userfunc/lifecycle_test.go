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

package userfunc_test

import (
	"errors"

	"github.com/nabbar/statcollect/parser/userfunc"
	"github.com/nabbar/statcollect/record"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parser", func() {
	It("rejects construction without Init validating a nil func", func() {
		p := userfunc.New(nil)
		Expect(p.Init()).To(HaveOccurred())
	})

	It("delegates Parse to the wrapped function", func() {
		p := userfunc.New(func(data []byte) (*record.Content, error) {
			c := record.NewContent()
			c.Set("n", float64(len(data)))
			return c, nil
		})
		Expect(p.Init()).ToNot(HaveOccurred())

		content, err := p.Parse([]byte("abcd"))
		Expect(err).ToNot(HaveOccurred())
		v, _ := content.Get("n")
		Expect(v).To(Equal(4.0))
	})

	It("propagates errors from the wrapped function", func() {
		p := userfunc.New(func(data []byte) (*record.Content, error) {
			return nil, errors.New("boom")
		})
		_, err := p.Parse(nil)
		Expect(err).To(HaveOccurred())
	})

	It("converts a panic in the wrapped function into an error", func() {
		p := userfunc.New(func(data []byte) (*record.Content, error) {
			panic("kaboom")
		})
		_, err := p.Parse(nil)
		Expect(err).To(HaveOccurred())
	})
})
