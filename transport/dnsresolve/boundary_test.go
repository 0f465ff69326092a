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

package dnsresolve_test

import (
	"context"
	"time"

	"github.com/nabbar/statcollect/transport/dnsresolve"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver", func() {
	It("short-circuits literal IPv4 addresses without touching the network", func() {
		r := dnsresolve.New(0, 0, dnsresolve.Options{})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		res := <-r.Resolve(ctx, "127.0.0.1", time.Second)
		Expect(res.Ok).To(BeTrue())
		Expect(res.Addrs).To(Equal([]string{"127.0.0.1"}))
	})

	It("short-circuits literal IPv6 addresses without touching the network", func() {
		r := dnsresolve.New(0, 0, dnsresolve.Options{})

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		res := <-r.Resolve(ctx, "::1", time.Second)
		Expect(res.Ok).To(BeTrue())
		Expect(res.Addrs).To(Equal([]string{"::1"}))
	})

	It("Purge is safe to call for a host that was never resolved", func() {
		r := dnsresolve.New(0, 0, dnsresolve.Options{})
		Expect(func() { r.Purge("never-resolved.invalid") }).ToNot(Panic())
	})
})
