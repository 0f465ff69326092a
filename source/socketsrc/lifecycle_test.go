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

package socketsrc_test

import (
	"bufio"
	"context"
	"net"
	"time"

	"github.com/nabbar/statcollect/source/socketsrc"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Source", func() {
	It("rejects a config with no terminator", func() {
		_, err := socketsrc.New(socketsrc.Config{Host: "127.0.0.1", Port: 1, Command: "stats\r\n"}, "x")
		Expect(err).To(HaveOccurred())
	})

	It("accumulates lines until the terminator, Memcached-stats style", func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).ToNot(HaveOccurred())
		defer l.Close()
		port := l.Addr().(*net.TCPAddr).Port

		go func() {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
			rd := bufio.NewReader(conn)
			_, _ = rd.ReadString('\n') // "stats\r\n"
			_, _ = conn.Write([]byte("STAT pid 123\r\nSTAT uptime 456\r\nEND\r\n"))
		}()

		src, err := socketsrc.New(socketsrc.Config{
			Host: "127.0.0.1", Port: port,
			Command:    "stats\r\n",
			Terminator: "END\r\n",
		}, "memcached:stats")
		Expect(err).ToNot(HaveOccurred())
		Expect(src.Driver()).To(Equal("socket"))

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		body, err := src.Fetch(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(body)).To(Equal("STAT pid 123\r\nSTAT uptime 456\r\nEND\r\n"))
	})
})
