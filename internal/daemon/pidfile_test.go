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

package daemon_test

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/nabbar/statcollect/internal/daemon"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PID file", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "daemon-pidfile-")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("defaults to a path under the temp dir naming the program", func() {
		p := daemon.DefaultPidFile("statcollect-collector")
		Expect(p).To(ContainSubstring("statcollect-collector"))
	})

	It("treats a missing pid file as harmless", func() {
		path := filepath.Join(dir, "missing.pid")
		Expect(daemon.CheckPidFile(path)).To(BeNil())
	})

	It("writes and removes its own pid", func() {
		path := filepath.Join(dir, "test.pid")

		Expect(daemon.WritePidFile(path)).To(BeNil())

		b, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(strconv.Atoi(string(b))).To(Equal(os.Getpid()))

		daemon.RemovePidFile(path)
		_, err = os.Stat(path)
		Expect(os.IsNotExist(err)).To(BeTrue())
	})

	It("flags a pid file naming the current (live) process", func() {
		path := filepath.Join(dir, "live.pid")
		Expect(daemon.WritePidFile(path)).To(BeNil())

		err := daemon.CheckPidFile(path)
		Expect(err).To(HaveOccurred())
	})

	It("treats unparsable content as a harmless stale file", func() {
		path := filepath.Join(dir, "garbage.pid")
		Expect(os.WriteFile(path, []byte("not-a-pid"), 0o644)).To(Succeed())
		Expect(daemon.CheckPidFile(path)).To(BeNil())
	})
})
