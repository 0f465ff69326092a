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

package fragment_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/nabbar/statcollect/config/fragment"
	"github.com/nabbar/statcollect/pipeline"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IntrospectionCommands", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "fragment-introspect-")
		Expect(err).ToNot(HaveOccurred())

		Expect(os.MkdirAll(filepath.Join(dir, "parser.d"), 0o755)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(dir, "filter.d"), 0o755)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(dir, "storage.d"), 0o755)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(dir, "source.d"), 0o755)).To(Succeed())

		writeFile(filepath.Join(dir, "statcollect.conf"), `
parsers = parser.d/*.conf
filters = filter.d/*.conf
storage = storage.d/*.conf
source_groups = source.d/*.conf
`)
		writeFile(filepath.Join(dir, "parser.d", "status.conf"), "name = status\ndriver = textsimple\n")
		writeFile(filepath.Join(dir, "filter.d", "tag.conf"), "name = tag-env\ndriver = add\nvalues = \"env:1\"\n")

		sinkDir := filepath.Join(dir, "sink")
		writeFile(filepath.Join(dir, "storage.d", "file.conf"), "name = local-file\ndriver = filesink\ndir = "+sinkDir+"\nprefix = stat\n")

		writeFile(filepath.Join(dir, "source.d", "static.conf"), `
name = hello
driver = static
url = static://hello
data = "value 1\n"
interval = 10s
parsers = status
filters = tag-env
storages = local-file
`)
	})

	AfterEach(func() {
		_ = os.RemoveAll(dir)
	})

	It("lists every wired component by name", func() {
		l := fragment.NewLoader(context.Background(), nil, pipeline.DefaultConfig())
		res, err := l.Load(filepath.Join(dir, "statcollect.conf"))
		Expect(err).To(BeNil())

		cmds := res.IntrospectionCommands()
		byName := map[string]bool{}
		for _, c := range cmds {
			byName[c.Name()] = true
		}
		Expect(byName).To(HaveKey("source-list"))
		Expect(byName).To(HaveKey("parser-doc"))
		Expect(byName).To(HaveKey("filter-config"))
		Expect(byName).To(HaveKey("storage-doc"))

		var out, errOut bytes.Buffer
		for _, c := range cmds {
			if c.Name() == "source-list" {
				c.Run(&out, &errOut, nil)
			}
		}
		Expect(out.String()).To(ContainSubstring("hello"))
	})

	It("prints driver documentation independent of what a fragment wired", func() {
		l := fragment.NewLoader(context.Background(), nil, pipeline.DefaultConfig())
		res, err := l.Load(filepath.Join(dir, "statcollect.conf"))
		Expect(err).To(BeNil())

		var out, errOut bytes.Buffer
		for _, c := range res.IntrospectionCommands() {
			if c.Name() == "storage-doc" {
				c.Run(&out, &errOut, nil)
			}
		}
		Expect(out.String()).To(ContainSubstring("graphite:"))
	})
})
