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
 */

package command_test

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nabbar/statcollect/shell/command"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Command Creation", func() {
	Describe("New function", func() {
		It("should create a command with name and description", func() {
			cmd := command.New("test", "test description", nil)
			Expect(cmd).ToNot(BeNil())
			Expect(cmd.Name()).To(Equal("test"))
			Expect(cmd.Describe()).To(Equal("test description"))
		})

		It("should run the given function", func() {
			called := false
			fn := func(out, err io.Writer, args []string) {
				called = true
			}

			cmd := command.New("test", "test description", fn)
			cmd.Run(nil, nil, nil)
			Expect(called).To(BeTrue())
		})

		It("should pass args and writers through to the function", func() {
			outBuf := &bytes.Buffer{}
			fn := func(out, err io.Writer, args []string) {
				fmt.Fprintf(out, "executed with %d args", len(args))
			}

			cmd := command.New("test", "test description", fn)
			cmd.Run(outBuf, nil, []string{"arg1", "arg2"})

			Expect(outBuf.String()).To(Equal("executed with 2 args"))
		})

		It("should not panic when the function is nil", func() {
			cmd := command.New("test", "test description", nil)
			Expect(func() {
				cmd.Run(nil, nil, nil)
			}).ToNot(Panic())
		})
	})

	Describe("Info function", func() {
		It("should create a CommandInfo with name and description", func() {
			info := command.Info("test", "test description")
			Expect(info).ToNot(BeNil())
			Expect(info.Name()).To(Equal("test"))
			Expect(info.Describe()).To(Equal("test description"))
		})
	})
})
