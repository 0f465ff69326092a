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

// Package command gives component registries a uniform, named, runnable
// unit they can hand to a shell or CLI front-end without that front-end
// knowing anything about the component it wraps.
package command

import "io"

// CommandInfo is the read-only half of a Command: enough to list it in a
// help screen or a shell completion table without being able to run it.
type CommandInfo interface {
	Name() string
	Describe() string
}

// Command is a named action a shell can invoke: Run receives the stdout
// and stderr writers to print to and the argument list the caller typed.
type Command interface {
	CommandInfo
	Run(stdout, stderr io.Writer, args []string)
}

type info struct {
	name string
	desc string
}

func (i *info) Name() string    { return i.name }
func (i *info) Describe() string { return i.desc }

type command struct {
	info
	fn func(stdout, stderr io.Writer, args []string)
}

func (c *command) Run(stdout, stderr io.Writer, args []string) {
	if c.fn == nil {
		return
	}
	c.fn(stdout, stderr, args)
}

// Info builds a CommandInfo carrying only a name and description, for
// callers that want to advertise a command without exposing how to run it.
func Info(name, description string) CommandInfo {
	return &info{name: name, desc: description}
}

// New builds a Command that runs fn when invoked. fn may be nil, in which
// case Run is a no-op.
func New(name, description string, fn func(stdout, stderr io.Writer, args []string)) Command {
	return &command{info: info{name: name, desc: description}, fn: fn}
}
