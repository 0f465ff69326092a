/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package runner hosts the shared helpers of the task-runner family
// (runner/ticker, runner/startStop): primitives any long-lived goroutine
// of this daemon relies on regardless of which concrete runner drives it.
package runner

import (
	"fmt"
	"os"
	"runtime/debug"
)

// RecoveryCaller reports a recovered panic from a runner-managed goroutine
// on stderr, with the caller tag identifying the goroutine and an optional
// set of context lines. A nil rec is a no-op so callers may invoke it
// unconditionally as `defer runner.RecoveryCaller(tag, recover())`.
//
// The report goes to stderr rather than the logger: a panic may have been
// raised by the logging path itself, and stderr is the one sink that is
// always writable once the process is up.
func RecoveryCaller(caller string, rec interface{}, info ...string) {
	if rec == nil {
		return
	}

	_, _ = fmt.Fprintf(os.Stderr, "recovering panic thread on %s\n", caller)

	for _, i := range info {
		_, _ = fmt.Fprintln(os.Stderr, i)
	}

	_, _ = fmt.Fprintf(os.Stderr, "%v\n", rec)
	_, _ = os.Stderr.Write(debug.Stack())
}
