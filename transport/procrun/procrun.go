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

// Package procrun implements the subprocess runner: starts an external
// command, pipes stdin/stdout/stderr, delivers line-framed stderr and
// byte-framed stdout to the driver, reports process exit, and enforces a
// deadline. It backs the Exec, ExecSSH, and MySQL source variants.
package procrun

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"time"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the procrun package.
const (
	ErrorStart liberr.CodeError = iota + liberr.MinPkgTransport + 20
	ErrorTimeout
	ErrorExitCode
)

// Result is the outcome of one Run.
type Result struct {
	Stdout   []byte
	Stderr   []string // line-framed
	ExitCode int
	Signaled bool
	TimedOut bool
}

// Options configures one subprocess invocation.
type Options struct {
	Command []string
	Env     []string
	Dir     string
	Timeout time.Duration

	// RequireZeroExit, when true, treats any nonzero exit code as an
	// error. When false, the runner accepts any exit code and treats EOF
	// on stdout as normal completion.
	RequireZeroExit bool
}

// Run starts the command described by opt, waits for completion or
// timeout, and returns the collected output. On timeout the process is
// killed and TimedOut is set on the (partial) Result returned alongside
// the error.
func Run(ctx context.Context, opt Options) (Result, error) {
	if len(opt.Command) == 0 {
		return Result{}, ErrorStart.Error(nil)
	}

	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, opt.Command[0], opt.Command[1:]...)
	if opt.Dir != "" {
		cmd.Dir = opt.Dir
	}
	if len(opt.Env) > 0 {
		cmd.Env = opt.Env
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, ErrorStart.Error(err)
	}

	if err = cmd.Start(); err != nil {
		return Result{}, ErrorStart.Error(err)
	}

	var stderrLines []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		sc := bufio.NewScanner(stderrPipe)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			stderrLines = append(stderrLines, sc.Text())
		}
	}()

	waitErr := cmd.Wait()
	<-done

	res := Result{
		Stdout: stdout.Bytes(),
		Stderr: stderrLines,
	}

	if cctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		return res, ErrorTimeout.Error(cctx.Err())
	}

	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			res.Signaled = exitErr.ExitCode() < 0
		} else {
			return res, ErrorStart.Error(waitErr)
		}
	}

	if opt.RequireZeroExit && res.ExitCode != 0 {
		return res, ErrorExitCode.Error(waitErr)
	}

	return res, nil
}
