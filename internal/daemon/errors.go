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

package daemon

import (
	"fmt"

	liberr "github.com/nabbar/statcollect/errors"
)

const pkgName = "statcollect/internal/daemon"

// Error codes for the daemon package: PID-file management and the
// re-exec based daemonization helper behind the --pid-file and
// --daemon/--no-daemon flags.
const (
	ErrorPidFileExists liberr.CodeError = iota + liberr.MinPkgDaemon
	ErrorPidFileRead
	ErrorPidFileWrite
	ErrorPidFileStaleProc
	ErrorDaemonizeExec
	ErrorListenAddr
)

func init() {
	if liberr.ExistInMapMessage(ErrorPidFileExists) {
		panic(fmt.Errorf("error code collision with package %s", pkgName))
	}

	liberr.RegisterIdFctMessage(ErrorPidFileExists, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorPidFileExists:
		return "pid file indicates a live process"
	case ErrorPidFileRead:
		return "cannot read pid file"
	case ErrorPidFileWrite:
		return "cannot write pid file"
	case ErrorPidFileStaleProc:
		return "cannot probe process named by pid file"
	case ErrorDaemonizeExec:
		return "cannot re-exec into background"
	case ErrorListenAddr:
		return "invalid listen address"
	}

	return liberr.NullMessage
}
