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
	"os"
	"os/exec"
	"syscall"

	liberr "github.com/nabbar/statcollect/errors"
)

// reexecEnv marks a process that has already been re-spawned into the
// background, so Daemonize is idempotent across the fork.
const reexecEnv = "STATCOLLECT_DAEMONIZED"

// IsDaemonized reports whether the current process is the detached child
// spawned by a prior Daemonize call.
func IsDaemonized() bool {
	return os.Getenv(reexecEnv) == "1"
}

// Daemonize re-executes the current binary with the same arguments,
// detaches it from the controlling terminal (new session, closed stdio),
// and exits the parent. It backs the "--daemon" flag with os/exec +
// syscall (SysProcAttr.Setsid), the standard Go idiom for a
// controlling-terminal detach since the language has no native fork().
func Daemonize() liberr.Error {
	if IsDaemonized() {
		return nil
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return ErrorDaemonizeExec.Error(err)
	}
	defer func() { _ = devNull.Close() }()

	exe, err := os.Executable()
	if err != nil {
		return ErrorDaemonizeExec.Error(err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), reexecEnv+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if e := cmd.Start(); e != nil {
		return ErrorDaemonizeExec.Error(e)
	}

	os.Exit(0)
	return nil
}
