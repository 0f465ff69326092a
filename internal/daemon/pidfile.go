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

// Package daemon implements the process-lifecycle surface that wraps
// the core pipeline: PID-file lifecycle, a re-exec based --daemon flag,
// signal handling, privilege dropping, and the listen-addr/listen-port
// conventions shared by the agent and collector binaries.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	liberr "github.com/nabbar/statcollect/errors"
)

// DefaultPidFile returns "${TMPDIR}/<program>-<user>.pid".
func DefaultPidFile(program string) string {
	tmp := os.TempDir()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = strconv.Itoa(os.Getuid())
	}
	return fmt.Sprintf("%s/%s-%s.pid", strings.TrimRight(tmp, "/"), program, user)
}

// CheckPidFile returns an error if path names a PID file whose process
// is still alive, so a second instance refuses to start. A missing file,
// or one naming a dead process, is not an error.
func CheckPidFile(path string) liberr.Error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return ErrorPidFileRead.Error(err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		// Unparsable content: treat the stale file as harmless, it will
		// be overwritten by WritePidFile.
		return nil
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}

	// os.FindProcess always succeeds on unix; Signal(0) is the actual
	// liveness probe.
	if sigErr := proc.Signal(syscall.Signal(0)); sigErr == nil {
		return ErrorPidFileExists.Error(fmt.Errorf("pid %d is still running", pid))
	}

	return nil
}

// WritePidFile writes the current process id to path, creating parent
// directories as needed.
func WritePidFile(path string) liberr.Error {
	if e := os.MkdirAll(dirOf(path), 0o755); e != nil {
		return ErrorPidFileWrite.Error(e)
	}

	if e := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); e != nil {
		return ErrorPidFileWrite.Error(e)
	}

	return nil
}

// RemovePidFile removes path, ignoring a not-exist error (best-effort
// cleanup on graceful shutdown).
func RemovePidFile(path string) {
	_ = os.Remove(path)
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "."
	}
	return path[:i]
}
