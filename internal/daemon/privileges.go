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
	"os/user"
	"strconv"
	"syscall"

	liblog "github.com/nabbar/statcollect/logger"
)

// DropPrivileges backs the --user/--group flags, dropping privileges
// after socket bind. It is best-effort: a failure is logged, not
// fatal, since privilege dropping only matters when the process actually
// started as root to bind a low port, which is not the default case for
// the self-telemetry listen ports (16660/16661). Group is applied before
// user, since Setuid forfeits the ability to change Setgid afterward.
func DropPrivileges(userName, groupName string, log liblog.FuncLog) {
	if groupName != "" {
		if g, err := user.LookupGroup(groupName); err == nil {
			if gid, cerr := strconv.Atoi(g.Gid); cerr == nil {
				if sErr := syscall.Setgid(gid); sErr != nil {
					logWarn(log, "daemon: cannot drop group privileges", sErr)
				}
			}
		} else {
			logWarn(log, "daemon: unknown group", groupName)
		}
	}

	if userName != "" {
		if u, err := user.Lookup(userName); err == nil {
			if uid, cerr := strconv.Atoi(u.Uid); cerr == nil {
				if sErr := syscall.Setuid(uid); sErr != nil {
					logWarn(log, "daemon: cannot drop user privileges", sErr)
				}
			}
		} else {
			logWarn(log, "daemon: unknown user", userName)
		}
	}
}

func logWarn(log liblog.FuncLog, msg string, data interface{}) {
	if log == nil {
		return
	}
	if l := log(); l != nil {
		l.Warning(msg, data)
	}
}
