//go:build windows
// +build windows

/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

package fileDescriptor

import (
	"github.com/nabbar/statcollect/ioutils/maxstdio"
)

const (
	// winDefaultMaxStdio is the CRT's out-of-the-box stdio ceiling.
	winDefaultMaxStdio = 512
	// winHardLimitMaxStdio is the CRT's absolute ceiling; values above it
	// are silently capped by the runtime itself.
	winHardLimitMaxStdio = 8192
)

// systemFileDescriptor is the Windows implementation: it drives the CRT's
// _getmaxstdio/_setmaxstdio pair through maxstdio (CGO on windows+cgo
// builds, a no-op reporting 0 otherwise).
func systemFileDescriptor(newValue int) (current int, max int, err error) {
	rLimit := maxstdio.GetMaxStdio()
	if rLimit <= 0 {
		rLimit = winDefaultMaxStdio
	}

	if newValue > winHardLimitMaxStdio {
		newValue = winHardLimitMaxStdio
	}

	if newValue > rLimit {
		maxstdio.SetMaxStdio(newValue)
		return systemFileDescriptor(0)
	}

	return rLimit, winHardLimitMaxStdio, nil
}
