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

package fragment

import (
	"fmt"

	liberr "github.com/nabbar/statcollect/errors"
)

const pkgName = "statcollect/config/fragment"

// Error codes for the fragment package.
const (
	ErrorConfigRead liberr.CodeError = iota + liberr.MinPkgFragment
	ErrorConfigUnreadable
	ErrorUnknownParserDriver
	ErrorUnknownFilterDriver
	ErrorUnknownStorageDriver
	ErrorUnknownSourceDriver
	ErrorMissingName
	ErrorMissingDriver
	ErrorSkeletonWrite
)

func init() {
	if liberr.ExistInMapMessage(ErrorConfigRead) {
		panic(fmt.Errorf("error code collision with package %s", pkgName))
	}

	liberr.RegisterIdFctMessage(ErrorConfigRead, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorConfigRead:
		return "cannot read configuration file"
	case ErrorConfigUnreadable:
		return "cannot read configuration fragment"
	case ErrorUnknownParserDriver:
		return "unknown parser driver"
	case ErrorUnknownFilterDriver:
		return "unknown filter driver"
	case ErrorUnknownStorageDriver:
		return "unknown storage driver"
	case ErrorUnknownSourceDriver:
		return "unknown source driver"
	case ErrorMissingName:
		return "fragment is missing its 'name' key"
	case ErrorMissingDriver:
		return "fragment is missing its 'driver' key"
	case ErrorSkeletonWrite:
		return "cannot write config-dir-init skeleton"
	}

	return liberr.NullMessage
}
