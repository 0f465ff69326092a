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

package version

import (
	"fmt"

	liberr "github.com/nabbar/statcollect/errors"
)

const (
	// ErrorParamEmpty indicates a required parameter to this package was empty.
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgVersion

	// ErrorGoVersionInit indicates the constraint or version string given to
	// CheckGo could not be parsed.
	ErrorGoVersionInit

	// ErrorGoVersionRuntime indicates the running Go runtime's version could not
	// be parsed.
	ErrorGoVersionRuntime

	// ErrorGoVersionConstraint indicates the running Go runtime does not satisfy
	// the given constraint.
	ErrorGoVersionConstraint
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic(fmt.Errorf("error code collision with package statcollect/version"))
	}
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "at least one given parameters is empty"
	case ErrorGoVersionInit:
		return "init GoVersion contraint error"
	case ErrorGoVersionRuntime:
		return "cannot parse the current go runtime version"
	case ErrorGoVersionConstraint:
		return "current go runtime does not match the expected non-compatible version of Go"
	}

	return liberr.NullMessage
}
