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
	"runtime"
	"strings"

	hcversion "github.com/hashicorp/go-version"

	liberr "github.com/nabbar/statcollect/errors"
)

// CheckGo validates the running Go runtime against a constraint expression such
// as ("1.21", ">=") or ("1.20", "~>"). An empty version or operator is an init error.
func (v *vers) CheckGo(version string, operator string) liberr.Error {
	if version == "" || operator == "" {
		return ErrorGoVersionInit.Error(fmt.Errorf("empty version or operator"))
	}

	cst, e := hcversion.NewConstraint(operator + " " + version)
	if e != nil {
		return ErrorGoVersionInit.Error(e)
	}

	rt := strings.TrimPrefix(runtime.Version(), "go")
	rtv, e := hcversion.NewVersion(rt)
	if e != nil {
		return ErrorGoVersionRuntime.Error(e)
	}

	if !cst.Check(rtv) {
		return ErrorGoVersionConstraint.Error(fmt.Errorf("go runtime %s does not satisfy %s %s", rt, operator, version))
	}

	return nil
}
