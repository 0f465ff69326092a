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

package types

import (
	"bytes"
	"encoding/json"
)

var _defaultConfig = []byte(`{
   "name":"",
   "checkTimeout":"5s",
   "intervalCheck":"1s",
   "intervalFall":"1s",
   "intervalRise":"1s",
   "fallCountWarn":3,
   "fallCountKO":5,
   "riseCountWarn":3,
   "riseCountKO":5
}`)

// SetDefaultConfig overrides the default monitor configuration sample returned by DefaultConfig.
func SetDefaultConfig(cfg []byte) {
	_defaultConfig = cfg
}

// DefaultConfig returns a sample monitor configuration, JSON-indented for embedding into a
// component's own default configuration document.
func DefaultConfig(indent string) []byte {
	var res = bytes.NewBuffer(make([]byte, 0))
	if err := json.Indent(res, _defaultConfig, indent, "  "); err != nil {
		return _defaultConfig
	}
	return res.Bytes()
}
