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

package viper

import (
	"fmt"

	liberr "github.com/nabbar/statcollect/errors"
)

const (
	// ErrorParamEmpty indicates a required parameter to this package was empty.
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgViper

	// ErrorParamMissing indicates a required call (e.g. SetHomeBaseName) was
	// never made before it was needed.
	ErrorParamMissing

	// ErrorHomePathNotFound indicates the user home directory could not be resolved.
	ErrorHomePathNotFound

	// ErrorBasePathNotFound indicates the current working directory could not be resolved.
	ErrorBasePathNotFound

	// ErrorRemoteProvider indicates the remote config provider could not be registered.
	ErrorRemoteProvider

	// ErrorRemoteProviderSecure indicates the secure remote config provider could
	// not be registered.
	ErrorRemoteProviderSecure

	// ErrorRemoteProviderRead indicates the remote config could not be read.
	ErrorRemoteProviderRead

	// ErrorRemoteProviderMarshall indicates the remote config could not be decoded.
	ErrorRemoteProviderMarshall

	// ErrorConfigRead indicates the local config file could not be read.
	ErrorConfigRead

	// ErrorConfigReadDefault indicates the fallback default config reader could
	// not be read.
	ErrorConfigReadDefault

	// ErrorConfigIsDefault indicates the configuration was loaded from the
	// fallback default reader, not from a config file. Returned as a non-fatal
	// companion error by Config.
	ErrorConfigIsDefault
)

func init() {
	if liberr.ExistInMapMessage(ErrorParamEmpty) {
		panic(fmt.Errorf("error code collision with package statcollect/viper"))
	}
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case ErrorParamEmpty:
		return "at least one given parameters is empty"
	case ErrorParamMissing:
		return "a required configuration call is missing before this operation"
	case ErrorHomePathNotFound:
		return "cannot resolve the user home directory"
	case ErrorBasePathNotFound:
		return "cannot resolve the current working directory"
	case ErrorRemoteProvider:
		return "cannot register the remote configuration provider"
	case ErrorRemoteProviderSecure:
		return "cannot register the secure remote configuration provider"
	case ErrorRemoteProviderRead:
		return "cannot read the remote configuration"
	case ErrorRemoteProviderMarshall:
		return "cannot decode the remote configuration"
	case ErrorConfigRead:
		return "cannot read the configuration file"
	case ErrorConfigReadDefault:
		return "cannot read the default configuration"
	case ErrorConfigIsDefault:
		return "configuration loaded from the default fallback reader, not from a config file"
	}

	return liberr.NullMessage
}
