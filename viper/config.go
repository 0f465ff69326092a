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
	"os"

	loglvl "github.com/nabbar/statcollect/logger/level"
)

func (v *vpr) SetConfigFile(path string) error {
	v.m.Lock()
	defer v.m.Unlock()

	if path != "" {
		v.vpr.SetConfigFile(path)
		return nil
	}

	if v.homeBase == "" {
		return ErrorParamMissing.Error(fmt.Errorf("SetHomeBaseName must be called before an empty config path is used"))
	}

	if h, e := os.UserHomeDir(); e == nil && h != "" {
		v.vpr.AddConfigPath(h)
	} else {
		return ErrorHomePathNotFound.Error(e)
	}

	if wd, e := os.Getwd(); e == nil && wd != "" {
		v.vpr.AddConfigPath(wd)
	} else {
		return ErrorBasePathNotFound.Error(e)
	}

	v.vpr.SetConfigName(v.homeBase)
	return nil
}

func (v *vpr) ReadInConfig() error {
	return v.vpr.ReadInConfig()
}

func (v *vpr) registerRemote() error {
	if v.remProvider == "" {
		return nil
	}

	var e error
	if v.remSecureKey != "" {
		e = v.vpr.AddSecureRemoteProvider(v.remProvider, v.remEndpoint, v.remPath, v.remSecureKey)
	} else {
		e = v.vpr.AddRemoteProvider(v.remProvider, v.remEndpoint, v.remPath)
	}

	if e != nil {
		if v.remSecureKey != "" {
			return ErrorRemoteProviderSecure.Error(e)
		}
		return ErrorRemoteProvider.Error(e)
	}

	return nil
}

func (v *vpr) readRemote() error {
	if v.remProvider == "" {
		return nil
	}

	if e := v.vpr.ReadRemoteConfig(); e != nil {
		return ErrorRemoteProviderRead.Error(e)
	}

	return nil
}

// watchRemote polls the remote provider for changes via spf13/viper's own
// WatchRemoteConfig and re-unmarshals into the registered model on each change,
// invoking the registered reload callback.
func (v *vpr) watchRemote() {
	for {
		if e := v.vpr.WatchRemoteConfig(); e != nil {
			return
		}

		v.m.Lock()
		if v.remModel != nil {
			_ = v.vpr.Unmarshal(v.remModel, v.decoderOpt())
		}
		fct := v.remReload
		v.m.Unlock()

		if fct != nil {
			fct()
		}
	}
}

// Config reads the configuration from the registered remote provider (if any),
// then from the local config file, falling back to the default config reader
// registered via SetDefaultConfig when neither is available. lvlStart and
// lvlDone are logged (when a logger is registered) around the attempt.
func (v *vpr) Config(lvlStart, lvlDone loglvl.Level) error {
	if l := v.log(); l != nil {
		l.Entry(lvlStart, "loading configuration").Log()
	}

	v.m.Lock()
	defer v.m.Unlock()

	if e := v.registerRemote(); e != nil {
		return e
	}

	if v.remProvider != "" {
		if e := v.readRemote(); e != nil {
			return e
		}

		if v.remModel != nil {
			if e := v.vpr.Unmarshal(v.remModel, v.decoderOpt()); e != nil {
				return ErrorRemoteProviderMarshall.Error(e)
			}
		}

		if v.remReload != nil {
			go v.watchRemote()
		}

		if l := v.log(); l != nil {
			l.Entry(lvlDone, "configuration loaded from remote provider").Log()
		}
		return nil
	}

	if e := v.vpr.ReadInConfig(); e != nil {
		if v.defCfg == nil {
			return ErrorConfigRead.Error(e)
		}

		r := v.defCfg()
		if r == nil {
			return ErrorConfigReadDefault.Error(fmt.Errorf("no default config reader registered"))
		}

		if e = v.vpr.ReadConfig(r); e != nil {
			return ErrorConfigReadDefault.Error(e)
		}

		if l := v.log(); l != nil {
			l.Entry(lvlDone, "configuration loaded from default fallback reader").Log()
		}

		return ErrorConfigIsDefault.Error(nil)
	}

	if l := v.log(); l != nil {
		l.Entry(lvlDone, "configuration loaded from "+v.vpr.ConfigFileUsed()).Log()
	}

	return nil
}
