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
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	spfvpr "github.com/spf13/viper"

	liblog "github.com/nabbar/statcollect/logger"
)

type vpr struct {
	m sync.Mutex

	ctx context.Context
	fl  liblog.FuncLog
	vpr *spfvpr.Viper

	homeBase string
	envPfx   string

	defCfg FuncDefaultConfig

	remProvider  string
	remEndpoint  string
	remPath      string
	remModel     interface{}
	remSecureKey string
	remReload    FuncRemoteReload

	hooks []mapstructure.DecodeHookFunc
}

func (v *vpr) log() liblog.Logger {
	if v.fl == nil {
		return nil
	}
	return v.fl()
}

func (v *vpr) Viper() *spfvpr.Viper {
	return v.vpr
}

func (v *vpr) SetHomeBaseName(base string) {
	v.m.Lock()
	defer v.m.Unlock()
	v.homeBase = base
}

func (v *vpr) SetEnvVarsPrefix(prefix string) {
	v.m.Lock()
	defer v.m.Unlock()
	v.envPfx = prefix
	v.vpr.SetEnvPrefix(prefix)
	v.vpr.AutomaticEnv()
}

func (v *vpr) SetDefaultConfig(fct FuncDefaultConfig) {
	v.m.Lock()
	defer v.m.Unlock()
	v.defCfg = fct
}

func (v *vpr) SetRemoteProvider(provider string) {
	v.m.Lock()
	defer v.m.Unlock()
	v.remProvider = provider
}

func (v *vpr) SetRemoteEndpoint(endpoint string) {
	v.m.Lock()
	defer v.m.Unlock()
	v.remEndpoint = endpoint
}

func (v *vpr) SetRemotePath(path string) {
	v.m.Lock()
	defer v.m.Unlock()
	v.remPath = path
}

func (v *vpr) SetRemoteModel(model interface{}) {
	v.m.Lock()
	defer v.m.Unlock()
	v.remModel = model
}

func (v *vpr) SetRemoteSecureKey(keyPath string) {
	v.m.Lock()
	defer v.m.Unlock()
	v.remSecureKey = keyPath
}

func (v *vpr) SetRemoteReloadFunc(fct FuncRemoteReload) {
	v.m.Lock()
	defer v.m.Unlock()
	v.remReload = fct
}

func (v *vpr) HookRegister(hook interface{}) {
	h, k := hook.(mapstructure.DecodeHookFunc)
	if !k {
		return
	}
	v.m.Lock()
	defer v.m.Unlock()
	v.hooks = append(v.hooks, h)
}

func (v *vpr) HookReset() {
	v.m.Lock()
	defer v.m.Unlock()
	v.hooks = nil
}

func (v *vpr) decoderOpt() spfvpr.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		if len(v.hooks) < 1 {
			return
		} else if len(v.hooks) == 1 {
			cfg.DecodeHook = v.hooks[0]
		} else {
			cfg.DecodeHook = mapstructure.ComposeDecodeHookFunc(v.hooks...)
		}
	}
}

func (v *vpr) Unmarshal(rawVal interface{}) error {
	return v.vpr.Unmarshal(rawVal, v.decoderOpt())
}

func (v *vpr) UnmarshalKey(key string, rawVal interface{}) error {
	return v.vpr.UnmarshalKey(key, rawVal, v.decoderOpt())
}

func (v *vpr) UnmarshalExact(rawVal interface{}) error {
	return v.vpr.UnmarshalExact(rawVal, v.decoderOpt())
}

func (v *vpr) BindPFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return ErrorParamEmpty.Error(fmt.Errorf("nil pflag for key %q", key))
	}
	return v.vpr.BindPFlag(key, flag)
}

func (v *vpr) Set(key string, value interface{}) {
	v.vpr.Set(key, value)
}

func (v *vpr) SetDefault(key string, value interface{}) {
	v.vpr.SetDefault(key, value)
}

func (v *vpr) Unset(key string) {
	v.vpr.Set(key, nil)
}

func (v *vpr) IsSet(key string) bool {
	return v.vpr.IsSet(key)
}

func (v *vpr) GetString(key string) string {
	return v.vpr.GetString(key)
}

func (v *vpr) GetBool(key string) bool {
	return v.vpr.GetBool(key)
}

func (v *vpr) GetInt(key string) int {
	return v.vpr.GetInt(key)
}

func (v *vpr) GetUint(key string) uint {
	return v.vpr.GetUint(key)
}

func (v *vpr) GetFloat64(key string) float64 {
	return v.vpr.GetFloat64(key)
}

func (v *vpr) GetDuration(key string) time.Duration {
	return v.vpr.GetDuration(key)
}

func (v *vpr) GetTime(key string) time.Time {
	return v.vpr.GetTime(key)
}

func (v *vpr) GetStringSlice(key string) []string {
	return v.vpr.GetStringSlice(key)
}

func (v *vpr) GetIntSlice(key string) []int {
	return v.vpr.GetIntSlice(key)
}

func (v *vpr) GetStringMap(key string) map[string]interface{} {
	return v.vpr.GetStringMap(key)
}

func (v *vpr) GetStringMapString(key string) map[string]string {
	return v.vpr.GetStringMapString(key)
}

func (v *vpr) GetStringMapStringSlice(key string) map[string][]string {
	return v.vpr.GetStringMapStringSlice(key)
}
