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

// Package viper wraps spf13/viper with the config discovery, default-config
// fallback, and remote-provider conventions shared by every component in this
// module: a home-directory dotfile, an env-var prefix, and a file watch hook.
package viper

import (
	"context"
	"io"
	"time"

	"github.com/spf13/pflag"
	spfvpr "github.com/spf13/viper"

	liblog "github.com/nabbar/statcollect/logger"
	loglvl "github.com/nabbar/statcollect/logger/level"
)

// FuncDefaultConfig returns a reader over a fallback configuration document,
// used when no config file can be found or read.
type FuncDefaultConfig func() io.Reader

// FuncRemoteReload is invoked after a remote configuration is successfully re-read.
type FuncRemoteReload func()

// FuncViper returns the shared Viper instance used by config components.
type FuncViper func() Viper

// Viper exposes configuration loading (local file, env vars, remote provider)
// and typed accessors over the underlying spf13/viper instance.
type Viper interface {
	// Viper returns the underlying spf13/viper instance for advanced use.
	Viper() *spfvpr.Viper

	// SetHomeBaseName sets the dotfile base name searched for in the user's home
	// and working directories when no explicit config file is set.
	SetHomeBaseName(base string)

	// SetEnvVarsPrefix sets the prefix used for automatic environment variable lookups.
	SetEnvVarsPrefix(prefix string)

	// SetDefaultConfig registers the fallback configuration reader used when no
	// config file can be found or read.
	SetDefaultConfig(fct FuncDefaultConfig)

	// SetConfigFile sets an explicit config file path. An empty path falls back
	// to home-directory discovery, which requires SetHomeBaseName to have been called.
	SetConfigFile(path string) error

	// SetRemoteProvider registers a remote configuration provider (etcd, consul, ...).
	SetRemoteProvider(provider string)

	// SetRemoteEndpoint sets the remote provider's endpoint address.
	SetRemoteEndpoint(endpoint string)

	// SetRemotePath sets the remote provider's config path/key.
	SetRemotePath(path string)

	// SetRemoteModel registers the struct pointer the remote configuration is
	// unmarshalled into once read. The provider's config format is detected by
	// spf13/viper from the RemotePath extension, defaulting to yaml.
	SetRemoteModel(model interface{})

	// SetRemoteSecureKey sets the path to the GPG keyring used to decrypt a secure
	// remote config.
	SetRemoteSecureKey(keyPath string)

	// SetRemoteReloadFunc registers a callback invoked each time the remote config
	// is refetched via WatchRemoteConfig.
	SetRemoteReloadFunc(fct FuncRemoteReload)

	// Config reads the configuration (file or remote), falling back to the default
	// config reader if registered. lvlStart/lvlDone are logged around the read.
	Config(lvlStart, lvlDone loglvl.Level) error

	// HookRegister registers a mapstructure decode hook used by Unmarshal/UnmarshalKey.
	HookRegister(hook interface{})

	// HookReset clears all registered decode hooks.
	HookReset()

	// Unmarshal decodes the entire configuration into the given pointer.
	Unmarshal(rawVal interface{}) error

	// UnmarshalKey decodes the configuration under key into the given pointer.
	UnmarshalKey(key string, rawVal interface{}) error

	// UnmarshalExact behaves like Unmarshal but errors on unused fields.
	UnmarshalExact(rawVal interface{}) error

	// BindPFlag binds a cobra/pflag flag to a configuration key.
	BindPFlag(key string, flag *pflag.Flag) error

	// Set overrides a configuration key.
	Set(key string, value interface{})

	// SetDefault sets a default value for a configuration key.
	SetDefault(key string, value interface{})

	// Unset removes an override previously set via Set, if supported by the
	// underlying viper version; otherwise it resets the key to its default/zero value.
	Unset(key string)

	// IsSet reports whether a key has been set, explicitly or via default.
	IsSet(key string) bool

	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetTime(key string) time.Time
	GetStringSlice(key string) []string
	GetIntSlice(key string) []int
	GetStringMap(key string) map[string]interface{}
	GetStringMapString(key string) map[string]string
	GetStringMapStringSlice(key string) map[string][]string
}

// New creates a Viper bound to the given context and logger.
func New(ctx context.Context, fl liblog.FuncLog) Viper {
	return &vpr{
		ctx: ctx,
		fl:  fl,
		vpr: spfvpr.New(),
	}
}
