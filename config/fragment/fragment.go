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

// Package fragment generalizes config.Component's single-document loading
// into the daemon's own key=value configuration story: one
// main file naming glob patterns for parser/filter/storage/source
// fragments, each fragment instantiating one driver by naming it and
// listing its own parameters. The key=value/`#`-comment/quote-stripping
// line format is the Java-properties dialect spf13/viper already speaks
// (backed by magiconair/properties, pulled in transitively by viper) -
// this package leans on that support rather than hand-rolling a parser.
package fragment

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	liblog "github.com/nabbar/statcollect/logger"
	libvpr "github.com/nabbar/statcollect/viper"

	liberr "github.com/nabbar/statcollect/errors"
)

// openProperties builds a Viper instance bound to path and reads it as
// the properties dialect (key = value, # comments), regardless of the
// file's actual extension (fragments use ".conf", not ".properties").
func openProperties(ctx context.Context, log liblog.FuncLog, path string) (libvpr.Viper, liberr.Error) {
	v := libvpr.New(ctx, log)
	v.Viper().SetConfigType("properties")

	if err := v.SetConfigFile(path); err != nil {
		return nil, ErrorConfigRead.Error(err)
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, ErrorConfigUnreadable.Error(err)
	}

	return v, nil
}

// unquote strips one layer of matching leading/trailing quotes from a
// key=value line's value. The properties decoder has no opinion on
// quoting, so this is applied to every string value pulled out of a
// fragment.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// getString reads key as a string, unquoted and trimmed.
func getString(v libvpr.Viper, key string) string {
	return unquote(v.GetString(key))
}

// getStringSlice reads key as a comma-separated list, unquoting and
// trimming each element; an unset key yields nil.
func getStringSlice(v libvpr.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	raw := v.GetStringSlice(key)
	if len(raw) == 0 {
		// properties values are plain strings; viper only splits into a
		// slice for formats that support native lists, so fall back to a
		// manual comma split of the raw string value.
		s := getString(v, key)
		if s == "" {
			return nil
		}
		raw = strings.Split(s, ",")
	}

	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if u := unquote(r); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// getStringMap reads key as a "k1:v1,k2:v2" list into a map[string]string,
// unquoting each side.
func getStringMap(v libvpr.Viper, key string) map[string]string {
	s := getString(v, key)
	if s == "" {
		return nil
	}

	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		out[unquote(kv[0])] = unquote(kv[1])
	}
	return out
}

// getFloatMap behaves like getStringMap but parses each value as a
// float64, skipping pairs that do not parse.
func getFloatMap(v libvpr.Viper, key string) map[string]float64 {
	raw := getStringMap(v, key)
	if raw == nil {
		return nil
	}

	out := make(map[string]float64, len(raw))
	for k, s := range raw {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			out[k] = f
		}
	}
	return out
}

// resolveGlob resolves pattern relative to base when it is not already
// absolute - fragment globs are read relative to the main config file's
// directory - then expands it.
func resolveGlob(base, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, nil
	}
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(base, pattern)
	}
	return filepath.Glob(pattern)
}
