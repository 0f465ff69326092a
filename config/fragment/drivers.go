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
	"strings"
	"time"

	"github.com/nabbar/statcollect/filter"
	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/parser/jsonflat"
	"github.com/nabbar/statcollect/parser/textsimple"
	"github.com/nabbar/statcollect/parser/userfunc"
	"github.com/nabbar/statcollect/parser/webstatus"
	"github.com/nabbar/statcollect/parser/xmlstat"
	"github.com/nabbar/statcollect/record"
	"github.com/nabbar/statcollect/source"
	"github.com/nabbar/statcollect/source/execsrc"
	"github.com/nabbar/statcollect/source/httpsrc"
	"github.com/nabbar/statcollect/source/socketsrc"
	"github.com/nabbar/statcollect/source/staticsrc"
	"github.com/nabbar/statcollect/storage"
	"github.com/nabbar/statcollect/storage/filesink"
	"github.com/nabbar/statcollect/storage/graphite"
	"github.com/nabbar/statcollect/transport/dnsresolve"
	"github.com/nabbar/statcollect/transport/tcpconn"

	libvpr "github.com/nabbar/statcollect/viper"

	liberr "github.com/nabbar/statcollect/errors"
)

// buildParser instantiates the Parser named by a parser.d fragment's
// "driver" key.
func buildParser(driver string, v libvpr.Viper) (parser.Parser, liberr.Error) {
	switch strings.ToLower(driver) {
	case "textsimple":
		return textsimple.New(), nil
	case "jsonflat":
		return jsonflat.New(), nil
	case "xmlstat":
		return xmlstat.New(), nil
	case "webstatus-nginx":
		return webstatus.New(webstatus.Nginx), nil
	case "webstatus-apache", "webstatus-lighttpd":
		return webstatus.New(webstatus.ApacheLighttpd), nil
	case "webstatus-varnish":
		return webstatus.New(webstatus.Varnish), nil
	case "userfunc":
		// A fragment cannot carry a Go closure; this placeholder rejects
		// every payload. Callers that need a userfunc parser register one
		// directly on the built parser.Registry after Load returns,
		// overwriting this entry under the same name.
		return userfunc.New(func(data []byte) (*record.Content, error) {
			return nil, ErrorUnknownParserDriver.Error(nil)
		}), nil
	default:
		return nil, ErrorUnknownParserDriver.Error(nil)
	}
}

// buildFilter instantiates the Filter named by a filter.d fragment's
// "driver" key: rename, scale, route, drop or add.
func buildFilter(driver string, v libvpr.Viper) (filter.Filter, liberr.Error) {
	switch strings.ToLower(driver) {
	case "rename":
		return filter.NewRename(getStringMap(v, "mapping")), nil
	case "scale":
		return filter.NewScale(getFloatMap(v, "factors")), nil
	case "route":
		return filter.NewRoute(getString(v, "host"), getStringSlice(v, "storages")), nil
	case "drop":
		return filter.NewDrop(getStringSlice(v, "keys")...), nil
	case "add":
		return filter.NewAdd(getFloatMap(v, "values")), nil
	default:
		return nil, ErrorUnknownFilterDriver.Error(nil)
	}
}

// buildStorage instantiates the Storage named by a storage.d fragment's
// "driver" key.
func buildStorage(driver string, v libvpr.Viper) (storage.Storage, liberr.Error) {
	switch strings.ToLower(driver) {
	case "filesink", "file":
		return filesink.New(getString(v, "dir"), getString(v, "prefix")), nil
	case "graphite":
		host := getString(v, "host")
		port := v.GetInt("port")
		mac := tcpconn.New(tcpconn.Config{
			Resolver:    defaultResolver,
			Failover:    true,
			DialTimeout: 5 * time.Second,
		})
		return graphite.New(host, port, mac), nil
	default:
		return nil, ErrorUnknownStorageDriver.Error(nil)
	}
}

// defaultResolver is the process-wide DNS resolver every fragment-built
// source and the Graphite sink share, so the whole process keeps a single
// host cache.
var defaultResolver = dnsresolve.New(5*time.Minute, 64, dnsresolve.Options{})

// sourceFragment is the schedule + routing metadata common to every
// source.d fragment, independent of its driver.
type sourceFragment struct {
	name    string
	cfg     source.Config
	fetcher source.Fetcher
}

// buildSource instantiates the Fetcher named by a source.d fragment's
// "driver" key and assembles the shared schedule/routing Config around it.
func buildSource(driver string, v libvpr.Viper) (*sourceFragment, liberr.Error) {
	cfg := source.Config{
		FetchInterval: v.GetDuration("interval"),
		FetchTimeout:  v.GetDuration("timeout"),
		Jitter:        v.GetDuration("jitter"),
		Parsers:       getStringSlice(v, "parsers"),
		Filters:       getStringSlice(v, "filters"),
		Storages:      getStringSlice(v, "storages"),
		Host:          getString(v, "host"),
		Port:          v.GetInt("port"),
	}
	if cfg.FetchInterval <= 0 {
		cfg.FetchInterval = 30 * time.Second
	}

	var (
		fetcher source.Fetcher
		err     error
	)

	switch strings.ToLower(driver) {
	case "http":
		pw, perr := resolvePassword(v, fmt.Sprintf("password for %s", getString(v, "url")))
		if perr != nil {
			return nil, perr
		}
		fetcher, err = httpsrc.New(httpsrc.Config{
			URL:      getString(v, "url"),
			Method:   getString(v, "method"),
			Host:     getString(v, "vhost"),
			Username: getString(v, "username"),
			Password: pw,
			ProxyURL: getString(v, "proxy"),
			Headers:  getStringMap(v, "headers"),
			TCP: tcpconn.Config{
				Resolver:    defaultResolver,
				Failover:    true,
				DialTimeout: cfg.FetchTimeout,
			},
		})
	case "exec":
		fetcher, err = execsrc.New(execsrc.Config{
			Command: getStringSlice(v, "command"),
			Env:     getStringSlice(v, "env"),
			Dir:     getString(v, "dir"),
			Timeout: cfg.FetchTimeout,
		}, getString(v, "url"))
	case "execssh":
		fetcher, err = execsrc.New(execsrc.Config{
			Command: getStringSlice(v, "command"),
			Env:     getStringSlice(v, "env"),
			Dir:     getString(v, "dir"),
			Timeout: cfg.FetchTimeout,
			SSH: &execsrc.SSHConfig{
				User:    getString(v, "ssh_user"),
				Host:    getString(v, "ssh_host"),
				Port:    v.GetInt("ssh_port"),
				Options: getStringSlice(v, "ssh_options"),
			},
		}, getString(v, "url"))
	case "mysql":
		fetcher, err = execsrc.NewMySQL(execsrc.MySQLConfig{
			DSN:            getString(v, "dsn"),
			Name:           getString(v, "name"),
			PoolMaxIdle:    v.GetInt("pool_max_idle"),
			PoolMaxOpen:    v.GetInt("pool_max_open"),
			Query:          getString(v, "query"),
			VariableColumn: getString(v, "variable_column"),
			ValueColumn:    getString(v, "value_column"),
		}, getString(v, "url"))
	case "socket":
		fetcher, err = socketsrc.New(socketsrc.Config{
			Host:       getString(v, "host"),
			Port:       v.GetInt("port"),
			Command:    getString(v, "command"),
			Terminator: getString(v, "terminator"),
			TCP: tcpconn.Config{
				Resolver:    defaultResolver,
				Failover:    true,
				DialTimeout: cfg.FetchTimeout,
			},
		}, getString(v, "url"))
	case "static":
		fetcher = staticsrc.NewStatic(getString(v, "url"), []byte(getString(v, "data")))
	case "dummy":
		fetcher = staticsrc.NewDummy(getString(v, "url"), []byte(getString(v, "data")), v.GetDuration("max_wait"))
	case "hostselfstats":
		fetcher = staticsrc.NewHostSelf(getString(v, "url"), v.GetDuration("cpu_sample_window"))
	default:
		return nil, ErrorUnknownSourceDriver.Error(nil)
	}

	if err != nil {
		return nil, ErrorUnknownSourceDriver.Error(err)
	}

	return &sourceFragment{name: getString(v, "name"), cfg: cfg, fetcher: fetcher}, nil
}
