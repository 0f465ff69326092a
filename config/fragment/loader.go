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
	"context"
	"path/filepath"

	"github.com/nabbar/statcollect/filter"
	liblog "github.com/nabbar/statcollect/logger"
	"github.com/nabbar/statcollect/parser"
	"github.com/nabbar/statcollect/pipeline"
	"github.com/nabbar/statcollect/source"
	"github.com/nabbar/statcollect/storage"

	liberr "github.com/nabbar/statcollect/errors"
)

// Result is everything Load assembles out of one main config file and
// its fragments: a running-ready Coordinator plus the self-telemetry
// listen address given by the "http_addr"/"http_port" keys.
type Result struct {
	Coordinator *pipeline.Coordinator
	Parsers     *parser.Registry
	Filters     *filter.Registry
	Storages    *storage.Registry

	HTTPAddr string
	HTTPPort int
}

// Loader reads the daemon's key=value main config file and the
// "*.d/*.conf" fragments it references through the recognized keys
// (parsers, filters, storage, source_groups, http_port, http_addr),
// building the registries and the Coordinator.
type Loader struct {
	ctx context.Context
	log liblog.FuncLog

	pipelineCfg pipeline.Config
}

// NewLoader builds a Loader. pipelineCfg is the coordinator's own
// tunables (IntakeBuffer, StorageHighWaterMark, ...); a zero value is
// replaced with pipeline.DefaultConfig()'s values by pipeline.New.
func NewLoader(ctx context.Context, log liblog.FuncLog, pipelineCfg pipeline.Config) *Loader {
	return &Loader{ctx: ctx, log: log, pipelineCfg: pipelineCfg}
}

// Load parses path and every fragment it references, relative to path's
// directory, and returns the assembled Result. Any configuration error is
// a Config-kind failure: fatal at startup, never at runtime.
func (l *Loader) Load(path string) (*Result, liberr.Error) {
	dir := filepath.Dir(path)

	main, err := openProperties(l.ctx, l.log, path)
	if err != nil {
		return nil, err
	}

	parsers := parser.NewRegistry()
	filters := filter.NewRegistry()
	storages := storage.NewRegistry()

	if e := l.loadParsers(dir, getString(main, "parsers"), parsers); e != nil {
		return nil, e
	}
	if e := l.loadFilters(dir, getString(main, "filters"), filters); e != nil {
		return nil, e
	}
	if e := l.loadStorages(dir, getString(main, "storage"), storages); e != nil {
		return nil, e
	}

	coord := pipeline.New(l.pipelineCfg, parsers, filters, storages, l.log)

	if e := l.loadSources(dir, getString(main, "source_groups"), coord); e != nil {
		return nil, e
	}

	res := &Result{
		Coordinator: coord,
		Parsers:     parsers,
		Filters:     filters,
		Storages:    storages,
		HTTPAddr:    getString(main, "http_addr"),
		HTTPPort:    main.GetInt("http_port"),
	}
	if res.HTTPAddr == "" {
		res.HTTPAddr = "*"
	}

	return res, nil
}

func (l *Loader) loadParsers(dir, glob string, reg *parser.Registry) liberr.Error {
	files, ferr := resolveGlob(dir, glob)
	if ferr != nil {
		return ErrorConfigRead.Error(ferr)
	}

	for _, f := range files {
		v, err := openProperties(l.ctx, l.log, f)
		if err != nil {
			return err
		}

		name := getString(v, "name")
		driver := getString(v, "driver")
		if name == "" {
			return ErrorMissingName.Error(nil)
		}
		if driver == "" {
			return ErrorMissingDriver.Error(nil)
		}

		p, err := buildParser(driver, v)
		if err != nil {
			return err
		}
		if e := p.Init(); e != nil {
			return ErrorConfigUnreadable.Error(e)
		}

		reg.Register(name, p)
	}

	return nil
}

func (l *Loader) loadFilters(dir, glob string, reg *filter.Registry) liberr.Error {
	files, ferr := resolveGlob(dir, glob)
	if ferr != nil {
		return ErrorConfigRead.Error(ferr)
	}

	for _, f := range files {
		v, err := openProperties(l.ctx, l.log, f)
		if err != nil {
			return err
		}

		name := getString(v, "name")
		driver := getString(v, "driver")
		if name == "" {
			return ErrorMissingName.Error(nil)
		}
		if driver == "" {
			return ErrorMissingDriver.Error(nil)
		}

		fl, err := buildFilter(driver, v)
		if err != nil {
			return err
		}

		reg.Register(name, fl)
	}

	return nil
}

func (l *Loader) loadStorages(dir, glob string, reg *storage.Registry) liberr.Error {
	files, ferr := resolveGlob(dir, glob)
	if ferr != nil {
		return ErrorConfigRead.Error(ferr)
	}

	for _, f := range files {
		v, err := openProperties(l.ctx, l.log, f)
		if err != nil {
			return err
		}

		name := getString(v, "name")
		driver := getString(v, "driver")
		if name == "" {
			return ErrorMissingName.Error(nil)
		}
		if driver == "" {
			return ErrorMissingDriver.Error(nil)
		}

		st, err := buildStorage(driver, v)
		if err != nil {
			return err
		}

		reg.Register(name, st)
	}

	return nil
}

func (l *Loader) loadSources(dir, glob string, coord *pipeline.Coordinator) liberr.Error {
	files, ferr := resolveGlob(dir, glob)
	if ferr != nil {
		return ErrorConfigRead.Error(ferr)
	}

	for _, f := range files {
		v, err := openProperties(l.ctx, l.log, f)
		if err != nil {
			return err
		}

		driver := getString(v, "driver")
		if driver == "" {
			return ErrorMissingDriver.Error(nil)
		}

		sf, err := buildSource(driver, v)
		if err != nil {
			return err
		}
		if sf.name == "" {
			return ErrorMissingName.Error(nil)
		}

		sched := source.NewScheduled(sf.cfg, sf.fetcher, coord.Intake)
		coord.RegisterSource(sf.name, sched)
	}

	return nil
}
