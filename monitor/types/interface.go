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

// Package types declares the shared contracts for the monitor package: the
// health-check configuration, the Monitor and Pool interfaces, and the
// rise/fall hysteresis thresholds used to debounce flapping health checks.
package types

import (
	"context"
	"time"

	libctx "github.com/nabbar/statcollect/context"
	libdur "github.com/nabbar/statcollect/duration"
	liblog "github.com/nabbar/statcollect/logger"
)

const (
	// MinCheckTimeout is the minimum allowed duration for a single health check call.
	MinCheckTimeout = time.Second

	// MinIntervalCheck is the minimum allowed delay between two health checks.
	MinIntervalCheck = 100 * time.Millisecond

	// MinIntervalFallRise is the minimum allowed delay between two status transition probes.
	MinIntervalFallRise = 100 * time.Millisecond

	// MinCount is the minimum allowed value for any hysteresis counter.
	MinCount = uint8(1)

	// DefaultName is used when a Config has no Name set.
	DefaultName = "not named"
)

// Config describes a monitor's health check cadence and flap-dampening thresholds.
//
// FallCountWarn/FallCountKO and RiseCountWarn/RiseCountKO implement hysteresis: a
// monitor does not flip state on a single failed or recovered check, it requires
// the configured number of consecutive results first.
type Config struct {
	// Name identifies the monitor, for status reporting and pool lookups.
	Name string `mapstructure:"name" json:"name" yaml:"name" toml:"name"`

	// CheckTimeout bounds how long a single health check call may run.
	CheckTimeout libdur.Duration `mapstructure:"checkTimeout" json:"checkTimeout" yaml:"checkTimeout" toml:"checkTimeout"`

	// IntervalCheck is the delay between two consecutive health checks.
	IntervalCheck libdur.Duration `mapstructure:"intervalCheck" json:"intervalCheck" yaml:"intervalCheck" toml:"intervalCheck"`

	// IntervalFall is the delay between checks once a failure has been observed.
	IntervalFall libdur.Duration `mapstructure:"intervalFall" json:"intervalFall" yaml:"intervalFall" toml:"intervalFall"`

	// IntervalRise is the delay between checks once a recovery has been observed.
	IntervalRise libdur.Duration `mapstructure:"intervalRise" json:"intervalRise" yaml:"intervalRise" toml:"intervalRise"`

	// FallCountWarn is the number of consecutive failures before the status degrades to warning.
	FallCountWarn uint8 `mapstructure:"fallCountWarn" json:"fallCountWarn" yaml:"fallCountWarn" toml:"fallCountWarn"`

	// FallCountKO is the number of consecutive failures before the status degrades to KO.
	FallCountKO uint8 `mapstructure:"fallCountKO" json:"fallCountKO" yaml:"fallCountKO" toml:"fallCountKO"`

	// RiseCountWarn is the number of consecutive successes before the status recovers from KO to warning.
	RiseCountWarn uint8 `mapstructure:"riseCountWarn" json:"riseCountWarn" yaml:"riseCountWarn" toml:"riseCountWarn"`

	// RiseCountKO is the number of consecutive successes before the status fully recovers.
	RiseCountKO uint8 `mapstructure:"riseCountKO" json:"riseCountKO" yaml:"riseCountKO" toml:"riseCountKO"`

	// Logger returns the logger used to report status transitions. May be nil.
	Logger liblog.FuncLog `mapstructure:"-" json:"-" yaml:"-" toml:"-"`
}

// Default returns a Config populated with sane defaults.
func Default() Config {
	return Config{
		CheckTimeout:  libdur.ParseDuration(5 * time.Second),
		IntervalCheck: libdur.ParseDuration(time.Second),
		IntervalFall:  libdur.ParseDuration(time.Second),
		IntervalRise:  libdur.ParseDuration(time.Second),
		FallCountWarn: 3,
		FallCountKO:   5,
		RiseCountWarn: 3,
		RiseCountKO:   5,
	}
}

// clamp normalizes a Config to the package minimums, filling in defaulted fields.
func (c Config) Clamp() Config {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.CheckTimeout.Time() < MinCheckTimeout {
		c.CheckTimeout = libdur.ParseDuration(MinCheckTimeout)
	}
	if c.IntervalCheck.Time() < MinIntervalCheck {
		c.IntervalCheck = libdur.ParseDuration(MinIntervalCheck)
	}
	if c.IntervalFall.Time() < MinIntervalFallRise {
		c.IntervalFall = c.IntervalCheck
	}
	if c.IntervalRise.Time() < MinIntervalFallRise {
		c.IntervalRise = c.IntervalCheck
	}
	if c.FallCountWarn < MinCount {
		c.FallCountWarn = MinCount
	}
	if c.FallCountKO < MinCount {
		c.FallCountKO = MinCount
	}
	if c.RiseCountWarn < MinCount {
		c.RiseCountWarn = MinCount
	}
	if c.RiseCountKO < MinCount {
		c.RiseCountKO = MinCount
	}
	return c
}

// HealthCheck is the function probed on every check interval. A non-nil error
// counts as a failure for hysteresis purposes.
type HealthCheck func(ctx context.Context) error

// Info exposes the naming and informational metadata reported by a Monitor.
type Info interface {
	// RegisterName registers the function used to compute the monitor's display name.
	RegisterName(fct func() (string, error))

	// RegisterInfo registers the function used to compute the monitor's info map.
	RegisterInfo(fct func() (map[string]interface{}, error))

	// Name returns the monitor's current display name.
	Name() (string, error)

	// Infos returns the monitor's current info map.
	Infos() (map[string]interface{}, error)
}

// Monitor runs a recurring HealthCheck and exposes its current status, applying
// rise/fall hysteresis before reporting a state transition.
type Monitor interface {
	// Name returns the monitor's configured name.
	Name() string

	// SetConfig applies a new configuration, clamped to the package minimums.
	SetConfig(ctx libctx.FuncContext, cfg Config) error

	// GetConfig returns the monitor's current configuration.
	GetConfig() Config

	// SetHealthCheck registers the function probed on every check interval.
	SetHealthCheck(fct HealthCheck)

	// GetHealthCheck returns the currently registered health check function.
	GetHealthCheck() HealthCheck

	// RegisterLoggerDefault registers the fallback logger used when none is set in Config.
	RegisterLoggerDefault(fct liblog.FuncLog)

	// InfoGet returns the monitor's Info instance.
	InfoGet() Info

	// InfoUpd replaces the monitor's Info instance.
	InfoUpd(inf Info)

	// Start begins the periodic health check loop.
	Start(ctx context.Context) error

	// Stop halts the periodic health check loop.
	Stop(ctx context.Context) error

	// Restart stops then starts the monitor.
	Restart(ctx context.Context) error

	// IsRunning reports whether the health check loop is active.
	IsRunning() bool

	// Status returns the current hysteresis-debounced health status.
	Status() Status
}

// Pool tracks a set of Monitor instances keyed by name.
type Pool interface {
	// MonitorGet returns the monitor registered under key, or nil.
	MonitorGet(key string) Monitor

	// MonitorSet registers or replaces a monitor under its own Name().
	MonitorSet(mon Monitor) error

	// MonitorList returns the names of all registered monitors.
	MonitorList() []string

	// MonitorDel removes the monitor registered under key.
	MonitorDel(key string)
}

// FuncPool returns the Pool instance used to register monitors. Components store
// this function and call it lazily, since the pool may not exist at registration time.
type FuncPool func() Pool
