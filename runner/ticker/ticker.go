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

// Package ticker provides a restartable, cancellable periodic-execution
// primitive. It backs every fixed-interval fetch timer in the source
// package: one ticker per source, started and stopped by the source's own
// task, never shared across goroutines.
package ticker

import (
	"context"
	"fmt"
	"sync"
	"time"

	liberr "github.com/nabbar/statcollect/errors"
	errpool "github.com/nabbar/statcollect/errors/pool"
)

// Error codes for the ticker package.
const (
	ErrorStopTimeout liberr.CodeError = iota + liberr.MinPkgRunner
)

// defaultDuration is used whenever the caller supplies a non-positive or
// implausibly small interval.
const defaultDuration = 30 * time.Second

// minDuration is the smallest tick period accepted as-is; anything below
// it falls back to defaultDuration to avoid a tight spin loop.
const minDuration = time.Millisecond

// Func is invoked on every tick. The *time.Ticker is exposed so a function
// may reset its own period (used by the Graphite sink's re-resolution
// timer, which reads the same tick but drifts its own interval).
type Func func(ctx context.Context, tck *time.Ticker) error

// Ticker is a periodic task: Start arms the timer, Stop disarms it. It may
// be restarted after Stop. All methods are safe for concurrent use.
type Ticker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration

	ErrorsLast() error
	ErrorsList() []error
}

// New creates a Ticker that invokes fn every d. A nil fn is accepted and
// treated as a no-op tick (useful for parser/filter smoke tests that only
// exercise scheduling).
func New(d time.Duration, fn Func) Ticker {
	if d < minDuration {
		d = defaultDuration
	}

	if fn == nil {
		fn = func(context.Context, *time.Ticker) error { return nil }
	}

	return &tick{
		d:  d,
		fn: fn,
		ep: errpool.New(),
	}
}

type tick struct {
	mu sync.Mutex

	d  time.Duration
	fn Func

	running bool
	started time.Time

	cnl context.CancelFunc
	wg  sync.WaitGroup

	ep errpool.Pool
}

func (t *tick) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *tick) Uptime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.started.IsZero() {
		return 0
	}
	return time.Since(t.started)
}

func (t *tick) ErrorsLast() error {
	return t.ep.Last()
}

func (t *tick) ErrorsList() []error {
	return t.ep.Slice()
}

// Start arms the ticker. If it is already running, the existing instance
// is stopped first so a second Start behaves like Restart.
func (t *tick) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		if err := t.Stop(ctx); err != nil {
			return err
		}
		t.mu.Lock()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	t.ep.Clear()

	cctx, cnl := context.WithCancel(ctx)
	t.cnl = cnl
	t.started = time.Now()
	t.running = true

	d := t.d
	fn := t.fn

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		tk := time.NewTicker(d)
		defer tk.Stop()

		for {
			select {
			case <-cctx.Done():
				return
			case <-tk.C:
				if err := fn(cctx, tk); err != nil {
					t.ep.Add(fmt.Errorf("ticker run: %w", err))
				}
			}
		}
	}()

	t.mu.Unlock()
	return nil
}

// Stop disarms the ticker and waits for the in-flight tick (if any) to
// return. Calling Stop on an already-stopped ticker is a no-op.
func (t *tick) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return nil
	}

	cnl := t.cnl
	t.running = false
	t.cnl = nil
	t.mu.Unlock()

	if cnl != nil {
		cnl()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrorStopTimeout.Error(ctx.Err())
	}
}

// Restart stops then starts the ticker, clearing the error pool.
func (t *tick) Restart(ctx context.Context) error {
	if err := t.Stop(ctx); err != nil {
		return err
	}
	return t.Start(ctx)
}
