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

// Package startStop provides a restartable long-running-task primitive: a
// start function that blocks until its context is cancelled, paired with a
// stop function that performs cleanup. It backs every long-lived task in
// the pipeline - source drivers, storage sink workers, the coordinator -
// each of which owns exactly one StartStop instance.
package startStop

import (
	"context"
	"sync"
	"time"

	errpool "github.com/nabbar/statcollect/errors/pool"
)

// StartFunc is run in its own goroutine on Start. It is expected to block
// until ctx is cancelled and return promptly afterwards.
type StartFunc func(ctx context.Context) error

// StopFunc performs cleanup once Start's context has been cancelled. It
// receives a context independent of the start context so cleanup is not
// aborted by the same cancellation that woke the start function.
type StopFunc func(ctx context.Context) error

// StartStop is a restartable start/stop pair with uptime and error
// tracking. It is safe for concurrent use.
type StartStop interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration

	ErrorsLast() error
	ErrorsList() []error
}

// New builds a StartStop around fnStart/fnStop. Either may be nil, in
// which case it is treated as a no-op.
func New(fnStart StartFunc, fnStop StopFunc) StartStop {
	if fnStart == nil {
		fnStart = func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}
	}
	if fnStop == nil {
		fnStop = func(ctx context.Context) error { return nil }
	}

	return &runner{
		start: fnStart,
		stop:  fnStop,
		ep:    errpool.New(),
	}
}

type runner struct {
	mu sync.Mutex

	start StartFunc
	stop  StopFunc

	running bool
	started time.Time

	cnl context.CancelFunc
	wg  sync.WaitGroup

	ep errpool.Pool
}

func (r *runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *runner) Uptime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || r.started.IsZero() {
		return 0
	}
	return time.Since(r.started)
}

func (r *runner) ErrorsLast() error {
	return r.ep.Last()
}

func (r *runner) ErrorsList() []error {
	return r.ep.Slice()
}

func (r *runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		if err := r.Stop(ctx); err != nil {
			return err
		}
		r.mu.Lock()
	}

	if ctx == nil {
		ctx = context.Background()
	}

	r.ep.Clear()

	cctx, cnl := context.WithCancel(ctx)
	r.cnl = cnl
	r.started = time.Now()
	r.running = true

	fn := r.start

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := fn(cctx); err != nil {
			r.ep.Add(err)
		}
	}()

	r.mu.Unlock()
	return nil
}

func (r *runner) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}

	cnl := r.cnl
	fn := r.stop
	r.running = false
	r.cnl = nil
	r.mu.Unlock()

	if cnl != nil {
		cnl()
	}

	r.wg.Wait()

	if ctx == nil {
		ctx = context.Background()
	}

	if err := fn(ctx); err != nil {
		r.ep.Add(err)
		return err
	}

	return nil
}

func (r *runner) Restart(ctx context.Context) error {
	if err := r.Stop(ctx); err != nil {
		return err
	}
	return r.Start(ctx)
}
