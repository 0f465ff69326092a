/*
 * MIT License
 *
 * Copyright (c) 2019 Nicolas JUHEL
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

// Package semaphore provides a weighted concurrency limiter with an
// optional terminal progress rendering. One Semaphore bounds how many
// worker goroutines run at once; bars attached to it report per-job
// progress through a shared mpb container.
package semaphore

import (
	"context"
	"runtime"

	sdkmpb "github.com/vbauerster/mpb/v8"
	sdksem "golang.org/x/sync/semaphore"
)

// Sem is the worker-slot part of the contract: acquire a slot before
// doing work, release it after, wait for every slot to come back.
type Sem interface {
	// NewWorker blocks until a worker slot is free or the semaphore's
	// context is done.
	NewWorker() error

	// NewWorkerTry acquires a slot without blocking; false means the
	// semaphore is full.
	NewWorkerTry() bool

	// DeferWorker releases one acquired slot.
	DeferWorker()

	// WaitAll blocks until every slot has been released.
	WaitAll() error
}

// SemBar is one progress bar bound to a Semaphore. Worker acquisition
// delegates to the owning semaphore; DeferWorker additionally advances
// the bar by one so a bar-driven worker pool needs no extra bookkeeping.
// On a semaphore created without progress all bar operations are no-ops
// and Total reports zero.
type SemBar interface {
	Sem

	// Current reports the bar's progression.
	Current() int64

	// Total reports the bar's configured total, zero when the owning
	// semaphore renders no progress.
	Total() int64

	// Inc advances the bar by n.
	Inc(n int)

	// Inc64 advances the bar by n.
	Inc64(n int64)

	// Complete forces the bar to its total and marks it done.
	Complete()

	// Completed reports whether the bar reached its total. A bar on a
	// progress-less semaphore is always complete.
	Completed() bool
}

// Progress builds bars bound to the semaphore. The parent argument, when
// non-nil, queues the new bar to render after the parent completes. The
// drop flag removes the bar from the rendering once complete.
type Progress interface {
	// BarBytes creates a bar whose counters render as byte sizes.
	BarBytes(job, msg string, total int64, drop bool, parent SemBar) SemBar

	// BarTime creates a bar decorated with an averaged ETA.
	BarTime(job, msg string, total int64, drop bool, parent SemBar) SemBar

	// BarNumber creates a bar whose counters render as plain numbers.
	BarNumber(job, msg string, total int64, drop bool, parent SemBar) SemBar

	// BarOpts creates an undecorated bar with the given total.
	BarOpts(total int64, drop bool, opts ...sdkmpb.BarOption) SemBar
}

// Semaphore is a weighted concurrency limiter carrying its own context.
// The context methods expose the internal context so a Semaphore can be
// passed wherever a context.Context is expected; DeferMain cancels it.
type Semaphore interface {
	context.Context
	Sem
	Progress

	// Weighted reports the configured number of simultaneous workers,
	// negative for unlimited.
	Weighted() int64

	// Clone returns an independent semaphore of the same weight sharing
	// this one's progress container, so cloned worker pools render into
	// the same terminal area.
	Clone() Semaphore

	// New returns a fresh, fully independent semaphore of the same
	// weight and progress mode.
	New() Semaphore

	// DeferMain releases the semaphore: cancels its context and stops
	// any progress rendering. Call it exactly once, usually deferred.
	DeferMain()
}

// MaxSimultaneous returns the process's natural concurrency bound.
func MaxSimultaneous() int {
	return runtime.GOMAXPROCS(0)
}

// SetSimultaneous validates a requested worker count: non-positive or
// over-bound requests fall back to MaxSimultaneous.
func SetSimultaneous(n int64) int64 {
	if m := int64(MaxSimultaneous()); n < 1 || n > m {
		return m
	}

	return n
}

// New creates a Semaphore allowing nbrSimultaneous concurrent workers
// (non-positive for unlimited), with terminal progress rendering when
// progress is true. A nil ctx falls back to context.Background.
func New(ctx context.Context, nbrSimultaneous int64, progress bool) Semaphore {
	if ctx == nil {
		ctx = context.Background()
	}

	x, c := context.WithCancel(ctx)

	o := &sem{
		x: x,
		c: c,
		w: nbrSimultaneous,
	}

	if nbrSimultaneous > 0 {
		o.s = sdksem.NewWeighted(nbrSimultaneous)
	}

	if progress {
		o.m = sdkmpb.NewWithContext(x, sdkmpb.WithWidth(64))
	}

	return o
}

// NewSemaphoreWithContext creates a progress-less Semaphore, normalizing
// the requested worker count through SetSimultaneous.
//
// Deprecated: use New.
func NewSemaphoreWithContext(ctx context.Context, nbrSimultaneous int64) Semaphore {
	return New(ctx, SetSimultaneous(nbrSimultaneous), false)
}
