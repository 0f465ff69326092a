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

package semaphore

import (
	"context"
	"time"

	sdkmpb "github.com/vbauerster/mpb/v8"
	sdksem "golang.org/x/sync/semaphore"
)

// sem is the concrete Semaphore. A nil s means unlimited workers, a nil
// m means no progress rendering. The context pair x/c is owned by this
// instance: clones derive their own pair from x.
type sem struct {
	x context.Context
	c context.CancelFunc
	w int64
	s *sdksem.Weighted
	m *sdkmpb.Progress
}

func (o *sem) Deadline() (deadline time.Time, ok bool) {
	return o.x.Deadline()
}

func (o *sem) Done() <-chan struct{} {
	return o.x.Done()
}

func (o *sem) Err() error {
	return o.x.Err()
}

func (o *sem) Value(key any) any {
	return o.x.Value(key)
}

func (o *sem) NewWorker() error {
	if o.s == nil {
		return nil
	}

	return o.s.Acquire(o.x, 1)
}

func (o *sem) NewWorkerTry() bool {
	if o.s == nil {
		return true
	}

	return o.s.TryAcquire(1)
}

func (o *sem) DeferWorker() {
	if o.s != nil {
		o.s.Release(1)
	}
}

func (o *sem) WaitAll() error {
	if o.s == nil {
		return nil
	}

	if e := o.s.Acquire(o.x, o.w); e != nil {
		return e
	}

	o.s.Release(o.w)
	return nil
}

func (o *sem) Weighted() int64 {
	return o.w
}

// GetMPB exposes the shared progress container, nil when the semaphore
// renders no progress. Returned as interface{} so callers need not
// depend on the mpb module to probe for it.
func (o *sem) GetMPB() interface{} {
	if o.m == nil {
		return nil
	}

	return o.m
}

func (o *sem) Clone() Semaphore {
	x, c := context.WithCancel(o.x)

	n := &sem{
		x: x,
		c: c,
		w: o.w,
		m: o.m,
	}

	if o.w > 0 {
		n.s = sdksem.NewWeighted(o.w)
	}

	return n
}

func (o *sem) New() Semaphore {
	return New(o.x, o.w, o.m != nil)
}

func (o *sem) DeferMain() {
	o.c()
}
