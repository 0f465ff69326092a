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
	sdkmpb "github.com/vbauerster/mpb/v8"
	sdkdcr "github.com/vbauerster/mpb/v8/decor"
)

// bar binds one mpb bar to its owning semaphore. A nil b (semaphore
// created without progress) degrades every rendering operation to a
// no-op while worker acquisition keeps delegating to the semaphore.
type bar struct {
	b *sdkmpb.Bar
	t int64
	s Sem
}

// barOptions collects the options shared by every bar flavor: queue the
// bar after its parent when one is given, drop it from the rendering on
// completion when asked to.
func barOptions(drop bool, parent SemBar) []sdkmpb.BarOption {
	var opt []sdkmpb.BarOption

	if p, k := parent.(*bar); k && p != nil && p.b != nil {
		opt = append(opt, sdkmpb.BarQueueAfter(p.b))
	}

	if drop {
		opt = append(opt, sdkmpb.BarRemoveOnComplete())
	}

	return opt
}

func (o *sem) BarBytes(job, msg string, total int64, drop bool, parent SemBar) SemBar {
	if o.m == nil {
		return &bar{s: o}
	}

	opt := append(barOptions(drop, parent),
		sdkmpb.PrependDecorators(
			sdkdcr.Name(job, sdkdcr.WCSyncSpace),
			sdkdcr.Name(msg, sdkdcr.WCSyncSpace),
			sdkdcr.CountersKibiByte("% .2f / % .2f", sdkdcr.WCSyncSpace),
		),
		sdkmpb.AppendDecorators(
			sdkdcr.Percentage(sdkdcr.WCSyncSpace),
		),
	)

	return &bar{
		b: o.m.New(total, sdkmpb.BarStyle(), opt...),
		t: total,
		s: o,
	}
}

func (o *sem) BarTime(job, msg string, total int64, drop bool, parent SemBar) SemBar {
	if o.m == nil {
		return &bar{s: o}
	}

	opt := append(barOptions(drop, parent),
		sdkmpb.PrependDecorators(
			sdkdcr.Name(job, sdkdcr.WCSyncSpace),
			sdkdcr.Name(msg, sdkdcr.WCSyncSpace),
			sdkdcr.AverageETA(sdkdcr.ET_STYLE_GO, sdkdcr.WCSyncSpace),
		),
		sdkmpb.AppendDecorators(
			sdkdcr.Percentage(sdkdcr.WCSyncSpace),
		),
	)

	return &bar{
		b: o.m.New(total, sdkmpb.BarStyle(), opt...),
		t: total,
		s: o,
	}
}

func (o *sem) BarNumber(job, msg string, total int64, drop bool, parent SemBar) SemBar {
	if o.m == nil {
		return &bar{s: o}
	}

	opt := append(barOptions(drop, parent),
		sdkmpb.PrependDecorators(
			sdkdcr.Name(job, sdkdcr.WCSyncSpace),
			sdkdcr.Name(msg, sdkdcr.WCSyncSpace),
			sdkdcr.CountersNoUnit("%d / %d", sdkdcr.WCSyncSpace),
		),
		sdkmpb.AppendDecorators(
			sdkdcr.Percentage(sdkdcr.WCSyncSpace),
		),
	)

	return &bar{
		b: o.m.New(total, sdkmpb.BarStyle(), opt...),
		t: total,
		s: o,
	}
}

func (o *sem) BarOpts(total int64, drop bool, opts ...sdkmpb.BarOption) SemBar {
	if o.m == nil {
		return &bar{s: o}
	}

	opt := append(barOptions(drop, nil), opts...)

	return &bar{
		b: o.m.New(total, sdkmpb.BarStyle(), opt...),
		t: total,
		s: o,
	}
}

func (o *bar) NewWorker() error {
	return o.s.NewWorker()
}

func (o *bar) NewWorkerTry() bool {
	return o.s.NewWorkerTry()
}

// DeferWorker advances the bar before releasing the slot, so a pool that
// acquires one worker per item needs no separate progress accounting.
func (o *bar) DeferWorker() {
	o.Inc(1)
	o.s.DeferWorker()
}

func (o *bar) WaitAll() error {
	return o.s.WaitAll()
}

func (o *bar) Current() int64 {
	if o.b == nil {
		return 0
	}

	return o.b.Current()
}

func (o *bar) Total() int64 {
	if o.b == nil {
		return 0
	}

	return o.t
}

func (o *bar) Inc(n int) {
	if o.b != nil {
		o.b.IncrBy(n)
	}
}

func (o *bar) Inc64(n int64) {
	if o.b != nil {
		o.b.IncrInt64(n)
	}
}

func (o *bar) Complete() {
	if o.b != nil {
		o.b.SetTotal(o.t, true)
	}
}

func (o *bar) Completed() bool {
	if o.b == nil {
		return true
	}

	return o.b.Completed()
}
