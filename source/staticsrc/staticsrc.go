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

// Package staticsrc implements the constant-body Static source plus two
// variants built on the same shape: Dummy (a
// fixed body with an injectable random delay, used to drive pipeline
// integration tests without a real network dependency) and the optional
// "hostselfstats" source, which renders live host CPU/memory figures
// through gopsutil in the same textsimple-compatible line format so it
// can plug into the ordinary parser stage unmodified.
package staticsrc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Static returns the same configured payload on every Fetch, byte for
// byte, whatever the daemon around it does - Fetch never even looks at
// its ctx.
type Static struct {
	url  string
	data []byte
}

// NewStatic builds a Static source.
func NewStatic(url string, data []byte) *Static {
	return &Static{url: url, data: data}
}

func (s *Static) Driver() string                             { return "static" }
func (s *Static) URL() string                                { return s.url }
func (s *Static) Fetch(_ context.Context) ([]byte, error)     { return s.data, nil }

// Dummy is Static plus a bounded random delay, for exercising fetch
// scheduling/timeout behavior in tests without a real external dependency.
type Dummy struct {
	url     string
	data    []byte
	maxWait time.Duration
}

// NewDummy builds a Dummy source whose Fetch sleeps a random duration in
// [0, maxWait) before returning data.
func NewDummy(url string, data []byte, maxWait time.Duration) *Dummy {
	return &Dummy{url: url, data: data, maxWait: maxWait}
}

func (d *Dummy) Driver() string { return "dummy" }
func (d *Dummy) URL() string    { return d.url }

func (d *Dummy) Fetch(ctx context.Context) ([]byte, error) {
	if d.maxWait > 0 {
		delay := time.Duration(rand.Int63n(int64(d.maxWait)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return d.data, nil
}

// HostSelf samples local CPU/memory figures via gopsutil on every fetch,
// rendered as "key value" lines compatible with the textsimple parser.
type HostSelf struct {
	url            string
	cpuSampleWindow time.Duration
}

// NewHostSelf builds a HostSelf source. cpuSampleWindow is the blocking
// sample duration passed to cpu.Percent; the source's fetch timeout must
// exceed it for this source to complete in time.
func NewHostSelf(url string, cpuSampleWindow time.Duration) *HostSelf {
	if cpuSampleWindow <= 0 {
		cpuSampleWindow = 200 * time.Millisecond
	}
	return &HostSelf{url: url, cpuSampleWindow: cpuSampleWindow}
}

func (h *HostSelf) Driver() string { return "hostselfstats" }
func (h *HostSelf) URL() string    { return h.url }

func (h *HostSelf) Fetch(ctx context.Context) ([]byte, error) {
	var out []byte

	if pct, err := cpu.PercentWithContext(ctx, h.cpuSampleWindow, false); err == nil && len(pct) > 0 {
		out = append(out, []byte(fmt.Sprintf("cpu.used_percent %f\n", pct[0]))...)
		out = append(out, []byte(fmt.Sprintf("cpu.idle_percent %f\n", 100.0-pct[0]))...)
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		out = append(out, []byte(fmt.Sprintf("mem.total_mb %f\n", float64(vm.Total)/1024/1024))...)
		out = append(out, []byte(fmt.Sprintf("mem.used_mb %f\n", float64(vm.Used)/1024/1024))...)
		out = append(out, []byte(fmt.Sprintf("mem.free_mb %f\n", float64(vm.Available)/1024/1024))...)
	}

	return out, nil
}
