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

// Package dnsresolve implements the process-wide async DNS resolver and its
// host cache. A single Resolver instance is shared by
// every TCP machine in the process; the cache it owns is read-mostly and
// writes serialize through the resolver's own queue, never a global lock
// held by callers.
package dnsresolve

import (
	"time"

	libctx "github.com/nabbar/statcollect/context"
)

// DefaultTTL is the host cache entry lifetime when none is configured.
const DefaultTTL = 3600 * time.Second

// entry is one host cache slot. A negative cache entry (Err != nil, empty
// Addrs) still consumes its TTL like a successful one.
type entry struct {
	addrs   []string
	err     error
	expires time.Time
}

func (e *entry) expired(now time.Time) bool {
	return now.After(e.expires)
}

// cache is the host-resolution cache keyed by hostname. It is backed by
// libctx.Config[string], the same generic atomic map this module uses
// for its other process-wide registries.
type cache struct {
	ttl time.Duration
	cfg libctx.Config[string]
}

func newCache(ttl time.Duration) *cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &cache{
		ttl: ttl,
		cfg: libctx.NewConfig[string](nil),
	}
}

func (c *cache) get(host string) (*entry, bool) {
	v, ok := c.cfg.Load(host)
	if !ok {
		return nil, false
	}
	e, ok := v.(*entry)
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		c.cfg.Delete(host)
		return nil, false
	}
	return e, true
}

func (c *cache) put(host string, addrs []string, err error) {
	c.cfg.Store(host, &entry{
		addrs:   addrs,
		err:     err,
		expires: time.Now().Add(c.ttl),
	})
}

func (c *cache) purge(host string) {
	c.cfg.Delete(host)
}
