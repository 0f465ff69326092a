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

package dnsresolve

import (
	"context"
	"math/rand"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/miekg/dns"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the dnsresolve package.
const (
	ErrorResolveTimeout liberr.CodeError = iota + liberr.MinPkgTransport
	ErrorResolveEmpty
	ErrorResolveQuery
)

// Result is delivered on the channel returned by Resolver.Resolve. Ok is
// false when the lookup failed or produced no usable address, matching the
// spec's "(ok, [addrs])" tuple.
type Result struct {
	Ok    bool
	Addrs []string
	Err   error
}

// Options configures ordering/ hints applied after a successful lookup.
type Options struct {
	// PreferIPv6 puts AAAA results ahead of A results when the local stack
	// has IPv6 connectivity.
	PreferIPv6 bool
	// Shuffle randomizes the final address order to spread load across a
	// source's pool of siblings (applied after the v4/v6 ordering policy).
	Shuffle bool
	// Server, when set, is a "host:port" DNS server dialed directly via
	// miekg/dns instead of the system resolver. Empty uses the OS stub
	// resolver (net.Resolver), which is the common case for a collector
	// running inside a container with /etc/resolv.conf already configured.
	Server string
}

// Resolver is the process-wide async DNS service: a single queue,
// (host, timeout) in, (ok, addrs) out, backed by a shared host cache.
// There is one Resolver per process; every TCP machine
// holds a reference to it rather than constructing its own.
type Resolver interface {
	// Resolve queues a lookup and returns a channel that receives exactly
	// one Result. The lookup runs on a worker goroutine; Resolve itself
	// never blocks.
	Resolve(ctx context.Context, host string, timeout time.Duration) <-chan Result

	// Purge removes a host's cache entry, forcing the next Resolve to hit
	// the network again.
	Purge(host string)
}

type resolver struct {
	opt   Options
	cache *cache

	mu  sync.Mutex
	sem chan struct{} // bounds concurrent in-flight lookups
}

// New builds a Resolver with the given host-cache TTL (0 = DefaultTTL) and
// ordering options. concurrency bounds the number of simultaneous in-flight
// lookups (0 = unbounded); thousands of sources sharing one Resolver is the
// expected steady-state load, so a modest bound keeps a noisy DNS server
// from spawning unbounded goroutines.
func New(ttl time.Duration, concurrency int, opt Options) Resolver {
	var sem chan struct{}
	if concurrency > 0 {
		sem = make(chan struct{}, concurrency)
	}
	return &resolver{
		opt:   opt,
		cache: newCache(ttl),
		sem:   sem,
	}
}

func (r *resolver) Purge(host string) {
	r.cache.purge(host)
}

func (r *resolver) Resolve(ctx context.Context, host string, timeout time.Duration) <-chan Result {
	out := make(chan Result, 1)

	if ip, err := netip.ParseAddr(host); err == nil {
		out <- Result{Ok: true, Addrs: []string{ip.String()}}
		close(out)
		return out
	}

	if e, ok := r.cache.get(host); ok {
		out <- entryResult(e)
		close(out)
		return out
	}

	go r.lookup(ctx, host, timeout, out)
	return out
}

func entryResult(e *entry) Result {
	if e.err != nil || len(e.addrs) == 0 {
		return Result{Ok: false, Err: e.err}
	}
	return Result{Ok: true, Addrs: append([]string(nil), e.addrs...)}
}

func (r *resolver) lookup(ctx context.Context, host string, timeout time.Duration, out chan<- Result) {
	defer close(out)

	if r.sem != nil {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-ctx.Done():
			out <- Result{Ok: false, Err: ctx.Err()}
			return
		}
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v4, v6, err := r.exchange(lctx, host)
	if err != nil {
		r.cache.put(host, nil, err)
		out <- Result{Ok: false, Err: err}
		return
	}

	addrs := order(v4, v6, r.opt)
	if len(addrs) == 0 {
		err = ErrorResolveEmpty.Error(nil)
		r.cache.put(host, nil, err)
		out <- Result{Ok: false, Err: err}
		return
	}

	r.cache.put(host, addrs, nil)
	out <- Result{Ok: true, Addrs: addrs}
}

// exchange performs both an A and an AAAA lookup. When opt.Server is set it
// speaks DNS directly via miekg/dns over UDP; otherwise it defers to the
// system resolver, which covers the overwhelming majority of deployments
// (containerized collector reading /etc/resolv.conf).
func (r *resolver) exchange(ctx context.Context, host string) (v4 []string, v6 []string, err error) {
	if r.opt.Server == "" {
		return r.exchangeSystem(ctx, host)
	}
	return r.exchangeMiekg(ctx, host)
}

func (r *resolver) exchangeSystem(ctx context.Context, host string) ([]string, []string, error) {
	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return nil, nil, err
	}

	var v4, v6 []string
	for _, a := range addrs {
		if a.To4() != nil {
			v4 = append(v4, a.String())
		} else {
			v6 = append(v6, a.String())
		}
	}
	return v4, v6, nil
}

func (r *resolver) exchangeMiekg(ctx context.Context, host string) ([]string, []string, error) {
	client := &dns.Client{Timeout: timeoutFromContext(ctx)}
	fqdn := dns.Fqdn(host)

	v4, err4 := r.queryMiekg(client, fqdn, dns.TypeA)
	v6, err6 := r.queryMiekg(client, fqdn, dns.TypeAAAA)

	if err4 != nil && err6 != nil {
		return nil, nil, ErrorResolveQuery.Error(err4)
	}
	return v4, v6, nil
}

func (r *resolver) queryMiekg(client *dns.Client, fqdn string, qtype uint16) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(fqdn, qtype)
	msg.RecursionDesired = true

	resp, _, err := client.Exchange(msg, r.opt.Server)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, rr := range resp.Answer {
		switch v := rr.(type) {
		case *dns.A:
			out = append(out, v.A.String())
		case *dns.AAAA:
			out = append(out, v.AAAA.String())
		}
	}
	return out, nil
}

func timeoutFromContext(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 5 * time.Second
}

// order applies the address ordering policy: IPv6 first when
// preferred and present, else resolver-natural (v4 then v6) order, then an
// optional per-source shuffle to spread load across siblings.
func order(v4, v6 []string, opt Options) []string {
	var out []string
	if opt.PreferIPv6 && len(v6) > 0 {
		out = append(out, v6...)
		out = append(out, v4...)
	} else {
		out = append(out, v4...)
		out = append(out, v6...)
	}

	if opt.Shuffle && len(out) > 1 {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}

	return out
}
