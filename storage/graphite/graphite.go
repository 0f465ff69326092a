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

// Package graphite implements the Graphite line-protocol storage sink:
// a long-lived TCP client with a FIFO queue drained by a single worker.
// On flush success the head element emits a success Result and the next
// element is pulled; on any connection error the in-flight element emits
// a failure Result and queued elements are *not* re-sent - retry, if
// any, is the caller's responsibility.
package graphite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nabbar/statcollect/record"
	"github.com/nabbar/statcollect/storage"
	"github.com/nabbar/statcollect/transport/tcpconn"

	liberr "github.com/nabbar/statcollect/errors"
)

// ReresolveInterval is the cadence at which the server address is
// looked up again; re-resolution never disturbs an established
// connection, the fresh address is only used on the next reconnect.
const ReresolveInterval = 600 * time.Second

// Error codes for the graphite package.
const (
	ErrorConnect liberr.CodeError = iota + liberr.MinPkgStorage + 20
	ErrorWrite
	ErrorShutdownTimeout
)

type queued struct {
	id  string
	rec *record.Parsed
}

// Sink is a Graphite line-protocol storage sink.
type Sink struct {
	host string
	port int
	mac  tcpconn.Machine

	mu        sync.Mutex
	queue     []*queued
	cancelled map[string]bool
	results   chan storage.Result

	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	lastRes time.Time

	enqueued  atomic.Uint64
	succeeded atomic.Uint64
	failed    atomic.Uint64
}

// Counters returns a point-in-time snapshot of enqueued/succeeded/failed
// counts and the current FIFO queue depth.
func (s *Sink) Counters() storage.Counters {
	s.mu.Lock()
	depth := len(s.queue)
	s.mu.Unlock()

	return storage.Counters{
		Enqueued:   s.enqueued.Load(),
		Succeeded:  s.succeeded.Load(),
		Failed:     s.failed.Load(),
		QueueDepth: depth,
	}
}

// New builds a Graphite Sink that dials host:port through mac (already
// configured with the process-wide resolver/TLS policy). Connection
// establishment and the drain loop start on the first Store call.
func New(host string, port int, mac tcpconn.Machine) *Sink {
	s := &Sink{
		host: host, port: port, mac: mac,
		cancelled: make(map[string]bool),
		results:   make(chan storage.Result, 64),
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Results returns the channel store outcomes are delivered on.
func (s *Sink) Results() <-chan storage.Result {
	return s.results
}

// Store appends rec to the FIFO queue and wakes the drain worker.
func (s *Sink) Store(rec *record.Parsed) (string, error) {
	s.mu.Lock()
	s.queue = append(s.queue, &queued{id: rec.ID, rec: rec})
	s.mu.Unlock()
	s.enqueued.Add(1)

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return rec.ID, nil
}

// Cancel nulls the queue slot for id if it is still queued (head or
// behind it); an in-flight head element cannot be cancelled once its
// write has started.
func (s *Sink) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, q := range s.queue {
		if q != nil && q.id == id {
			s.queue[i] = nil
			return
		}
	}
	s.cancelled[id] = true
}

// Shutdown signals the drain worker to stop and waits for it to exit.
func (s *Sink) Shutdown(ctx context.Context) error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ErrorShutdownTimeout.Error(ctx.Err())
	}
}

func (s *Sink) run() {
	defer close(s.done)

	lastReresolve := time.Time{}

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		s.mu.Lock()
		empty := len(s.queue) == 0
		s.mu.Unlock()

		if empty {
			select {
			case <-s.stop:
				return
			case <-s.wake:
				continue
			case <-time.After(time.Second):
				continue
			}
		}

		if s.mac.State() != tcpconn.Connected {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := s.mac.Connect(ctx, s.host, s.port)
			cancel()
			if err != nil {
				s.failHead(ErrorConnect.Error(err))
				continue
			}
			lastReresolve = time.Now()
		} else if time.Since(lastReresolve) > ReresolveInterval {
			// Re-resolution happens on the shared resolver's own cache TTL:
			// the next natural reconnect (after a write or connect error)
			// calls Connect again and picks up a fresh address. An
			// established connection is never torn down just to refresh
			// DNS; only the marker advances here.
			lastReresolve = time.Now()
		}

		s.drainOne()
	}
}

func (s *Sink) drainOne() {
	s.mu.Lock()
	var head *queued
	for len(s.queue) > 0 {
		head = s.queue[0]
		s.queue = s.queue[1:]
		if head != nil {
			break
		}
	}
	s.mu.Unlock()

	if head == nil {
		return
	}

	line := Marshal(head.rec)
	errCh := s.mac.Write([]byte(line))
	if err := <-errCh; err != nil {
		s.emit(storage.Result{ID: head.id, Reason: ErrorWrite.Error(err)})
		_ = s.mac.Disconnect()
		return
	}

	s.emit(storage.Result{ID: head.id, OK: true})
}

func (s *Sink) failHead(reason error) {
	s.mu.Lock()
	var head *queued
	if len(s.queue) > 0 {
		head = s.queue[0]
		s.queue = s.queue[1:]
	}
	s.mu.Unlock()

	if head != nil {
		s.emit(storage.Result{ID: head.id, Reason: reason})
	}

	time.Sleep(50 * time.Millisecond)
}

func (s *Sink) emit(r storage.Result) {
	if r.OK {
		s.succeeded.Add(1)
	} else {
		s.failed.Add(1)
	}

	select {
	case s.results <- r:
	case <-s.stop:
	}
}

// Marshal renders rec in Graphite's plain-text line protocol: one line
// per content key, "host_key value unixSeconds\n", host's dots replaced
// by underscores.
func Marshal(rec *record.Parsed) string {
	host := strings.ReplaceAll(rec.Host, ".", "_")
	ts := rec.FetchEnd.Unix()

	var b strings.Builder
	for _, k := range rec.Content.Keys() {
		v, _ := rec.Content.Get(k)
		fmt.Fprintf(&b, "%s.%s %s %d\n", host, k, strconv.FormatFloat(v, 'g', -1, 64), ts)
	}
	return b.String()
}
