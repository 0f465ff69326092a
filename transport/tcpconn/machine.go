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

package tcpconn

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/nabbar/statcollect/transport/dnsresolve"
	"github.com/nabbar/statcollect/transport/tlswrap"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the tcpconn package.
const (
	ErrorResolve liberr.CodeError = iota + liberr.MinPkgTransport + 10
	ErrorConnectExhausted
	ErrorNotConnected
	ErrorClosed
)

// Config configures one Machine. Resolver is shared process-wide; every
// other field is per-connection.
type Config struct {
	Resolver dnsresolve.Resolver
	Failover bool // try the next resolved address on connect failure
	TLS      *tlswrap.Config

	DialTimeout time.Duration
	DNSTimeout  time.Duration
}

// Machine is a single TCP connection driven through the states defined
// in state.go. It is not safe for concurrent use by more than one
// goroutine; the owning source task is the sole caller.
type Machine interface {
	// Connect drives Idle -> ... -> Connected (or Error). If host is a
	// literal address, Resolving is skipped.
	Connect(ctx context.Context, host string, port int) error

	// Disconnect transitions to Closing and releases the socket. Safe to
	// call from any state, including Error.
	Disconnect() error

	State() State

	// Reader returns the line-buffered reader installed by default. A
	// driver that needs raw byte access after parsing headers (HTTP body
	// with Content-Length) should read directly from the net.Conn
	// returned by Conn() instead.
	Reader() *bufio.Reader

	// Conn exposes the underlying (possibly TLS-wrapped) connection for
	// byte-stream reads and for deadline management.
	Conn() net.Conn

	// Write queues data for an asynchronous write and returns a channel
	// that receives the flush result exactly once, allowing the caller
	// (HTTP/line-protocol writer) to wait for "write-flushed" without
	// blocking other suspension points.
	Write(data []byte) <-chan error
}

type machine struct {
	mu sync.Mutex

	cfg Config
	st  State

	conn net.Conn
	rd   *bufio.Reader

	cancelConnect context.CancelFunc
}

// New builds a Machine in the Idle state.
func New(cfg Config) Machine {
	return &machine{cfg: cfg, st: Idle}
}

func (m *machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

func (m *machine) Reader() *bufio.Reader {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rd
}

func (m *machine) Conn() net.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

func (m *machine) setState(s State) {
	m.mu.Lock()
	m.st = s
	m.mu.Unlock()
}

// Connect implements the Idle/Resolving/Connecting/Connected transitions.
// Cancelling ctx aborts the current attempt and purges the remaining
// address candidates.
func (m *machine) Connect(ctx context.Context, host string, port int) error {
	cctx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	m.cancelConnect = cancel
	m.mu.Unlock()
	defer cancel()

	addrs, err := m.resolve(cctx, host)
	if err != nil {
		m.setState(Error)
		return err
	}

	m.setState(Connecting)

	var lastErr error
	for k, addr := range addrs {
		select {
		case <-cctx.Done():
			m.setState(Error)
			return cctx.Err()
		default:
		}

		conn, dialErr := m.dial(cctx, addr, port)
		if dialErr == nil {
			if m.cfg.TLS != nil {
				tc, twErr := tlswrap.Wrap(cctx, conn, *m.cfg.TLS)
				if twErr != nil {
					_ = conn.Close()
					lastErr = twErr
					if !m.cfg.Failover || k+1 >= len(addrs) {
						m.setState(Error)
						return lastErr
					}
					continue
				}
				conn = tc
			}

			m.mu.Lock()
			m.conn = conn
			m.rd = bufio.NewReader(conn)
			m.st = Connected
			m.mu.Unlock()
			return nil
		}

		lastErr = dialErr
		if !m.cfg.Failover || k+1 >= len(addrs) {
			break
		}
	}

	m.setState(Error)
	if lastErr == nil {
		lastErr = ErrorConnectExhausted.Error(nil)
	}
	return ErrorConnectExhausted.Error(lastErr)
}

func (m *machine) resolve(ctx context.Context, host string) ([]string, error) {
	if _, err := netip.ParseAddr(host); err == nil {
		return []string{host}, nil
	}

	m.setState(Resolving)

	if m.cfg.Resolver == nil {
		return nil, ErrorResolve.Error(fmt.Errorf("no resolver configured"))
	}

	timeout := m.cfg.DNSTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	res := <-m.cfg.Resolver.Resolve(ctx, host, timeout)
	if !res.Ok || len(res.Addrs) == 0 {
		return nil, ErrorResolve.Error(res.Err)
	}
	return res.Addrs, nil
}

func (m *machine) dial(ctx context.Context, addr string, port int) (net.Conn, error) {
	d := net.Dialer{Timeout: m.cfg.DialTimeout}
	target := net.JoinHostPort(addr, fmt.Sprintf("%d", port))
	return d.DialContext(ctx, "tcp", target)
}

// Disconnect transitions to Closing, releases resources, and purges the
// in-flight connect attempt if one was underway.
func (m *machine) Disconnect() error {
	m.mu.Lock()
	if m.cancelConnect != nil {
		m.cancelConnect()
	}
	conn := m.conn
	m.conn = nil
	m.rd = nil
	m.st = Closing
	m.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Write performs an asynchronous write: the caller is handed a channel
// immediately and the actual socket write happens on its own goroutine,
// signalling "write-flushed" by sending the outcome (nil on success) once
// the channel is written to.
func (m *machine) Write(data []byte) <-chan error {
	out := make(chan error, 1)

	m.mu.Lock()
	conn := m.conn
	state := m.st
	m.mu.Unlock()

	if state != Connected || conn == nil {
		out <- ErrorNotConnected.Error(nil)
		close(out)
		return out
	}

	go func() {
		defer close(out)
		_, err := conn.Write(data)
		out <- err
	}()

	return out
}
