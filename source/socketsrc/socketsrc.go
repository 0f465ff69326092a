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

// Package socketsrc implements the line-oriented request/response
// source driver: write a command, then accumulate response
// lines over transport/tcpconn until a configured end-of-reply sentinel
// line is seen (the Memcached "stats" dialog's "END\r\n" terminator is
// the motivating case).
package socketsrc

import (
	"bytes"
	"context"

	"github.com/nabbar/statcollect/transport/tcpconn"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the socketsrc package.
const (
	ErrorConnect liberr.CodeError = iota + liberr.MinPkgSource + 40
	ErrorWrite
	ErrorRead
)

// Config describes one socket-dialog source.
type Config struct {
	Host string
	Port int

	// Command is written verbatim on every fetch, e.g. "stats\r\n".
	Command string

	// Terminator is the exact line (including its line ending) that
	// closes the reply. Everything up to and including it is returned.
	Terminator string

	TCP tcpconn.Config
}

// Source is one socket-dialog fetcher. A fresh connection is made on
// every Fetch since most line protocols of this shape (Memcached, Redis
// INFO) tolerate short-lived connections and the driver has no use for a
// long-lived socket the way the Graphite sink does.
type Source struct {
	cfg Config
	url string
	mac tcpconn.Machine
}

// New builds a Source.
func New(cfg Config, url string) (*Source, error) {
	if cfg.Terminator == "" {
		return nil, ErrorRead.Error(nil)
	}
	return &Source{cfg: cfg, url: url, mac: tcpconn.New(cfg.TCP)}, nil
}

func (s *Source) Driver() string { return "socket" }
func (s *Source) URL() string    { return s.url }

// Fetch dials, writes Command, and reads lines until Terminator is seen.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	if err := s.mac.Connect(ctx, s.cfg.Host, s.cfg.Port); err != nil {
		return nil, ErrorConnect.Error(err)
	}
	defer s.mac.Disconnect()

	errCh := s.mac.Write([]byte(s.cfg.Command))
	if err := <-errCh; err != nil {
		return nil, ErrorWrite.Error(err)
	}

	var out bytes.Buffer
	rd := s.mac.Reader()
	term := []byte(s.cfg.Terminator)

	for {
		line, err := rd.ReadBytes(term[len(term)-1])
		if err != nil {
			return nil, ErrorRead.Error(err)
		}
		out.Write(line)
		if bytes.HasSuffix(out.Bytes(), term) {
			return out.Bytes(), nil
		}
	}
}
