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

// Package tlswrap wraps a connected net.Conn into an encrypted stream,
// opaque to the rest of the TCP state machine. It is a thin adapter over
// the certificates package so every source that requests TLS
// (HTTP, Memcached, ...) shares one construction path.
package tlswrap

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/nabbar/statcollect/certificates"
)

// Config is the subset of source-driver configuration needed to build a
// *tls.Config for one connection attempt.
type Config struct {
	TLS        *certificates.Config
	ServerName string
	SkipVerify bool
}

// Wrap performs the TLS client handshake over conn and returns the
// encrypted net.Conn. The handshake is driven to completion (or ctx
// cancellation) before returning, matching the "Connected -> encrypted
// stream" transition: from the caller's point of view it is still just a
// net.Conn.
func Wrap(ctx context.Context, conn net.Conn, cfg Config) (net.Conn, error) {
	var tcfg *tls.Config

	if cfg.TLS != nil {
		tcfg = cfg.TLS.New().TLS(cfg.ServerName)
	} else {
		tcfg = &tls.Config{ServerName: cfg.ServerName}
	}

	if cfg.SkipVerify {
		tcfg = tcfg.Clone()
		tcfg.InsecureSkipVerify = true
	}

	tc := tls.Client(conn, tcfg)

	hctx := ctx
	if hctx == nil {
		hctx = context.Background()
	}

	if err := tc.HandshakeContext(hctx); err != nil {
		_ = tc.Close()
		return nil, err
	}

	return tc, nil
}
