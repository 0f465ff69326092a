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

package daemon

import (
	"fmt"
	"net/http"

	liberr "github.com/nabbar/statcollect/errors"
	"golang.org/x/net/http2"
)

// ListenAddress turns the "--listen-addr=<addr|*>" convention
// into a net/http-ready "host:port" address; "*" (the default) means
// "all interfaces", i.e. an empty host.
func ListenAddress(addr string, port int) (string, liberr.Error) {
	if port <= 0 || port > 65535 {
		return "", ErrorListenAddr.Error(fmt.Errorf("invalid port %d", port))
	}
	if addr == "" || addr == "*" {
		addr = ""
	}
	return fmt.Sprintf("%s:%d", addr, port), nil
}

// ServeTelemetry starts an http.Server mounting handler at "/" and
// returns it already listening in the background; the caller is
// responsible for calling Shutdown/Close during its own graceful
// shutdown sequence. The server is configured for cleartext HTTP/2
// (h2c) via golang.org/x/net/http2, so a scraper that prefers a
// multiplexed connection isn't forced back to HTTP/1.1.
func ServeTelemetry(listenAddr string, handler http.Handler, errs chan<- error) *http.Server {
	srv := &http.Server{
		Addr:    listenAddr,
		Handler: handler,
	}

	if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
		errs <- err
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	return srv
}
