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

// Package httpsrc implements the HTTP source driver: a GET request
// hand-assembled over transport/tcpconn, with status-line
// parsing, header accumulation, chunked and Content-Length-framed bodies,
// optional proxying and TLS, Basic auth, and optional gzip/deflate
// decompression.
package httpsrc

import (
	"bufio"
	"bytes"
	"compress/flate"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/nabbar/statcollect/transport/tcpconn"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the httpsrc package.
const (
	ErrorBadURL liberr.CodeError = iota + liberr.MinPkgSource + 10
	ErrorConnect
	ErrorWrite
	ErrorStatusLine
	ErrorHeaders
	ErrorBody
	ErrorTruncated
	ErrorRedirectRefused
)

// Config describes one HTTP source.
type Config struct {
	URL      string
	Method   string // defaults to GET
	Host     string // overrides the Host header independently of the dial target
	Username string
	Password string

	// ProxyURL, when set, routes the request through an HTTP proxy: the
	// connection dials the proxy's host:port and the request line uses
	// the absolute-URI form instead of origin-form.
	ProxyURL string

	Headers map[string]string

	TCP tcpconn.Config
}

// Source is one HTTP fetcher.
type Source struct {
	cfg Config
	u   *url.URL
	mac tcpconn.Machine
}

// New parses cfg.URL eagerly so a malformed configuration fails at
// construction time rather than on the first scheduled fetch.
func New(cfg Config) (*Source, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, ErrorBadURL.Error(err)
	}
	if cfg.Method == "" {
		cfg.Method = "GET"
	}
	return &Source{cfg: cfg, u: target, mac: tcpconn.New(cfg.TCP)}, nil
}

func (s *Source) Driver() string { return "http" }
func (s *Source) URL() string    { return s.cfg.URL }

// dialTarget returns the host:port the TCP machine connects to: the
// proxy's address when ProxyURL is set, otherwise the request URL's own.
func (s *Source) dialTarget() (host string, port int, err error) {
	target := s.u
	if s.cfg.ProxyURL != "" {
		target, err = url.Parse(s.cfg.ProxyURL)
		if err != nil {
			return "", 0, ErrorBadURL.Error(err)
		}
	}
	host = target.Hostname()
	portStr := target.Port()
	if portStr == "" {
		if target.Scheme == "https" {
			port = 443
		} else {
			port = 80
		}
	} else {
		port, err = strconv.Atoi(portStr)
		if err != nil {
			return "", 0, ErrorBadURL.Error(err)
		}
	}
	return host, port, nil
}

// Fetch performs one HTTP request/response cycle and returns the
// (possibly decompressed) response body.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	host, port, err := s.dialTarget()
	if err != nil {
		return nil, err
	}

	if dl, ok := ctx.Deadline(); ok {
		_ = dl
	}

	if err = s.mac.Connect(ctx, host, port); err != nil {
		return nil, ErrorConnect.Error(err)
	}
	defer s.mac.Disconnect()

	req := s.buildRequest()
	errCh := s.mac.Write(req)
	if err = <-errCh; err != nil {
		return nil, ErrorWrite.Error(err)
	}

	return s.readResponse(s.mac.Reader())
}

// buildRequest renders the request line and headers. In proxy mode the
// request line carries the absolute URI instead of the path.
func (s *Source) buildRequest() []byte {
	var b bytes.Buffer

	requestURI := s.u.RequestURI()
	if s.cfg.ProxyURL != "" {
		requestURI = s.u.String()
	}

	fmt.Fprintf(&b, "%s %s HTTP/1.1\r\n", s.cfg.Method, requestURI)

	hostHeader := s.cfg.Host
	if hostHeader == "" {
		hostHeader = s.u.Host
	}
	fmt.Fprintf(&b, "Host: %s\r\n", hostHeader)
	fmt.Fprintf(&b, "Connection: close\r\n")
	fmt.Fprintf(&b, "Accept-Encoding: gzip, deflate\r\n")

	if s.cfg.Username != "" || s.cfg.Password != "" {
		token := base64.StdEncoding.EncodeToString([]byte(s.cfg.Username + ":" + s.cfg.Password))
		fmt.Fprintf(&b, "Authorization: Basic %s\r\n", token)
	}

	for k, v := range s.cfg.Headers {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}

	b.WriteString("\r\n")
	return b.Bytes()
}

type response struct {
	status  int
	headers map[string]string
	body    []byte
}

func (s *Source) readResponse(rd *bufio.Reader) ([]byte, error) {
	resp, err := parseStatusAndHeaders(rd)
	if err != nil {
		return nil, err
	}

	// 3xx responses are not followed; the configured URL is taken as the
	// operator's intended target, and no body is expected on a bare
	// redirect.
	if resp.status >= 300 && resp.status < 400 {
		return nil, ErrorRedirectRefused.Error(fmt.Errorf("status %d", resp.status))
	}

	body, err := readBody(rd, resp.headers)
	if err != nil {
		return nil, err
	}

	return decodeBody(body, resp.headers["content-encoding"])
}

func parseStatusAndHeaders(rd *bufio.Reader) (*response, error) {
	line, err := rd.ReadString('\n')
	if err != nil {
		return nil, ErrorStatusLine.Error(err)
	}
	fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(fields) < 2 {
		return nil, ErrorStatusLine.Error(fmt.Errorf("malformed status line %q", line))
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, ErrorStatusLine.Error(err)
	}

	headers := make(map[string]string)
	for {
		hline, err := rd.ReadString('\n')
		if err != nil {
			return nil, ErrorHeaders.Error(err)
		}
		hline = strings.TrimRight(hline, "\r\n")
		if hline == "" {
			break
		}
		idx := strings.IndexByte(hline, ':')
		if idx < 0 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(hline[:idx]))
		v := strings.TrimSpace(hline[idx+1:])
		headers[k] = v
	}

	return &response{status: code, headers: headers}, nil
}

// readBody frames the body: chunked transfer-encoding when advertised,
// else Content-Length, else read to EOF.
func readBody(rd *bufio.Reader, headers map[string]string) ([]byte, error) {
	if strings.EqualFold(headers["transfer-encoding"], "chunked") {
		return readChunked(rd)
	}
	if cl, ok := headers["content-length"]; ok {
		n, err := strconv.Atoi(cl)
		if err != nil {
			return nil, ErrorHeaders.Error(err)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(rd, buf); err != nil {
			// The peer advertised n bytes but closed (or errored) before
			// delivering them all: surface an error instead of returning
			// a truncated body silently.
			return nil, ErrorTruncated.Error(err)
		}
		return buf, nil
	}
	return io.ReadAll(rd)
}

// readChunked decodes HTTP/1.1 chunked transfer-encoding, including the
// case where the final zero-length chunk arrives in a read split across
// the underlying buffered reader's fill boundary - bufio.Reader.ReadString
// already reassembles partial lines across fills, so no extra buffering
// is required here beyond using it consistently for every chunk-size line.
func readChunked(rd *bufio.Reader) ([]byte, error) {
	var out bytes.Buffer
	for {
		sizeLine, err := rd.ReadString('\n')
		if err != nil {
			return nil, ErrorBody.Error(err)
		}
		sizeLine = strings.TrimSpace(strings.SplitN(sizeLine, ";", 2)[0])
		size, err := strconv.ParseInt(sizeLine, 16, 64)
		if err != nil {
			return nil, ErrorBody.Error(err)
		}
		if size == 0 {
			// trailing CRLF after the terminator chunk, then trailers
			// (if any) up to the final blank line.
			for {
				l, err := rd.ReadString('\n')
				if err != nil {
					return nil, ErrorBody.Error(err)
				}
				if strings.TrimRight(l, "\r\n") == "" {
					break
				}
			}
			return out.Bytes(), nil
		}

		buf := make([]byte, size)
		if _, err := io.ReadFull(rd, buf); err != nil {
			return nil, ErrorBody.Error(err)
		}
		out.Write(buf)

		// each chunk is followed by a CRLF
		if _, err := rd.ReadString('\n'); err != nil {
			return nil, ErrorBody.Error(err)
		}
	}
}

func decodeBody(body []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, ErrorBody.Error(err)
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case "deflate":
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return io.ReadAll(fr)
	default:
		return body, nil
	}
}
