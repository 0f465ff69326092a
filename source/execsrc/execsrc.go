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

// Package execsrc implements the Exec and ExecSSH source drivers: run
// an external command through transport/procrun
// and hand its stdout to the parser stage. ExecSSH is Exec with an
// "ssh [options] user@host" prefix injected ahead of the configured
// command, optionally overriding SSH_AUTH_SOCK for the spawn's duration.
package execsrc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nabbar/statcollect/transport/procrun"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the execsrc package.
const (
	ErrorEmptyCommand liberr.CodeError = iota + liberr.MinPkgSource + 20
	ErrorExec
)

// Config describes one Exec/ExecSSH source.
type Config struct {
	Command []string
	Env     []string
	Dir     string
	Timeout time.Duration

	// SSH, when non-nil, wraps Command with an ssh invocation instead of
	// running it locally.
	SSH *SSHConfig
}

// SSHConfig configures the ExecSSH variant.
type SSHConfig struct {
	User       string
	Host       string
	Port       int
	Options    []string // extra ssh flags, e.g. "-i", "/path/to/key"
	AuthSocket string   // overrides SSH_AUTH_SOCK for this spawn only
}

// Source is one Exec or ExecSSH fetcher.
type Source struct {
	cfg Config
	url string
}

// New builds an Exec/ExecSSH Source. url is the logical identifier
// recorded on each fetch, independent of the
// actual command line.
func New(cfg Config, url string) (*Source, error) {
	if len(cfg.Command) == 0 {
		return nil, ErrorEmptyCommand.Error(nil)
	}
	return &Source{cfg: cfg, url: url}, nil
}

func (s *Source) Driver() string {
	if s.cfg.SSH != nil {
		return "execssh"
	}
	return "exec"
}

func (s *Source) URL() string { return s.url }

// Fetch runs the configured command (through ssh, if SSH is set) and
// returns its stdout. Unless RequireZeroExit is set, a nonzero exit code
// is not itself an error: EOF on stdout is completion and the parser
// stage decides whether the output is usable.
func (s *Source) Fetch(ctx context.Context) ([]byte, error) {
	command := s.cfg.Command
	env := s.cfg.Env

	if s.cfg.SSH != nil {
		command = sshWrap(s.cfg.SSH, s.cfg.Command)
		if s.cfg.SSH.AuthSocket != "" {
			env = append(append([]string(nil), env...), "SSH_AUTH_SOCK="+s.cfg.SSH.AuthSocket)
		}
	}

	res, err := procrun.Run(ctx, procrun.Options{
		Command: command,
		Env:     env,
		Dir:     s.cfg.Dir,
		Timeout: s.cfg.Timeout,
	})
	if err != nil {
		return nil, ErrorExec.Error(err)
	}
	return res.Stdout, nil
}

// sshWrap prepends an "ssh [options] user@host" invocation to command,
// so the remote shell receives exactly the configured argv.
func sshWrap(cfg *SSHConfig, command []string) []string {
	args := []string{"ssh"}
	args = append(args, cfg.Options...)
	if cfg.Port != 0 {
		args = append(args, "-p", fmt.Sprintf("%d", cfg.Port))
	}
	target := cfg.Host
	if cfg.User != "" {
		target = cfg.User + "@" + cfg.Host
	}
	args = append(args, target)
	args = append(args, strings.Join(command, " "))
	return args
}
