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

// Command agent is the introspection-only binary: it loads the same
// parser/filter/storage/source_groups configuration as the collector but
// never arms any source's fetch schedule, mounting only the self-telemetry
// HTTP surface on --listen-addr:--listen-port (default
// 16660). This lets an operator point a read-only introspection process
// at a config without the collector's own fetch loop fighting it for
// the same downstream storages.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	libcbr "github.com/nabbar/statcollect/cobra"
	"github.com/nabbar/statcollect/config/fragment"
	"github.com/nabbar/statcollect/internal/daemon"
	"github.com/nabbar/statcollect/ioutils/fileDescriptor"
	liblog "github.com/nabbar/statcollect/logger"
	loglvl "github.com/nabbar/statcollect/logger/level"
	"github.com/nabbar/statcollect/pipeline"
	"github.com/nabbar/statcollect/selftelemetry"
	libver "github.com/nabbar/statcollect/version"
	spfcbr "github.com/spf13/cobra"
)

const programName = "statcollect-agent"

// wantOpenFiles is the open-file ceiling requested at startup; the agent
// shares the collector's storage/source registries and so
// faces the same handle pressure even with its fetch schedule disarmed.
const wantOpenFiles = 8192

func main() {
	if _, _, err := fileDescriptor.SystemFileDescriptor(wantOpenFiles); err != nil {
		fmt.Fprintf(os.Stderr, "%s: warning: could not raise open-file limit: %v\n", programName, err)
	}

	var (
		listenAddr string
		listenPort int
		configPath string
		configInit string
		runDaemon  bool
		pidFile    string
		userName   string
		groupName  string
	)

	vers := libver.NewVersion(
		libver.License_MIT,
		programName,
		"statcollect self-telemetry introspection agent",
		"2024-01-01T00:00:00Z",
		"source",
		"v0.1.0",
		"statcollect",
		"STATCOLLECT",
		struct{}{},
		0,
	)

	app := libcbr.New()
	app.SetVersion(vers)
	app.SetFuncInit(func() {})
	app.Init()

	app.AddFlagString(true, &listenAddr, "listen-addr", "", "*", "listen address for the self-telemetry HTTP surface ('*' = all interfaces)")
	app.AddFlagInt(true, &listenPort, "listen-port", "", 16660, "listen port for the self-telemetry HTTP surface")
	app.AddFlagString(true, &configPath, "config", "c", "", "path to the main key=value configuration file")
	app.AddFlagString(true, &configInit, "config-dir-init", "", "", "create a skeleton parser.d/filter.d/storage.d/source.d tree in this directory and exit")
	app.AddFlagBool(true, &runDaemon, "daemon", "", false, "daemonize after startup (detach from the controlling terminal)")
	app.AddFlagString(true, &pidFile, "pid-file", "", daemon.DefaultPidFile(programName), "path to the PID file")
	app.AddFlagString(true, &userName, "user", "", "", "drop privileges to this user after binding the listen socket")
	app.AddFlagString(true, &groupName, "group", "", "", "drop privileges to this group after binding the listen socket")

	var introspect string
	app.AddFlagString(true, &introspect, "introspect", "", "", "run one introspection helper (source|parser|filter|storage)-(list|config|doc) against --config and exit")

	var extendedVersion bool
	app.AddFlagBool(true, &extendedVersion, "extended-version", "", false, "print extended build/license information and exit")

	app.Cobra().RunE = func(cmd *spfcbr.Command, args []string) error {
		if extendedVersion {
			fmt.Fprintln(os.Stdout, vers.GetInfo())
			fmt.Fprintln(os.Stdout, vers.GetLicenseBoiler())
			return nil
		}

		if configInit != "" {
			if err := fragment.InitDir(configInit); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "wrote configuration skeleton to %s\n", configInit)
			return nil
		}

		if configPath == "" {
			return fmt.Errorf("--config is required unless --config-dir-init is given")
		}

		if err := daemon.CheckPidFile(pidFile); err != nil {
			return err
		}

		if runDaemon && !daemon.IsDaemonized() {
			return daemon.Daemonize()
		}

		if err := daemon.WritePidFile(pidFile); err != nil {
			return err
		}
		defer daemon.RemovePidFile(pidFile)

		log := liblog.New(context.Background())
		log.SetLevel(loglvl.InfoLevel)
		logFn := liblog.FuncLog(func() liblog.Logger { return log })

		daemon.DropPrivileges(userName, groupName, logFn)

		// The agent builds the same registries and Coordinator the
		// collector would, but intentionally never calls Start() on it -
		// no source's schedule is armed, so the coordinator only ever
		// serves as a counters holder for the self-telemetry surface.
		loader := fragment.NewLoader(context.Background(), logFn, pipeline.DefaultConfig())
		result, lerr := loader.Load(configPath)
		if lerr != nil {
			return lerr
		}

		if introspect != "" {
			for _, c := range result.IntrospectionCommands() {
				if c.Name() == introspect {
					c.Run(os.Stdout, os.Stderr, args)
					return nil
				}
			}
			return fmt.Errorf("unknown --introspect helper %q", introspect)
		}

		// Unlike the collector, the agent's listen port keeps its own
		// CLI default (16660) rather than the config's http_port: the
		// same config file is commonly pointed at by both binaries, and
		// http_port names the collector's own telemetry port.
		addr := listenAddr
		port := listenPort
		if result.HTTPAddr != "" && result.HTTPAddr != "*" {
			addr = result.HTTPAddr
		}

		listen, aerr := daemon.ListenAddress(addr, port)
		if aerr != nil {
			return aerr
		}

		log.Info("agent: mounting self-telemetry surface only, pipeline fetch loop is not started", nil)

		errs := make(chan error, 1)
		srv := daemon.ServeTelemetry(listen, selftelemetry.Mux(result.Coordinator), errs)
		log.Info("agent: self-telemetry listening", listen)

		daemon.WaitShutdown(func() {
			log.Info("agent: SIGUSR1 received, log hooks will reopen on next write", nil)
		})

		log.Info("agent: shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)

		select {
		case e := <-errs:
			if e != nil {
				log.Warning("agent: telemetry server error", e)
			}
		default:
		}

		return nil
	}

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
