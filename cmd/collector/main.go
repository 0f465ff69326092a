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

// Command collector is the daemon: it loads the main config file and
// its "*.d/*.conf" fragments, runs the full pull-parse-filter-store
// pipeline, and mounts its own self-telemetry HTTP surface on
// --listen-addr:--listen-port.
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

const programName = "statcollect-collector"

// wantOpenFiles is the open-file ceiling requested at startup: a collector
// running dozens of sources plus a file storage sink can hold far more
// handles open at once than the platform default.
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
		"statcollect pull-parse-filter-store pipeline daemon",
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
	app.AddFlagInt(true, &listenPort, "listen-port", "", 16661, "listen port for the self-telemetry HTTP surface")
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

		addr := listenAddr
		port := listenPort
		if result.HTTPAddr != "" && result.HTTPAddr != "*" {
			addr = result.HTTPAddr
		}
		if result.HTTPPort != 0 {
			port = result.HTTPPort
		}

		listen, aerr := daemon.ListenAddress(addr, port)
		if aerr != nil {
			return aerr
		}

		result.Coordinator.Start()
		log.Info("collector: pipeline started", nil)

		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if changes, watcher, werr := fragment.WatchConfig(watchCtx, configPath, nil); werr == nil {
			defer func() { _ = watcher.Close() }()
			go func() {
				for ch := range changes {
					log.Warning("collector: config file changed on disk, restart to apply ("+ch.Op+")", ch.Path)
				}
			}()
		}

		errs := make(chan error, 1)
		srv := daemon.ServeTelemetry(listen, selftelemetry.Mux(result.Coordinator), errs)
		log.Info("collector: self-telemetry listening", listen)

		daemon.WaitShutdown(func() {
			log.Info("collector: SIGUSR1 received, log hooks will reopen on next write", nil)
		})

		log.Info("collector: shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)

		if serr := result.Coordinator.Stop(); serr != nil {
			log.Warning("collector: storage shutdown reported errors", serr)
		}

		select {
		case e := <-errs:
			if e != nil {
				log.Warning("collector: telemetry server error", e)
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
