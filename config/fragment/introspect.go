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

package fragment

import (
	"fmt"
	"io"
	"sort"

	shlcmd "github.com/nabbar/statcollect/shell/command"
)

// driverDoc is the one-line description --{source,parser,filter,storage}-doc
// prints for a driver name; kept next to buildSource/buildParser/buildFilter/
// buildStorage so a new driver case and its doc entry land in the same review.
var (
	sourceDriverDoc = map[string]string{
		"http":          "polls an HTTP(S) endpoint, optional basic auth via password or password_prompt",
		"exec":          "runs a local command and parses its stdout",
		"execssh":       "runs a command over SSH and parses its stdout",
		"mysql":         "runs a SQL query against a MySQL DSN and parses the result set",
		"socket":        "sends a command over a TCP socket and parses the response",
		"static":        "replays a fixed byte payload on every fetch, for fixtures",
		"dummy":         "replays a fixed byte payload after an optional random delay, for load tests",
		"hostselfstats": "samples this host's own CPU/memory/disk counters",
	}
	parserDriverDoc = map[string]string{
		"textsimple":          "key: value or key=value line parser",
		"jsonflat":            "flattens a JSON document into dotted-path metrics",
		"xmlstat":             "flattens an XML document into dotted-path metrics",
		"webstatus-nginx":     "nginx stub_status page parser",
		"webstatus-apache":    "Apache/Lighttpd server-status page parser",
		"webstatus-lighttpd":  "Apache/Lighttpd server-status page parser",
		"webstatus-varnish":   "varnishstat JSON output parser",
		"userfunc":            "wraps a Go closure registered after config load; fragments cannot supply one",
	}
	filterDriverDoc = map[string]string{
		"rename": "renames metric keys per a static mapping",
		"scale":  "multiplies metric values per a static factor mapping",
		"route":  "sends metrics to a subset of storages based on host",
		"drop":   "removes named keys from a record",
		"add":    "injects static key/value pairs into every record",
	}
	storageDriverDoc = map[string]string{
		"filesink": "appends records as newline-delimited files under a directory",
		"file":     "alias for filesink",
		"graphite": "writes records to a Graphite plaintext carbon endpoint over TCP",
	}
)

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listCommand(name, label string, names func() []string) shlcmd.Command {
	return shlcmd.New(name, "list configured "+label+" names", func(stdout, stderr io.Writer, args []string) {
		for _, n := range names() {
			fmt.Fprintln(stdout, n)
		}
	})
}

func docCommand(name, label string, docs map[string]string) shlcmd.Command {
	return shlcmd.New(name, "describe the built-in "+label+" drivers", func(stdout, stderr io.Writer, args []string) {
		for _, driver := range sortedKeys(docs) {
			fmt.Fprintf(stdout, "%s: %s\n", driver, docs[driver])
		}
	})
}

func configCommand(name, label string, names func() []string) shlcmd.Command {
	return shlcmd.New(name, "print the configured "+label+" count", func(stdout, stderr io.Writer, args []string) {
		fmt.Fprintf(stdout, "%d %s configured\n", len(names()), label)
	})
}

// IntrospectionCommands builds the --{source,parser,filter,storage}-{list,
// config,doc} helpers: list names what Load actually wired up, doc
// describes what every built-in driver does regardless of whether a
// fragment used it, and config reports the wired count as a quick sanity
// check. Each helper is a shell/command.Command so a CLI front-end can
// run it without knowing the wrapped registry's internals.
func (r *Result) IntrospectionCommands() []shlcmd.Command {
	return []shlcmd.Command{
		listCommand("source-list", "source", r.Coordinator.SourceNames),
		configCommand("source-config", "source", r.Coordinator.SourceNames),
		docCommand("source-doc", "source", sourceDriverDoc),

		listCommand("parser-list", "parser", r.Parsers.Names),
		configCommand("parser-config", "parser", r.Parsers.Names),
		docCommand("parser-doc", "parser", parserDriverDoc),

		listCommand("filter-list", "filter", r.Filters.Names),
		configCommand("filter-config", "filter", r.Filters.Names),
		docCommand("filter-doc", "filter", filterDriverDoc),

		listCommand("storage-list", "storage", r.Storages.Names),
		configCommand("storage-config", "storage", r.Storages.Names),
		docCommand("storage-doc", "storage", storageDriverDoc),
	}
}
