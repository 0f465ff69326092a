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
	"os"
	"path/filepath"

	liberr "github.com/nabbar/statcollect/errors"
)

const mainSkeleton = `# statcollect main configuration
parsers = parser.d/*.conf
filters = filter.d/*.conf
storage = storage.d/*.conf
source_groups = source.d/*.conf
http_addr = *
http_port = 16661
`

const parserSkeleton = `# example parser fragment
name = status
driver = textsimple
`

const filterSkeleton = `# example filter fragment
name = tag-env
driver = add
values = env:1
`

const storageSkeleton = `# example storage fragment
name = graphite
driver = graphite
host = 127.0.0.1
port = 2003
`

const sourceSkeleton = `# example source fragment
name = local-status
driver = http
url = http://127.0.0.1/server-status?auto
interval = 30s
timeout = 5s
parsers = status
storages = graphite
`

// InitDir creates the skeleton directory tree behind the
// "--config-dir-init=<dir>" flag: parser.d/, filter.d/,
// storage.d/, source.d/, each with one example fragment, plus a main
// config file naming them via the standard glob keys.
func InitDir(dir string) liberr.Error {
	dirs := map[string]string{
		"parser.d":  parserSkeleton,
		"filter.d":  filterSkeleton,
		"storage.d": storageSkeleton,
		"source.d":  sourceSkeleton,
	}

	for name, content := range dirs {
		sub := filepath.Join(dir, name)
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return ErrorSkeletonWrite.Error(err)
		}
		if err := os.WriteFile(filepath.Join(sub, "example.conf"), []byte(content), 0o644); err != nil {
			return ErrorSkeletonWrite.Error(err)
		}
	}

	if err := os.WriteFile(filepath.Join(dir, "statcollect.conf"), []byte(mainSkeleton), 0o644); err != nil {
		return ErrorSkeletonWrite.Error(err)
	}

	return nil
}
