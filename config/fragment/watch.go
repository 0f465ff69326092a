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
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FragmentChange describes one filesystem event a Watcher observed on the
// main config file or one of its "*.d" fragment directories.
type FragmentChange struct {
	Path string
	Op   string
}

// Watcher reports filesystem changes under the daemon's config tree.
// Configuration is fatal-at-startup only - there is no hot-reload path -
// so a detected change is purely advisory: the daemon keeps running
// unmodified and it is on the caller (typically a log line pointing the
// operator at SIGTERM+restart) to act on it. The watcher observes, it
// never mutates running state.
type Watcher struct {
	fsw *fsnotify.Watcher
}

// WatchConfig opens an fsnotify watch on path's main config file and on
// every "*.d" fragment directory reachable from the glob patterns the
// main file names for parsers/filters/storage/source_groups. Changes are
// delivered on the returned channel until ctx is cancelled or Close is
// called; the channel is closed once the watch loop exits.
func WatchConfig(ctx context.Context, path string, fragmentDirs []string) (<-chan FragmentChange, *Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	if err := fsw.Add(path); err != nil {
		_ = fsw.Close()
		return nil, nil, err
	}
	for _, d := range fragmentDirs {
		if d == "" {
			continue
		}
		// Fragment globs are files, not directories; fsnotify watches
		// directories and reports events for files inside them.
		dir := filepath.Dir(d)
		if err := fsw.Add(dir); err != nil {
			continue
		}
	}

	out := make(chan FragmentChange, 16)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				select {
				case out <- FragmentChange{Path: ev.Name, Op: ev.Op.String()}:
				default:
				}
			case _, ok := <-fsw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, &Watcher{fsw: fsw}, nil
}

// Close releases the underlying fsnotify watch. Safe to call once the
// watch loop's context has already been cancelled.
func (w *Watcher) Close() error {
	if w == nil || w.fsw == nil {
		return nil
	}
	return w.fsw.Close()
}
