// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package watch re-runs the analysis pipeline when source files
// change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Change is one debounced filesystem change under the watched root.
type Change struct {
	// Path is the absolute path of the changed file.
	Path string

	// Op is the raw fsnotify operation.
	Op fsnotify.Op

	// Time is when the change was observed.
	Time time.Time
}

// Handler receives a batch of changes once the debounce window
// closes without new events.
type Handler func(changes []Change)

// skipNames are directory names never watched. They mirror the
// walker's built-in exclusions.
var skipNames = map[string]bool{
	"__pycache__":   true,
	"node_modules":  true,
	".git":          true,
	".hg":           true,
	".svn":          true,
	".tox":          true,
	".venv":         true,
	"venv":          true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".idea":         true,
	".vscode":       true,
}

// Watcher watches a project tree and batches changes to source files.
//
// # Description
//
// Every directory under the root is registered with fsnotify, and
// newly created directories are added as they appear. Events for
// files without a watched extension are dropped. Surviving events
// are buffered until the debounce window passes without another
// event, then delivered to the handler as one batch.
//
// # Thread Safety
//
// Safe for concurrent use. The handler runs on a single goroutine.
type Watcher struct {
	root       string
	extensions map[string]bool
	handler    Handler
	debounce   time.Duration
	fsw        *fsnotify.Watcher

	changes  chan Change
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	running bool
}

// Options configures a Watcher.
type Options struct {
	// Debounce is how long to wait for the event stream to go quiet
	// before invoking the handler. Default: 2s.
	Debounce time.Duration

	// BufferSize is the capacity of the internal change channel.
	// Default: 1000.
	BufferSize int
}

// New creates a Watcher for the given root. Only files whose
// extension appears in extensions trigger the handler.
func New(root string, extensions []string, handler Handler, opts *Options) (*Watcher, error) {
	debounce := 2 * time.Second
	bufferSize := 1000
	if opts != nil {
		if opts.Debounce > 0 {
			debounce = opts.Debounce
		}
		if opts.BufferSize > 0 {
			bufferSize = opts.BufferSize
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	extSet := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		extSet[strings.ToLower(ext)] = true
	}

	return &Watcher{
		root:       root,
		extensions: extSet,
		handler:    handler,
		debounce:   debounce,
		fsw:        fsw,
		changes:    make(chan Change, bufferSize),
		done:       make(chan struct{}),
	}, nil
}

// Start registers the tree with fsnotify and begins delivering
// batches. It returns immediately; watching stops when the context
// is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	go w.processEvents(ctx)
	go w.debounceLoop(ctx)

	return nil
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.fsw.Close()

		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	})
}

// IsRunning reports whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// addRecursive registers dir and every subdirectory that is not
// excluded.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if skipNames[d.Name()] && path != dir {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// wanted reports whether a change to the given file should trigger
// re-analysis.
func (w *Watcher) wanted(path string) bool {
	base := filepath.Base(path)
	if skipNames[base] || strings.HasPrefix(base, ".") {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(path))]
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// Newly created directories need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !skipNames[filepath.Base(event.Name)] {
						if err := w.fsw.Add(event.Name); err != nil {
							slog.Warn("failed to watch new directory",
								slog.String("path", event.Name),
								slog.Any("error", err))
						}
					}
					continue
				}
			}

			if !w.wanted(event.Name) {
				continue
			}

			change := Change{Path: event.Name, Op: event.Op, Time: time.Now()}
			select {
			case w.changes <- change:
			default:
				slog.Warn("change buffer full, dropping event",
					slog.String("path", event.Name))
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var pending []Change
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case change := <-w.changes:
			pending = append(pending, change)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := dedupe(pending)
			pending = nil
			w.handler(batch)
		}
	}
}

// dedupe keeps the latest change per path, preserving first-seen
// order.
func dedupe(changes []Change) []Change {
	index := make(map[string]int, len(changes))
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if i, ok := index[c.Path]; ok {
			out[i] = c
			continue
		}
		index[c.Path] = len(out)
		out = append(out, c)
	}
	return out
}
