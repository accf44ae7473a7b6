package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// scriptWatcher re-runs a script once it has been quiet for the debounce
// period after a write
type scriptWatcher struct {
	watcher  *fsnotify.Watcher
	path     string // absolute path of the script
	debounce time.Duration
	rerun    func()
	stdout   io.Writer
	stderr   io.Writer

	mu   sync.Mutex
	runs int
}

// newScriptWatcher creates a watcher for path. Nothing happens until Run.
func newScriptWatcher(path string, debounce time.Duration, rerun func(), stdout, stderr io.Writer) (*scriptWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &scriptWatcher{
		watcher:  fsWatcher,
		path:     absPath,
		debounce: debounce,
		rerun:    rerun,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// Run watches until ctx is done. The directory is watched rather than the
// file so that editors which save by renaming are still seen.
func (w *scriptWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logInfo("watching %s (Ctrl+C to stop)", w.path)

	// Each write restarts the quiet period; the script runs when it ends,
	// so a save made of several writes runs once, on the final content.
	var (
		timer *time.Timer
		quiet <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-quiet:
			quiet = nil
			w.mu.Lock()
			w.runs++
			w.mu.Unlock()

			w.logInfo("%s changed, re-running", filepath.Base(w.path))
			w.rerun()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			quiet = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// Runs returns how many times the script has been re-run
func (w *scriptWatcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func (w *scriptWatcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *scriptWatcher) logError(format string, args ...any) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
