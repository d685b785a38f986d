// Package watch reports changes to job files so a lint can be re-run while
// jobs are being edited.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/harrison/jenkins-job-linter/internal/fileutil"
)

// DefaultDebounceDelay coalesces the burst of events an editor or Jenkins
// produces when it saves a job
const DefaultDebounceDelay = 300 * time.Millisecond

// Watcher watches job files and directories for changes
type Watcher struct {
	watcher  *fsnotify.Watcher
	opts     fileutil.ScanOptions
	files    map[string]bool // explicitly watched files
	dirs     map[string]bool // directories scanned for job files
	debounce time.Duration
}

// New watches every path: directories (and their subdirectories, subject to
// opts) for files accepted by opts, and files for changes to themselves.
func New(paths []string, opts fileutil.ScanOptions, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		opts:     opts,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounceDelay
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}

		if info.IsDir() {
			err = w.addRecursive(abs)
		} else {
			// Watch the parent so editors that replace the file are seen
			w.files[abs] = true
			err = fsw.Add(filepath.Dir(abs))
		}
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	return w, nil
}

// addRecursive adds dir and every subdirectory the scan options allow
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) || os.IsPermission(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (!w.opts.Recursive || w.opts.SkipsDir(d.Name())) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return err
		}
		w.dirs[path] = true
		return nil
	})
}

// relevant reports whether an event path is a job file being watched
func (w *Watcher) relevant(path string) bool {
	if w.files[path] {
		return true
	}
	return w.dirs[filepath.Dir(path)] && w.opts.AcceptsFile(filepath.Base(path))
}

// Run delivers changed job files to onChange, sorted and debounced, until
// ctx is cancelled. onChange is never called concurrently.
func (w *Watcher) Run(ctx context.Context, onChange func(changed []string)) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) && w.dirs[filepath.Dir(event.Name)] {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.opts.Recursive || w.opts.SkipsDir(info.Name()) {
						continue
					}
					if err := w.addRecursive(event.Name); err != nil {
						return fmt.Errorf("failed to watch %s: %w", event.Name, err)
					}
					// Files copied in with the directory produce no events of their own
					if scan, err := fileutil.ScanDirectory(event.Name, w.opts); err == nil {
						for _, f := range scan.Files {
							pending[f] = true
						}
						timer.Reset(w.debounce)
					}
					continue
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}

			pending[event.Name] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				if _, err := os.Stat(path); err == nil {
					changed = append(changed, path)
				}
			}
			pending = make(map[string]bool)
			if len(changed) == 0 {
				continue
			}
			sort.Strings(changed)
			onChange(changed)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
