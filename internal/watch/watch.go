// Package watch reports file changes under a directory tree.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phobologic/partials/internal/logging"
)

// Watcher batches filesystem events under a root directory.
type Watcher struct {
	root     string
	skip     map[string]struct{}
	debounce time.Duration
	logger   *slog.Logger
}

// New returns a Watcher for root. Directories in skip (absolute) and
// hidden directories are not watched.
func New(root string, skip []string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := make(map[string]struct{}, len(skip))
	for _, d := range skip {
		s[filepath.Clean(d)] = struct{}{}
	}
	return &Watcher{root: root, skip: s, debounce: debounce, logger: logger}
}

// Run calls fn with the sorted absolute paths changed since the previous
// call, once no event has arrived for the debounce interval. It returns
// when ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	pending := make(map[string]struct{})
	var timer <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, ev.Name); err != nil {
						w.logger.Warn("watching new directory", "path", ev.Name, "error", err)
					}
					continue
				}
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if w.skipped(ev.Name) {
				continue
			}
			w.logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = struct{}{}
			timer = time.After(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)

		case <-timer:
			timer = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			fn(changed)
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && (strings.HasPrefix(d.Name(), ".") || w.isSkipDir(path)) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) isSkipDir(path string) bool {
	_, ok := w.skip[filepath.Clean(path)]
	return ok
}

func (w *Watcher) skipped(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	for dir := range w.skip {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
