// Package watch reports changes to the brief data files below a directory.
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

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// Options configures a Watcher.
type Options struct {
	// Include lists doublestar globs, relative to the root, that count as
	// data changes. Empty matches every file.
	Include []string
	// Debounce is how long to wait for further changes before reporting.
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher batches file changes under a root directory.
type Watcher struct {
	root     string
	include  []string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
}

// New creates a watcher over root and every directory below it.
func New(root string, opts Options) (*Watcher, error) {
	for _, p := range opts.Include {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		root:     root,
		include:  opts.Include,
		debounce: opts.Debounce,
		fsw:      fsw,
		logger:   logger,
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the underlying watcher. Run returns once it notices.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Match reports whether a root-relative path is covered by the include globs.
func (w *Watcher) Match(rel string) bool {
	if len(w.include) == 0 {
		return true
	}
	rel = filepath.ToSlash(rel)
	for _, p := range w.include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Run delivers batches of changed root-relative paths to fn until ctx is
// done or the watcher is closed. Batches are sorted and deduplicated.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() {
		if len(pending) == 0 {
			return
		}
		changed := make([]string, 0, len(pending))
		for p := range pending {
			changed = append(changed, p)
		}
		sort.Strings(changed)
		clear(pending)
		w.logger.Debug("data changed", "files", changed)
		fn(changed)
	}

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			rel, ok := w.handle(event)
			if !ok {
				continue
			}
			pending[rel] = true
			if w.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-fire:
			fire = nil
			flush()
		}
	}
}

// handle adds watches for new directories and reports whether event
// concerns a matching file.
func (w *Watcher) handle(event fsnotify.Event) (string, bool) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
			return "", false
		}
	}
	if event.Op == fsnotify.Chmod {
		return "", false
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if !w.Match(rel) {
		return "", false
	}
	return rel, true
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != dir && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}
