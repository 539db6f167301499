// Package watch re-runs work when input files change.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/docmigrate/internal/logfields"
)

// DefaultDebounce groups the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called with the changed files once events settle. An error
// is logged and watching continues.
type ChangeFunc func(ctx context.Context, changed []string) error

// Watcher monitors a fixed set of files.
type Watcher struct {
	files    map[string]bool
	debounce time.Duration
	onChange ChangeFunc
	logger   *slog.Logger
}

// New returns a Watcher for files. Directories containing the files are
// watched rather than the files themselves, so atomic saves (write to a
// temp file and rename) are seen.
func New(files []string, debounce time.Duration, onChange ChangeFunc) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{files: map[string]bool{}, debounce: debounce, onChange: onChange, logger: slog.Default()}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve watch path %s: %w", f, err)
		}
		w.files[abs] = true
	}
	if len(w.files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	return w, nil
}

// WithLogger sets the logger used for watch events.
func (w *Watcher) WithLogger(l *slog.Logger) *Watcher {
	w.logger = l
	return w
}

// Run blocks until ctx is canceled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	dirs := map[string]bool{}
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}
	w.logger.Info("Watching for changes", logfields.Count(len(w.files)))

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.files[event.Name] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				if event.Op&fsnotify.Remove != 0 {
					w.logger.Warn("Watched file removed", logfields.File(event.Name))
				}
				continue
			}
			w.logger.Debug("Change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			pending[event.Name] = true
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for f := range pending {
				changed = append(changed, f)
			}
			sort.Strings(changed)
			clear(pending)
			if err := w.onChange(ctx, changed); err != nil {
				w.logger.Error("Update after change failed", logfields.Error(err))
			}
		}
	}
}
