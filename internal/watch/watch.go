// Package watch reports changes to the JSONL files of a sqlite data
// directory, so a long-running view can reload after another process
// writes to the map.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last write
// before reporting a change.
const DefaultDebounce = 200 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. A nil logger uses slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithDebounce sets the quiet period that ends a burst of writes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher watches one data directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	log      *slog.Logger
}

// New returns a watcher for dir.
func New(dir string, opts ...Option) *Watcher {
	w := &Watcher{dir: dir, debounce: DefaultDebounce, log: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run calls onChange once after each burst of changes to a .jsonl file in
// the directory. It blocks until ctx is done and then returns nil. An
// error from onChange stops the watch and is returned.
//
// The directory is watched rather than the files because JSONL writes
// replace the file by rename.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context) error) (err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() {
		if cerr := fw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			w.log.Debug("data file changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			timer.Reset(w.debounce)
		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "error", werr)
		case <-timer.C:
			if err := onChange(ctx); err != nil {
				return err
			}
		}
	}
}

func relevant(e fsnotify.Event) bool {
	if filepath.Ext(e.Name) != ".jsonl" {
		return false
	}
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) || e.Has(fsnotify.Rename) || e.Has(fsnotify.Remove)
}
