package script

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/amin-mir/gap-buffer/internal/logging"
)

// DefaultDebounce is how long a Reloader waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Reloader calls a function whenever a script file changes.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save are still seen.
type Reloader struct {
	path     string
	debounce time.Duration
	logger   *logging.Logger
	watcher  *fsnotify.Watcher
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithDebounce sets the quiet period before a reload.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *Reloader) {
		r.debounce = d
	}
}

// WithReloadLogger sets the logger.
func WithReloadLogger(l *logging.Logger) ReloaderOption {
	return func(r *Reloader) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewReloader starts watching path.
func NewReloader(path string, opts ...ReloaderOption) (*Reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	r := &Reloader{
		path:     abs,
		debounce: DefaultDebounce,
		logger:   logging.Null(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("reload").WithField("path", abs)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}
	r.watcher = w
	return r, nil
}

// Run calls fn after each settled change to the file until ctx is done.
// Errors from fn are logged and do not stop the loop.
func (r *Reloader) Run(ctx context.Context, fn func() error) error {
	timer := time.NewTimer(r.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != r.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(r.debounce)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("watch error: %v", err)

		case <-timer.C:
			r.logger.Info("script changed, reloading")
			if err := fn(); err != nil {
				r.logger.Error("reload failed: %v", err)
			}
		}
	}
}

// Close stops watching.
func (r *Reloader) Close() error {
	return r.watcher.Close()
}
