package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/platinummonkey/peekguard/pkg/observability"
)

// TuningWatcher keeps a Tuning in sync with a YAML file. A file that fails to
// parse or validate is ignored and the previous values stay live.
type TuningWatcher struct {
	path    string
	base    Tuning
	logger  *observability.Logger
	watcher *fsnotify.Watcher

	mu        sync.RWMutex
	current   Tuning
	listeners []func(Tuning)
}

// NewTuningWatcher loads path over base and starts watching its directory.
// Call Run to process changes and Close when done.
func NewTuningWatcher(path string, base Tuning, logger *observability.Logger) (*TuningWatcher, error) {
	initial, err := LoadTuningFile(path, base)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: editors often replace the file rather than write it.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	return &TuningWatcher{
		path:    filepath.Clean(path),
		base:    base,
		logger:  logger,
		watcher: w,
		current: initial,
	}, nil
}

// Current returns the live tuning
func (tw *TuningWatcher) Current() Tuning {
	tw.mu.RLock()
	defer tw.mu.RUnlock()
	return tw.current
}

// OnChange registers fn to be called after every successful reload
func (tw *TuningWatcher) OnChange(fn func(Tuning)) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.listeners = append(tw.listeners, fn)
}

// Run processes file events until ctx is done
func (tw *TuningWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				tw.reload()
			}
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return nil
			}
			tw.logger.WithError(err).Warn("Tuning watcher error")
		}
	}
}

// Close stops watching
func (tw *TuningWatcher) Close() error {
	return tw.watcher.Close()
}

func (tw *TuningWatcher) reload() {
	tuning, err := LoadTuningFile(tw.path, tw.base)
	if err != nil {
		tw.logger.WithError(err).WithField("path", tw.path).Warn("Ignoring invalid tuning file")
		return
	}

	tw.mu.Lock()
	tw.current = tuning
	listeners := append([]func(Tuning){}, tw.listeners...)
	tw.mu.Unlock()

	tw.logger.WithField("path", tw.path).Info("Tuning reloaded")
	for _, fn := range listeners {
		fn(tuning)
	}
}
