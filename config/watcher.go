// Config file watcher.
//
// Polls the YAML file's modification time and, on change, reloads it through
// the Loader and publishes the result into a Store.
package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReloadEvent describes one reload attempt.
type ReloadEvent struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	// Error is set when the file could not be loaded; the store is left unchanged.
	Error error `json:"error,omitempty"`
}

// WatcherOption configures the Watcher
type WatcherOption func(*Watcher)

// WithPollInterval sets how often the file is stat'ed.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatcherLogger sets the logger for the watcher
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher reloads a config file into a Store whenever it changes.
type Watcher struct {
	mu sync.Mutex

	loader   *Loader
	store    *Store
	interval time.Duration
	logger   *zap.Logger

	running   bool
	stopChan  chan struct{}
	done      chan struct{}
	lastMod   time.Time
	callbacks []func(ReloadEvent)
}

// NewWatcher creates a watcher for the loader's config path.
func NewWatcher(loader *Loader, store *Store, opts ...WatcherOption) (*Watcher, error) {
	if loader == nil || loader.Path() == "" {
		return nil, fmt.Errorf("watcher requires a loader with a config path")
	}
	if store == nil {
		return nil, fmt.Errorf("watcher requires a store")
	}

	w := &Watcher{
		loader:   loader,
		store:    store,
		interval: time.Second,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(zap.String("component", "config_watcher"))

	if _, err := os.Stat(loader.Path()); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat path %s: %w", loader.Path(), err)
		}
		w.logger.Warn("config file does not exist, will watch for creation",
			zap.String("path", loader.Path()))
	}

	return w, nil
}

// OnReload registers a callback invoked after every reload attempt.
func (w *Watcher) OnReload(cb func(ReloadEvent)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Start begins polling until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})

	if info, err := os.Stat(w.loader.Path()); err == nil {
		w.lastMod = info.ModTime()
	}

	go w.pollLoop(ctx, w.stopChan, w.done)

	w.logger.Info("config watcher started",
		zap.String("path", w.loader.Path()),
		zap.Duration("interval", w.interval))
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info("config watcher stopped")
}

// IsRunning returns whether the watcher is running
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) pollLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-stop:
			return
		case <-ticker.C:
			if w.changed() {
				w.reload()
			}
		}
	}
}

func (w *Watcher) changed() bool {
	info, err := os.Stat(w.loader.Path())
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if info.ModTime().After(w.lastMod) {
		w.lastMod = info.ModTime()
		return true
	}
	return false
}

// reload loads the file and replaces the store content. A failed load keeps
// the previous configuration.
func (w *Watcher) reload() {
	evt := ReloadEvent{Path: w.loader.Path(), Timestamp: time.Now()}

	cfg, err := w.loader.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		evt.Error = err
		w.logger.Warn("config reload failed", zap.String("path", evt.Path), zap.Error(err))
	} else {
		w.store.Replace(cfg.ProviderConfig())
		w.logger.Info("config reloaded", zap.String("path", evt.Path))
	}

	w.mu.Lock()
	callbacks := make([]func(ReloadEvent), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(evt)
	}
}
