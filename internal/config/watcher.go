package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the loader's directory and hot reloads configuration.
// Reloading only runs in development; elsewhere the watcher just holds the
// initial value.
type Watcher struct {
	loader    *Loader
	config    *Config
	callbacks []func(*Config)
	mu        sync.RWMutex
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	stopCh    chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// WatcherOption configures a Watcher
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a configuration watcher.
func NewWatcher(loader *Loader, initial *Config, logger *zap.Logger, opts ...WatcherOption) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Watcher{
		loader:   loader,
		config:   initial,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if initial.Environment != Development {
		close(w.done)
		logger.Info("Configuration hot reloading disabled",
			zap.String("environment", string(initial.Environment)),
		)
		return w, nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(loader.BasePath()); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}
	w.watcher = fsWatcher

	go w.watchLoop()

	logger.Info("Configuration hot reloading enabled",
		zap.String("environment", string(initial.Environment)),
		zap.String("dir", loader.BasePath()),
	)
	return w, nil
}

// watchLoop monitors for file changes and triggers reloads.
func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 || !isConfigFile(event.Name) {
				continue
			}

			w.logger.Debug("Configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.Reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			w.logger.Info("Stopping configuration watcher")
			return
		}
	}
}

// Reload re-runs the loader and notifies callbacks if the result changed.
// An invalid file keeps the previous configuration.
func (w *Watcher) Reload() {
	newConfig, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Invalid configuration after reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	oldConfig := w.config
	if configsEqual(oldConfig, newConfig) {
		w.mu.Unlock()
		w.logger.Debug("Configuration unchanged after reload")
		return
	}
	w.config = newConfig
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.logConfigChanges(oldConfig, newConfig)
	w.notifyCallbacks(callbacks, newConfig)

	w.logger.Info("Configuration reloaded successfully",
		zap.Int("callbacks_notified", len(callbacks)),
	)
}

// OnChange registers a callback to be called when configuration changes.
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, callback)
	w.mu.Unlock()
}

// GetConfig returns the current configuration.
func (w *Watcher) GetConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Stop stops the watcher and waits for its loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.done
}

func (w *Watcher) notifyCallbacks(callbacks []func(*Config), newConfig *Config) {
	for i, callback := range callbacks {
		go func(idx int, cb func(*Config)) {
			defer func() {
				if r := recover(); r != nil {
					w.logger.Error("Callback panicked",
						zap.Int("callback_index", idx),
						zap.Any("panic", r),
					)
				}
			}()

			cb(newConfig)
		}(i, callback)
	}
}

// logConfigChanges logs the settings that most often change while tuning.
func (w *Watcher) logConfigChanges(old, new *Config) {
	changes := make([]string, 0)

	if old.Viewport.MinScale != new.Viewport.MinScale || old.Viewport.MaxScale != new.Viewport.MaxScale {
		changes = append(changes, fmt.Sprintf("scale: [%.2f, %.2f] -> [%.2f, %.2f]",
			old.Viewport.MinScale, old.Viewport.MaxScale, new.Viewport.MinScale, new.Viewport.MaxScale))
	}
	if old.Edge != new.Edge {
		changes = append(changes, "edge geometry")
	}
	if old.Layout != new.Layout {
		changes = append(changes, "layout")
	}
	if old.Logging != new.Logging {
		changes = append(changes, fmt.Sprintf("logging: %s -> %s", old.Logging.Level, new.Logging.Level))
	}

	if len(changes) > 0 {
		w.logger.Info("Configuration changes detected",
			zap.Strings("changes", changes),
		)
	}
}

// configsEqual compares everything but load metadata.
func configsEqual(a, b *Config) bool {
	ac, bc := *a, *b
	ac.LoadedFrom, bc.LoadedFrom = nil, nil
	return reflect.DeepEqual(ac, bc)
}

// isConfigFile checks if a file is a configuration file.
func isConfigFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
