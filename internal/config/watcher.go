package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watcher reloads the configuration when the file changes on disk and
// fans the fresh snapshot out to registered callbacks. Callbacks run
// on viper's watch goroutine and must not block.
type Watcher struct {
	viper     *viper.Viper
	mu        sync.RWMutex
	current   *Config
	callbacks []func(*Config)
	stopped   bool
}

// NewWatcher creates a watcher over one config file.
func NewWatcher(cfg *Config, configPath string) *Watcher {
	v := viper.New()
	v.SetConfigFile(configPath)

	return &Watcher{
		viper:   v,
		current: cfg,
	}
}

// OnChange registers a callback invoked with every reloaded snapshot.
func (w *Watcher) OnChange(callback func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start reads the file and begins watching it for changes.
func (w *Watcher) Start() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	w.viper.WatchConfig()
	w.viper.OnConfigChange(func(fsnotify.Event) {
		w.mu.RLock()
		stopped := w.stopped
		w.mu.RUnlock()
		if stopped {
			return
		}

		var cfg Config
		if err := w.viper.Unmarshal(&cfg); err != nil {
			return
		}

		w.mu.Lock()
		w.current = &cfg
		callbacks := make([]func(*Config), len(w.callbacks))
		copy(callbacks, w.callbacks)
		w.mu.Unlock()

		// outside the lock, a callback may call back into the watcher
		for _, callback := range callbacks {
			callback(&cfg)
		}
	})

	return nil
}

// Stop silences the watcher; further file changes are ignored.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
}

// Current returns the most recently loaded snapshot.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
