package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path, level string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: "+level+"\n"), 0o644))
}

func TestWatcher_ReloadsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "info")

	cfg, err := Load(path)
	require.NoError(t, err)

	w := NewWatcher(cfg, path)
	changed := make(chan *Config, 1)
	w.OnChange(func(next *Config) {
		select {
		case changed <- next:
		default:
		}
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	// give the watch goroutine a moment before touching the file
	time.Sleep(100 * time.Millisecond)
	writeConfigFile(t, path, "error")

	select {
	case next := <-changed:
		assert.Equal(t, "error", next.Log.Level)
		assert.Equal(t, "error", w.Current().Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change never observed")
	}
}

func TestWatcher_StopSilencesCallbacks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfigFile(t, path, "info")

	cfg, err := Load(path)
	require.NoError(t, err)

	w := NewWatcher(cfg, path)
	changed := make(chan *Config, 1)
	w.OnChange(func(next *Config) {
		select {
		case changed <- next:
		default:
		}
	})
	require.NoError(t, w.Start())
	w.Stop()

	time.Sleep(100 * time.Millisecond)
	writeConfigFile(t, path, "error")

	select {
	case <-changed:
		t.Fatal("stopped watcher still delivered a change")
	case <-time.After(500 * time.Millisecond):
	}
	assert.Equal(t, "info", w.Current().Log.Level)
}

func TestWatcher_MissingFile(t *testing.T) {
	w := NewWatcher(Default(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, w.Start())
}
