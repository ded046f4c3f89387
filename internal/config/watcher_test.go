package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnChange(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()
	writeConfigFile(t, dir, "scenarios:\n  defaultImage: example/one\n")

	reloaded := make(chan DojoConfig, 4)
	w := NewWatcher(WatcherConfig{
		ConfigPath:   dir,
		Debounce:     20 * time.Millisecond,
		PollInterval: 20 * time.Millisecond,
		OnReload:     func(cfg DojoConfig) { reloaded <- cfg },
	})
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.True(t, w.IsRunning())

	// Ensure the new mtime is observable by the polling fallback as well.
	time.Sleep(50 * time.Millisecond)
	writeConfigFile(t, dir, "scenarios:\n  defaultImage: example/two\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "example/two", cfg.Scenarios.DefaultImage)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a reload after writing config.yaml")
	}
}

func TestWatcher_InvalidChangeKeepsPrevious(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()

	reloaded := make(chan DojoConfig, 1)
	w := NewWatcher(WatcherConfig{
		ConfigPath: dir,
		Debounce:   10 * time.Millisecond,
		OnReload:   func(cfg DojoConfig) { reloaded <- cfg },
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	writeConfigFile(t, dir, "engine:\n  startupPolicy: maybe\n")

	select {
	case <-reloaded:
		t.Fatal("invalid configuration must not be delivered")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_RunStopsWithContext(t *testing.T) {
	w := NewWatcher(WatcherConfig{ConfigPath: t.TempDir()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, w.IsRunning, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, w.IsRunning())
}
