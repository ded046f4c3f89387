package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"dojo/internal/config"
	"dojo/internal/orchestrator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngineBinary writes a docker stand-in that exits with code for every
// command.
func fakeEngineBinary(t *testing.T, code int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine stand-in needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "docker")
	script := "#!/bin/sh\nexit " + strconv.Itoa(code) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newServeConfig(t *testing.T, binary string, policy config.StartupPolicy) *Config {
	t.Helper()

	dc := config.GetDefaultConfig()
	dc.Server.Host = "127.0.0.1"
	dc.Server.Port = 0
	dc.Server.SystemdNotify = false
	dc.Server.ShutdownTimeout = 2 * time.Second
	dc.Engine.Binary = binary
	dc.Engine.StartupPolicy = policy
	dc.Engine.CommandTimeout = 2 * time.Second

	return &Config{DojoConfig: &dc}
}

func TestRunServeMode_StrictEngineDown(t *testing.T) {
	cfg := newServeConfig(t, fakeEngineBinary(t, 1), config.StartupPolicyStrict)
	services, err := InitializeServices(cfg)
	require.NoError(t, err)

	err = runServeMode(context.Background(), cfg, services)
	require.Error(t, err)
	assert.True(t, orchestrator.IsEngineUnavailable(err))
	assert.Equal(t, "127.0.0.1:0", services.Server.Addr(), "server must not listen")
}

func TestRunServeMode_LenientEngineDown(t *testing.T) {
	cfg := newServeConfig(t, fakeEngineBinary(t, 1), config.StartupPolicyLenient)
	services, err := InitializeServices(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServeMode(ctx, cfg, services) }()

	require.Eventually(t, func() bool {
		addr := services.Server.Addr()
		if addr == "127.0.0.1:0" {
			return false
		}
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.False(t, services.Manager.EngineAvailable())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve mode did not stop")
	}
}

func TestRunServeMode_EngineUp(t *testing.T) {
	cfg := newServeConfig(t, fakeEngineBinary(t, 0), config.StartupPolicyStrict)
	services, err := InitializeServices(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServeMode(ctx, cfg, services) }()

	require.Eventually(t, func() bool {
		return services.Server.Addr() != "127.0.0.1:0"
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, services.Manager.EngineAvailable())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve mode did not stop")
	}
}
