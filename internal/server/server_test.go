package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSockets struct {
	served atomic.Int32
	closed atomic.Int32
}

func (f *fakeSockets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.served.Add(1)
	w.WriteHeader(http.StatusTeapot)
}

func (f *fakeSockets) CloseAll() { f.closed.Add(1) }

type fixedCounter int

func (c fixedCounter) Len() int { return int(c) }

func newTestServer(cfg Config, sessions int) (*Server, *fakeSockets, *prometheus.Registry) {
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "http://localhost:3000"
	}
	reg := prometheus.NewRegistry()
	sockets := &fakeSockets{}
	return New(cfg, sockets, fixedCounter(sessions), reg), sockets, reg
}

func TestHealth(t *testing.T) {
	s, _, _ := newTestServer(Config{}, 3)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, healthResponse{Status: "healthy", Sessions: 3}, body)
}

func TestHealth_MethodNotAllowed(t *testing.T) {
	s, _, _ := newTestServer(Config{}, 0)

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name            string
		allowed         string
		wantOrigin      string
		wantCredentials string
	}{
		{name: "specific origin", allowed: "http://localhost:3000/", wantOrigin: "http://localhost:3000", wantCredentials: "true"},
		{name: "wildcard", allowed: "*", wantOrigin: "*", wantCredentials: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestServer(Config{AllowedOrigin: tt.allowed}, 0)

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodOptions, "/health", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			s.Handler().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusNoContent, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, rr.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, "GET, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
		})
	}
}

func TestRoutes(t *testing.T) {
	t.Run("ws goes to socket handler", func(t *testing.T) {
		s, sockets, _ := newTestServer(Config{}, 0)

		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws?scenarioId=tf-drift", nil))

		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Equal(t, int32(1), sockets.served.Load())
	})

	t.Run("metrics enabled", func(t *testing.T) {
		s, _, reg := newTestServer(Config{MetricsEnabled: true}, 0)
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "dojo_test_total", Help: "test"})
		reg.MustRegister(counter)
		counter.Inc()

		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "dojo_test_total 1")
	})

	t.Run("metrics disabled", func(t *testing.T) {
		s, _, _ := newTestServer(Config{MetricsEnabled: false}, 0)

		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRun_NotifiesAndShutsDown(t *testing.T) {
	var (
		mu     sync.Mutex
		states []string
	)
	orig := sdNotify
	sdNotify = func(unsetEnvironment bool, state string) (bool, error) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, state)
		return true, nil
	}
	defer func() { sdNotify = orig }()

	s, sockets, _ := newTestServer(Config{
		Address:         "127.0.0.1:0",
		SystemdNotify:   true,
		ShutdownTimeout: 2 * time.Second,
	}, 1)
	require.NoError(t, s.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr() + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && len(body) > 0
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.Equal(t, int32(1), sockets.closed.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{daemon.SdNotifyReady, daemon.SdNotifyStopping}, states)
}

func TestRun_ListenFailure(t *testing.T) {
	first, _, _ := newTestServer(Config{Address: "127.0.0.1:0"}, 0)
	require.NoError(t, first.Listen())
	defer first.listener.Close()

	second, _, _ := newTestServer(Config{Address: first.Addr()}, 0)
	err := second.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
