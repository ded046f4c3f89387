package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"dojo/pkg/logging"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// DefaultReadHeaderTimeout is the default timeout for reading request headers.
	DefaultReadHeaderTimeout = 10 * time.Second
	// DefaultShutdownTimeout bounds graceful shutdown when none is configured.
	DefaultShutdownTimeout = 10 * time.Second
)

// sdNotify is a variable so tests can observe service manager notifications.
var sdNotify = daemon.SdNotify

// SessionCounter reports how many sessions are registered.
type SessionCounter interface {
	Len() int
}

// SocketHandler serves the duplex endpoint and can drop every connection.
type SocketHandler interface {
	http.Handler
	CloseAll()
}

// Config holds the HTTP surface settings.
type Config struct {
	Address         string
	AllowedOrigin   string
	MetricsEnabled  bool
	SystemdNotify   bool
	ShutdownTimeout time.Duration
}

// Server is the HTTP front of dojo: health, metrics and the WebSocket
// endpoint behind one listener.
type Server struct {
	cfg      Config
	sockets  SocketHandler
	sessions SessionCounter
	gatherer prometheus.Gatherer

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
}

// New creates a server. gatherer may be nil when metrics are disabled.
func New(cfg Config, sockets SocketHandler, sessions SessionCounter, gatherer prometheus.Gatherer) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return &Server{
		cfg:      cfg,
		sockets:  sockets,
		sessions: sessions,
		gatherer: gatherer,
	}
}

// Handler returns the routed handler wrapped in the CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/ws", s.sockets)
	if s.cfg.MetricsEnabled && s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return corsMiddleware(s.cfg.AllowedOrigin, mux)
}

// Listen binds the configured address. Run calls it when it has not been
// called already.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Address
}

// Run serves until ctx is cancelled, then closes every client connection and
// shuts the HTTP server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	listener := s.listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	serveErr := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	logging.Info("Server", "Listening on %s", listener.Addr())
	s.notify(daemon.SdNotifyReady)

	select {
	case err, ok := <-serveErr:
		if ok && err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.notify(daemon.SdNotifyStopping)
	logging.Info("Server", "Shutting down")

	// Hijacked connections are not tracked by http.Server.
	s.sockets.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

func (s *Server) notify(state string) {
	if !s.cfg.SystemdNotify {
		return
	}
	sent, err := sdNotify(false, state)
	if err != nil {
		logging.Warn("Server", "Failed to notify service manager: %v", err)
		return
	}
	if sent {
		logging.Debug("Server", "Notified service manager: %s", state)
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "healthy", Sessions: s.sessions.Len()})
}
