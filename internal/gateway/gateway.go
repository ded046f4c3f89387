package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"dojo/internal/orchestrator"
	"dojo/pkg/logging"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// maxMessageSize bounds a single inbound frame.
const maxMessageSize = 64 * 1024

// Lifecycle is the part of the lifecycle manager the gateway drives.
type Lifecycle interface {
	Start(ctx context.Context, client orchestrator.Client, connectionID, scenarioID string) error
	Input(connectionID string, data []byte) error
	Resize(connectionID string, cols, rows int)
	Disconnect(connectionID string)
}

// Config holds the gateway's connection settings.
type Config struct {
	// AllowedOrigin is matched against the Origin header. "*" allows any.
	AllowedOrigin string
	WriteWait     time.Duration
	PongWait      time.Duration
	PingInterval  time.Duration

	// NewID assigns connection identities. Defaults to random UUIDs.
	NewID func() string
}

// Gateway upgrades HTTP requests to WebSocket connections and binds each one
// to a session.
type Gateway struct {
	lifecycle Lifecycle
	cfg       Config
	upgrader  websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*conn
}

// New creates a gateway that drives lifecycle.
func New(lifecycle Lifecycle, cfg Config) *Gateway {
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}

	g := &Gateway{
		lifecycle: lifecycle,
		cfg:       cfg,
		conns:     make(map[string]*conn),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 32 * 1024,
		CheckOrigin:     g.checkOrigin,
	}
	return g
}

// ServeHTTP handles GET /ws?scenarioId=<id>.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		logging.Debug("Gateway", "Upgrade from %s rejected: %v", r.RemoteAddr, err)
		return
	}

	connectionID := g.cfg.NewID()
	scenarioID := r.URL.Query().Get("scenarioId")
	c := newConn(ws, g.cfg.WriteWait)
	short := logging.TruncateSessionID(connectionID)

	g.mu.Lock()
	g.conns[connectionID] = c
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		delete(g.conns, connectionID)
		g.mu.Unlock()
	}()

	logging.Info("Gateway", "Client connected: %s (scenario %q)", short, scenarioID)

	// Cancelled when the read loop ends so an in-flight Start is aborted.
	ctx, cancel := context.WithCancel(context.Background())
	go g.start(ctx, c, connectionID, scenarioID)

	g.readLoop(ws, c, connectionID)

	cancel()
	g.lifecycle.Disconnect(connectionID)
	_ = c.Close()
	logging.Info("Gateway", "Client disconnected: %s", short)
}

// Active returns the number of open connections.
func (g *Gateway) Active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}

// CloseAll closes every open connection. Each read loop then exits and
// disconnects its session.
func (g *Gateway) CloseAll() {
	g.mu.Lock()
	conns := make([]*conn, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

func (g *Gateway) start(ctx context.Context, c *conn, connectionID, scenarioID string) {
	err := g.lifecycle.Start(ctx, c, connectionID, scenarioID)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	logging.Warn("Gateway", "Session %s rejected: %v", logging.TruncateSessionID(connectionID), err)
	for _, line := range orchestrator.Diagnostic(err) {
		if sendErr := c.SendOutput([]byte(line)); sendErr != nil {
			break
		}
	}
	_ = c.Close()
}

func (g *Gateway) readLoop(ws *websocket.Conn, c *conn, connectionID string) {
	short := logging.TruncateSessionID(connectionID)

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(g.cfg.PongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(g.cfg.PongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go func() {
		ticker := time.NewTicker(g.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			case <-stopPing:
				return
			}
		}
	}()

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logging.Debug("Gateway", "Read from %s ended: %v", short, err)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			g.input(connectionID, data)
		case websocket.TextMessage:
			msg, err := DecodeControl(data)
			if err != nil {
				logging.Debug("Gateway", "Ignoring frame from %s: %v", short, err)
				continue
			}
			switch msg.Type {
			case TypeInput:
				g.input(connectionID, []byte(msg.Data))
			case TypeResize:
				g.lifecycle.Resize(connectionID, msg.Cols, msg.Rows)
			default:
				logging.Debug("Gateway", "Ignoring %q message from %s", msg.Type, short)
			}
		}
	}
}

func (g *Gateway) input(connectionID string, data []byte) {
	if err := g.lifecycle.Input(connectionID, data); err != nil {
		// Input before the container is running, or after it exited, is dropped.
		logging.Debug("Gateway", "Input from %s dropped: %v", logging.TruncateSessionID(connectionID), err)
	}
}

func (g *Gateway) checkOrigin(r *http.Request) bool {
	allowed := strings.TrimRight(g.cfg.AllowedOrigin, "/")
	if allowed == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin.
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimRight(u.Scheme+"://"+u.Host, "/"), allowed)
}
