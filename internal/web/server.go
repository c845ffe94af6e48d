// Package web provides the astrolog HTTP server: a JSON API over the app
// commands and a Server-Sent Events stream of state changes.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"astrolog/internal/app"
)

// Server is the astrolog HTTP server.
type Server struct {
	a    *app.App
	srv  *http.Server
	port int
	hub  *sseHub

	unsubscribe func()
	stopOnce    sync.Once
}

// New creates a new Server bound to the given App and starts relaying app
// events to SSE clients.
func New(a *app.App) *Server {
	s := &Server{a: a, hub: newSSEHub()}
	s.unsubscribe = a.Subscribe(s.relay)
	go s.hub.run()
	return s
}

// relay forwards an app event to every SSE client.
func (s *Server) relay(event string, payload any) {
	var data any
	switch event {
	case app.EventCloseLock:
		data = map[string]any{"close_lock": payload}
	default:
		data = map[string]any{"collection": payload}
	}
	b, err := json.Marshal(data)
	if err != nil {
		b = []byte("{}")
	}
	s.hub.emit(event, string(b))
}

// Port returns the port the server is listening on (0 if not started).
func (s *Server) Port() int { return s.port }

// URL returns the base URL (e.g., "http://127.0.0.1:8743").
func (s *Server) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.port)
}

// Handler returns the routed handler wrapped in access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return s.logRequests(mux)
}

// Start binds to the first free port on the loopback interface starting at
// port and serves in a background goroutine. Returns the URL.
func (s *Server) Start(ctx context.Context, port int) (string, error) {
	ln, err := freePort(port)
	if err != nil {
		return "", fmt.Errorf("web: start: find port: %w", err)
	}
	s.port = ln.Addr().(*net.TCPAddr).Port

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		// WriteTimeout intentionally 0: SSE connections must not time out.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.a.Logs().Web.Error("web: serve: %v", err)
		}
	}()

	url := s.URL()
	s.a.Logs().Web.Info("web: listening on %s", url)
	return url, nil
}

// Stop gracefully shuts down the server. While the app's close lock is held
// it refuses with app.ErrCloseLocked and keeps serving.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.a.RequestClose(); err != nil {
		return fmt.Errorf("web: stop: %w", err)
	}
	return s.shutdown(ctx)
}

// ForceStop shuts down the server regardless of the close lock.
func (s *Server) ForceStop(ctx context.Context) error {
	return s.shutdown(ctx)
}

func (s *Server) shutdown(ctx context.Context) error {
	// Ending the hub first closes every SSE stream, which would otherwise
	// hold Shutdown until ctx expires.
	s.stopOnce.Do(func() {
		s.unsubscribe()
		close(s.hub.quit)
	})
	var err error
	if s.srv != nil {
		err = s.srv.Shutdown(ctx)
	}
	if err != nil {
		return fmt.Errorf("web: stop: %w", err)
	}
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// SSE
	mux.HandleFunc("GET /events", s.handleSSE)

	// State
	mux.HandleFunc("GET /api/view", s.handleGetView)
	mux.HandleFunc("PUT /api/preferences", s.handleSavePreferences)
	mux.HandleFunc("PUT /api/state", s.handleSaveState)
	mux.HandleFunc("GET /api/integrity", s.handleIntegrity)

	// Collections
	mux.HandleFunc("POST /api/images", s.handleAddImage)
	mux.HandleFunc("POST /api/equipment/{kind}", s.handleAddEquipment)
	mux.HandleFunc("POST /api/sessions/{id}/rename", s.handleRenameSession)

	// OS integration
	mux.HandleFunc("POST /api/open", s.handleOpen)
	mux.HandleFunc("POST /api/close-lock", s.handleAddCloseLock)
	mux.HandleFunc("DELETE /api/close-lock", s.handleRemoveCloseLock)

	// Backups
	mux.HandleFunc("GET /api/backups", s.handleListBackups)
	mux.HandleFunc("POST /api/backups", s.handleCreateBackup)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.handleRestoreBackup)
}

// freePort finds the first available TCP port on 127.0.0.1 starting from
// start and returns the bound listener. A start of 0 lets the OS choose.
func freePort(start int) (net.Listener, error) {
	if start == 0 {
		return net.Listen("tcp", "127.0.0.1:0")
	}
	for p := start; p < start+100; p++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", p))
		if err == nil {
			return ln, nil
		}
	}
	return nil, fmt.Errorf("web: freePort: no free port found in range %d-%d", start, start+100)
}
