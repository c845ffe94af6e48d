package web

import (
	"fmt"
	"net/http"
	"time"
)

const pingInterval = 15 * time.Second

// sseHub manages Server-Sent Events clients.
type sseHub struct {
	subscribe   chan chan string
	unsubscribe chan chan string
	broadcast   chan string
	quit        chan struct{}
	clients     map[chan string]struct{}
	interval    time.Duration
}

// newSSEHub returns a new, uninitialised sseHub. Call run() in a goroutine.
func newSSEHub() *sseHub {
	return &sseHub{
		// Unbuffered so a handler is registered before it reports connected.
		subscribe:   make(chan chan string),
		unsubscribe: make(chan chan string, 8),
		broadcast:   make(chan string, 64),
		quit:        make(chan struct{}),
		clients:     make(map[chan string]struct{}),
		interval:    pingInterval,
	}
}

// run is the event loop for the hub. Must be called in a dedicated goroutine.
// The run goroutine is the sole owner of clients; no mutex is needed. On quit
// every client channel is closed so streaming handlers return.
func (h *sseHub) run() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case ch := <-h.subscribe:
			h.clients[ch] = struct{}{}

		case ch := <-h.unsubscribe:
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}

		case msg := <-h.broadcast:
			h.send(msg)

		case <-ticker.C:
			h.send("event: ping\ndata: {}\n\n")

		case <-h.quit:
			for ch := range h.clients {
				delete(h.clients, ch)
				close(ch)
			}
			return
		}
	}
}

// send delivers msg to every client without blocking on slow ones.
func (h *sseHub) send(msg string) {
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// emit sends a named SSE event with a JSON data payload to all connected clients.
// Uses a non-blocking send so it never blocks if the broadcast channel is full.
func (h *sseHub) emit(event, data string) {
	msg := fmt.Sprintf("event: %s\ndata: %s\n\n", event, data)
	select {
	case h.broadcast <- msg:
	default:
		// client backlog full; drop event
	}
}

// handleSSE is the HTTP handler for the /events SSE endpoint.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.jsonError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// Allow localhost browser access; no auth on this server.
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := make(chan string, 32)
	select {
	case s.hub.subscribe <- ch:
	case <-s.hub.quit:
		return
	}
	defer func() {
		select {
		case s.hub.unsubscribe <- ch:
		case <-s.hub.quit:
		}
	}()

	if _, err := fmt.Fprintf(w, "event: connected\ndata: {\"close_lock\":%t}\n\n", s.a.CloseLocked()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return
			}
			fmt.Fprint(w, msg)
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-s.hub.quit:
			return
		}
	}
}
