// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/capture_locator/internal/capture"
	"github.com/relabs-tech/capture_locator/internal/gps"
	"github.com/relabs-tech/capture_locator/internal/workflow"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WSMessage is a command sent by a browser over /ws.
type WSMessage struct {
	Action string `json:"action"` // refresh, select, about, exit
	Index  int    `json:"index,omitempty"`
}

// WSResponse is pushed to every browser on each workflow change.
type WSResponse struct {
	Type     string           `json:"type"` // captures, about, open
	Captures *CapturesMessage `json:"captures,omitempty"`
	Open     *OpenMessage     `json:"open,omitempty"`
	Message  string           `json:"message,omitempty"`
}

type wsClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsClient) send(v WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	return c.conn.WriteJSON(v)
}

// WebServer serves the locator state over HTTP and pushes changes to
// websocket clients. It is also a workflow.Presenter and an event source.
type WebServer struct {
	gps      gpsSource
	gatherer prometheus.Gatherer
	events   chan<- workflow.Event
	done     <-chan struct{}

	mu       sync.RWMutex
	captures CapturesMessage

	clientsMu sync.Mutex
	clients   map[*wsClient]struct{}
}

// NewWebServer builds a server reading the position from src. Browser
// commands are sent on events until done is closed.
func NewWebServer(src gpsSource, gatherer prometheus.Gatherer, events chan<- workflow.Event, done <-chan struct{}) *WebServer {
	return &WebServer{
		gps:      src,
		gatherer: gatherer,
		events:   events,
		done:     done,
		captures: CapturesMessage{State: "waiting"},
		clients:  make(map[*wsClient]struct{}),
	}
}

// Handler returns the HTTP routes. Static files are served from staticDir
// when it is not empty.
func (s *WebServer) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/position", s.handlePosition)
	mux.HandleFunc("/api/captures", s.handleCaptures)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// ListenAndServe serves on addr until ctx is done.
func (s *WebServer) ListenAndServe(ctx context.Context, addr, staticDir string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(staticDir)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		s.closeClients()
	}()

	log.Printf("web: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (s *WebServer) handlePosition(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, GPSMessage{Position: s.gps.Snapshot(), Stats: s.gps.Stats()})
}

func (s *WebServer) handleCaptures(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	msg := s.captures
	s.mu.RUnlock()
	writeJSON(w, msg)
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}
	client := &wsClient{conn: conn}

	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, client)
		s.clientsMu.Unlock()
		conn.Close()
	}()

	s.mu.RLock()
	current := s.captures
	s.mu.RUnlock()
	if err := client.send(WSResponse{Type: "captures", Captures: &current}); err != nil {
		return
	}

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("web: websocket read error: %v", err)
			}
			return
		}

		ev, ok := wsEvent(msg)
		if !ok {
			client.send(WSResponse{Type: "error", Message: "unknown action: " + msg.Action})
			continue
		}
		select {
		case s.events <- ev:
		case <-s.done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func wsEvent(msg WSMessage) (workflow.Event, bool) {
	switch msg.Action {
	case "refresh":
		return workflow.Event{Kind: workflow.EventRefresh}, true
	case "select":
		return workflow.Event{Kind: workflow.EventSelect, Index: msg.Index}, true
	case "about":
		return workflow.Event{Kind: workflow.EventAbout}, true
	case "exit":
		return workflow.Event{Kind: workflow.EventExit}, true
	default:
		return workflow.Event{}, false
	}
}

func (s *WebServer) broadcast(v WSResponse) {
	s.clientsMu.Lock()
	clients := make([]*wsClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clientsMu.Unlock()

	for _, c := range clients {
		if err := c.send(v); err != nil {
			log.Printf("web: websocket write error: %v", err)
			c.conn.Close()
		}
	}
}

func (s *WebServer) closeClients() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		c.conn.Close()
	}
}

func (s *WebServer) setCaptures(msg CapturesMessage) {
	s.mu.Lock()
	// Waiting is reported every poll; push it only when the status moves.
	changed := msg.State != "waiting" || s.captures.State != "waiting" || s.captures.Status != msg.Status
	s.captures = msg
	s.mu.Unlock()
	if changed {
		s.broadcast(WSResponse{Type: "captures", Captures: &msg})
	}
}

func (s *WebServer) Waiting(pos gps.Position) {
	s.setCaptures(CapturesMessage{State: "waiting", Status: waitingStatus(pos)})
}

func (s *WebServer) Results(results []capture.Candidate, partial bool) {
	s.setCaptures(CapturesMessage{State: "results", Partial: partial, Results: resultViews(results)})
}

func (s *WebServer) NoResults(partial bool) {
	s.setCaptures(CapturesMessage{State: "no_results", Partial: partial})
}

func (s *WebServer) Failed(err error) {
	s.setCaptures(CapturesMessage{State: "failed", Error: err.Error()})
}

func (s *WebServer) About() {
	s.broadcast(WSResponse{Type: "about", Message: aboutText})
}

func (s *WebServer) Open(c capture.Candidate) {
	s.broadcast(WSResponse{Type: "open", Open: &OpenMessage{Name: c.Name, Path: c.Path, App: c.App}})
}
