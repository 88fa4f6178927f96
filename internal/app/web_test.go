// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/relabs-tech/capture_locator/internal/gps"
	"github.com/relabs-tech/capture_locator/internal/metrics"
	"github.com/relabs-tech/capture_locator/internal/workflow"
)

type fakeGPS struct {
	pos   gps.Position
	stats gps.Stats
}

func (f fakeGPS) Snapshot() gps.Position { return f.pos }
func (f fakeGPS) Stats() gps.Stats       { return f.stats }

func newTestWeb(t *testing.T) (*WebServer, *httptest.Server, chan workflow.Event) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	src := fakeGPS{
		pos:   gps.Position{Valid: true, Latitude: 51.5, Longitude: -0.12, ModuleDetected: true, Satellites: 8},
		stats: gps.Stats{Lines: 42, RMC: 10},
	}
	events := make(chan workflow.Event, 4)
	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	s := NewWebServer(src, reg, events, done)
	srv := httptest.NewServer(s.Handler(""))
	t.Cleanup(srv.Close)
	return s, srv, events
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestWebPositionAndCaptures(t *testing.T) {
	s, srv, _ := newTestWeb(t)

	var pos GPSMessage
	getJSON(t, srv.URL+"/api/position", &pos)
	if !pos.Valid || pos.Satellites != 8 || pos.Stats.Lines != 42 {
		t.Fatalf("unexpected position %+v", pos)
	}

	var caps CapturesMessage
	getJSON(t, srv.URL+"/api/captures", &caps)
	if caps.State != "waiting" {
		t.Fatalf("expected waiting before any scan, got %+v", caps)
	}

	s.Results(sampleResults(), true)
	getJSON(t, srv.URL+"/api/captures", &caps)
	if caps.State != "results" || !caps.Partial || len(caps.Results) != 2 {
		t.Fatalf("unexpected captures %+v", caps)
	}
	if caps.Results[0].Name != "gate" || caps.Results[0].Distance != "111m" || caps.Results[1].Index != 1 {
		t.Fatalf("unexpected result views %+v", caps.Results)
	}
}

func TestWebMetricsEndpoint(t *testing.T) {
	_, srv, _ := newTestWeb(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "locator_scans_total") {
		t.Fatalf("expected locator collectors in /metrics output")
	}
}

func TestWebSocketPushesAndAcceptsCommands(t *testing.T) {
	s, srv, events := newTestWeb(t)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first WSResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial state: %v", err)
	}
	if first.Type != "captures" || first.Captures.State != "waiting" {
		t.Fatalf("unexpected initial message %+v", first)
	}

	s.Results(sampleResults(), false)
	var pushed WSResponse
	if err := conn.ReadJSON(&pushed); err != nil {
		t.Fatalf("read push: %v", err)
	}
	if pushed.Captures == nil || len(pushed.Captures.Results) != 2 {
		t.Fatalf("unexpected push %+v", pushed)
	}

	if err := conn.WriteJSON(WSMessage{Action: "select", Index: 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case ev := <-events:
		if ev.Kind != workflow.EventSelect || ev.Index != 1 {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("command was not forwarded")
	}

	if err := conn.WriteJSON(WSMessage{Action: "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply WSResponse
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if reply.Type != "error" {
		t.Fatalf("expected error reply, got %+v", reply)
	}
}

func TestWebWaitingPushedOnlyOnChange(t *testing.T) {
	s, _, _ := newTestWeb(t)

	s.Waiting(gps.Position{})
	s.Waiting(gps.Position{})
	s.mu.RLock()
	status := s.captures.Status
	s.mu.RUnlock()
	if status != "No GPS module detected" {
		t.Fatalf("unexpected status %q", status)
	}
}
