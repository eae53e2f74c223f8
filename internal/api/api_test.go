package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/wellsgz/udprtt/internal/monitor"
	"github.com/wellsgz/udprtt/internal/probe"
	"github.com/wellsgz/udprtt/internal/stats"
)

func newTestHub() *monitor.Hub {
	hub := monitor.NewHub("client", "127.0.0.1:3030", probe.Blocking, 10)
	acc := stats.NewAccumulator()
	acc.Update(5_000)
	hub.Observe(probe.Progress{Seq: 1, Total: 10, RTT: 5 * time.Microsecond, Stats: acc.Snapshot()})
	return hub
}

func TestHealth(t *testing.T) {
	s := NewServer(newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", w.Code)
	}
}

func TestGetStatus(t *testing.T) {
	s := NewServer(newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/status status = %d, want 200", w.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Role != "client" || resp.Completed != 1 || resp.Total != 10 || resp.Done {
		t.Errorf("status = %+v, want client 1/10 not done", resp)
	}
}

func TestGetStats(t *testing.T) {
	s := NewServer(newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	s.Router().ServeHTTP(w, req)

	var got monitor.Status
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Stats.Mean != 5 || got.Stats.Count != 1 {
		t.Errorf("stats = %+v, want mean 5 us count 1", got.Stats)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "udprtt_round_trips_total") {
		t.Error("GET /metrics missing udprtt_round_trips_total")
	}
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("OPTIONS status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != http.MethodGet {
		t.Errorf("Access-Control-Allow-Methods = %q, want GET", got)
	}
}

func TestCORSSimpleGet(t *testing.T) {
	s := NewServer(newTestHub())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	s.Router().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Errorf("Access-Control-Allow-Methods = %q, want empty outside preflight", got)
	}
}

func TestRecoveryReturnsJSON500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if body["error"] != "internal error" {
		t.Errorf("error = %q, want internal error", body["error"])
	}
}

func TestWebSocketStreamsStatus(t *testing.T) {
	hub := newTestHub()
	s := NewServer(hub)
	if err := s.StartAsync("127.0.0.1:0"); err != nil {
		t.Fatalf("StartAsync() error = %v", err)
	}
	defer s.Shutdown(time.Second)

	url := "ws://" + s.Addr().String() + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first struct {
		Type string         `json:"type"`
		Data monitor.Status `json:"data"`
	}
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if first.Type != "status" || first.Data.Completed != 1 {
		t.Errorf("first message = %+v, want status with 1 completed", first)
	}

	hub.Observe(probe.Progress{Seq: 10, Total: 10, Stats: stats.NewAccumulator().Snapshot()})

	// the refresh ticker may interleave; read until the completed update shows up
	for {
		var msg struct {
			Data monitor.Status `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ReadJSON() error = %v", err)
		}
		if msg.Data.Completed == 10 {
			if !msg.Data.Done {
				t.Error("Done = false, want true at 10/10")
			}
			break
		}
	}
}

func TestStartAsyncBadAddress(t *testing.T) {
	s := NewServer(newTestHub())
	if err := s.StartAsync("256.0.0.1:bogus"); err == nil {
		t.Error("StartAsync() with invalid address should fail")
		s.Shutdown(time.Second)
	}
}
