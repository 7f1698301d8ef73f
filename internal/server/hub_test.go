package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/models"
)

// dialTestHub starts an httptest server around the hub and dials it
func dialTestHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to dial hub: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForViewers(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.ViewerCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ViewerCount = %d, want %d", hub.ViewerCount(), want)
}

func TestHub_BroadcastSnapshot(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialTestHub(t, hub)
	waitForViewers(t, hub, 1)

	sent := testSnapshot("Building A - Lobby", 8.4)
	hub.BroadcastSnapshot(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}

	if msg.Type != models.MessageTypeSnapshot {
		t.Errorf("Type = %q, want %q", msg.Type, models.MessageTypeSnapshot)
	}

	var received models.Snapshot
	if err := msg.UnmarshalPayload(&received); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if received.Reading.Location != "Building A - Lobby" {
		t.Errorf("Location = %q", received.Reading.Location)
	}
	if received.Classification.HealthScore != 8.4 {
		t.Errorf("HealthScore = %v, want 8.4", received.Classification.HealthScore)
	}
}

func TestHub_Heartbeat(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialTestHub(t, hub)
	waitForViewers(t, hub, 1)

	hub.Heartbeat()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg models.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read heartbeat: %v", err)
	}
	if msg.Type != models.MessageTypeHeartbeat {
		t.Errorf("Type = %q, want %q", msg.Type, models.MessageTypeHeartbeat)
	}

	var hb models.HeartbeatMessage
	if err := msg.UnmarshalPayload(&hb); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	if hb.Viewers != 1 {
		t.Errorf("Viewers = %d, want 1", hb.Viewers)
	}
}

func TestHub_ViewerDisconnect(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialTestHub(t, hub)
	waitForViewers(t, hub, 1)

	conn.Close()
	waitForViewers(t, hub, 0)
}

func TestHub_CheckOrigin(t *testing.T) {
	hub := NewHub(zerolog.Nop(), "http://dashboard.example.com")

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin header", "", true},
		{"allowed origin", "http://dashboard.example.com", true},
		{"rejected origin", "http://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := hub.checkOrigin(req); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
