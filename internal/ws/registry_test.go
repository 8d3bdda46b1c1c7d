package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// dialPair upgrades a real websocket connection against a test server
// and registers the server side for the given user.
func dialPair(t *testing.T, registry *Registry, userID string) (*websocket.Conn, *Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	registered := make(chan *Conn, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		registered <- registry.Add(userID, socket)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-registered:
		return client, conn
	case <-time.After(2 * time.Second):
		t.Fatal("server side never registered")
		return nil, nil
	}
}

func TestRegistry_SendDeliversToLiveConnection(t *testing.T) {
	registry := NewRegistry()
	client, _ := dialPair(t, registry, "user-1")

	if got := registry.ActiveConnections("user-1"); got != 1 {
		t.Fatalf("expected 1 connection, got %d", got)
	}

	if !registry.Send("user-1", map[string]any{"type": "order_update"}) {
		t.Fatal("expected Send to report delivery")
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	var payload map[string]any
	if err := client.ReadJSON(&payload); err != nil {
		t.Fatalf("client read failed: %v", err)
	}
	if payload["type"] != "order_update" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestRegistry_SendToUnknownUserReportsNoDelivery(t *testing.T) {
	registry := NewRegistry()
	if registry.Send("nobody", "hello") {
		t.Error("expected no delivery for an unknown user")
	}
}

func TestRegistry_RemoveDropsConnection(t *testing.T) {
	registry := NewRegistry()
	_, conn := dialPair(t, registry, "user-1")

	registry.Remove("user-1", conn)

	if got := registry.ActiveConnections("user-1"); got != 0 {
		t.Errorf("expected 0 connections after removal, got %d", got)
	}
	if registry.Send("user-1", "hello") {
		t.Error("expected no delivery after removal")
	}
}
