package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sisedoc/document-tracking/pkg/logger"
)

func readPush(t *testing.T, conn *websocket.Conn) PushMessage {
	t.Helper()
	var msg PushMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, p, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read websocket message: %v", err)
	}
	if err := json.Unmarshal(p, &msg); err != nil {
		t.Fatalf("failed to unmarshal push message: %v", err)
	}
	return msg
}

func TestHubPushesRefetchToUserSockets(t *testing.T) {
	hub := NewHub(logger.L())
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
		ServeWs(hub, w, r, userID)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	// user 1 opens two tabs, user 2 one
	conn1a, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=1", nil)
	if err != nil {
		t.Fatalf("client 1a failed to connect: %v", err)
	}
	defer conn1a.Close()

	conn1b, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=1", nil)
	if err != nil {
		t.Fatalf("client 1b failed to connect: %v", err)
	}
	defer conn1b.Close()

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=2", nil)
	if err != nil {
		t.Fatalf("client 2 failed to connect: %v", err)
	}
	defer conn2.Close()

	// registration races the push otherwise
	time.Sleep(100 * time.Millisecond)

	hub.NotifyUser(1)

	msg := readPush(t, conn1a)
	if msg.Kind != "refetch" {
		t.Fatalf("expected refetch signal, got %q", msg.Kind)
	}
	msg = readPush(t, conn1b)
	if msg.Kind != "refetch" {
		t.Fatalf("expected refetch on second tab, got %q", msg.Kind)
	}

	// user 2 must not receive anything
	conn2.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := conn2.ReadMessage(); err == nil {
		t.Fatal("user 2 received a push meant for user 1")
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub(logger.L())
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, 7)
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws", nil)
	if err != nil {
		t.Fatalf("client failed to connect: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	conn.Close()
	time.Sleep(100 * time.Millisecond)

	// pushing after disconnect must not panic or block
	hub.NotifyUser(7)
	time.Sleep(100 * time.Millisecond)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.rooms[7]) != 0 {
		t.Fatalf("expected user room to be cleaned up, %d clients remain", len(hub.rooms[7]))
	}
}
