package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"coffee-dashboard/internal/state"
	"coffee-dashboard/internal/types"
)

func dialTestServer(t *testing.T) *gws.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(WSHandler))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial WebSocket server: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *gws.Conn) types.WSMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg types.WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}
	return msg
}

func TestWSHandlerSendsInitialState(t *testing.T) {
	state.SetDatasetState("loaded", "Imported 5 sales", 5)

	conn := dialTestServer(t)
	msg := readMessage(t, conn)

	if msg.Type != "dataset" {
		t.Errorf("Expected message type 'dataset', got '%s'", msg.Type)
	}

	if msg.Dataset == nil {
		t.Fatal("Expected dataset payload")
	}

	if msg.Dataset.Rows != 5 {
		t.Errorf("Expected 5 rows, got %d", msg.Dataset.Rows)
	}
}

func TestWSHandlerRefreshAction(t *testing.T) {
	state.SetDatasetState("loaded", "Imported 7 sales", 7)

	conn := dialTestServer(t)
	readMessage(t, conn) // initial state

	if err := conn.WriteJSON(types.WSClientMessage{Action: "refresh"}); err != nil {
		t.Fatalf("Failed to send refresh action: %v", err)
	}

	msg := readMessage(t, conn)
	if msg.Type != "dataset" || msg.Dataset == nil || msg.Dataset.Rows != 7 {
		t.Errorf("Unexpected refresh response: %+v", msg)
	}
}

func TestBroadcastDatasetState(t *testing.T) {
	state.SetDatasetState("loaded", "Imported 9 sales", 9)

	conn := dialTestServer(t)
	readMessage(t, conn) // initial state

	state.SetDatasetState("loaded", "Imported 12 sales", 12)
	BroadcastDatasetState()

	msg := readMessage(t, conn)
	if msg.Dataset == nil || msg.Dataset.Rows != 12 {
		t.Errorf("Unexpected broadcast message: %+v", msg)
	}
}
