package websocket

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"coffee-dashboard/internal/state"
	"coffee-dashboard/internal/types"
	"coffee-dashboard/pkg/config"
)

// WSHandler handles WebSocket connections
func WSHandler(w http.ResponseWriter, r *http.Request) {
	upgrader := config.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}

	client := &types.WSClient{
		ID:   uuid.NewString(),
		Conn: conn,
		Mu:   sync.Mutex{},
	}

	// Add client to global map
	config.AddWSClient(client)
	defer config.RemoveWSClient(client)

	logrus.WithField("clientId", client.ID).Info("New WebSocket client connected")

	// Send the current dataset state to the new client
	ds := state.GetDatasetState()
	client.Mu.Lock()
	client.Conn.WriteJSON(types.WSMessage{
		Type:    "dataset",
		Dataset: &ds,
	})
	client.Mu.Unlock()

	// Handle client messages
	for {
		var msg types.WSClientMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Error("WebSocket error")
			}
			break
		}

		logrus.WithFields(logrus.Fields{
			"clientId": client.ID,
			"action":   msg.Action,
		}).Info("WebSocket message received")

		switch msg.Action {
		case "refresh":
			// Re-send the current dataset state on demand
			ds := state.GetDatasetState()
			client.Mu.Lock()
			client.Conn.WriteJSON(types.WSMessage{
				Type:    "dataset",
				Dataset: &ds,
			})
			client.Mu.Unlock()
		}
	}

	logrus.WithField("clientId", client.ID).Info("WebSocket client disconnected")
}

// BroadcastToAll sends a message to all WebSocket clients
func BroadcastToAll(msg types.WSMessage) {
	clients := config.GetWSClients()

	logrus.WithFields(logrus.Fields{
		"message_type": msg.Type,
		"client_count": len(clients),
	}).Info("Broadcasting message to WebSocket clients")

	if len(clients) == 0 {
		return
	}

	for client := range clients {
		go func(c *types.WSClient) {
			c.Mu.Lock()
			defer c.Mu.Unlock()
			if err := c.Conn.WriteJSON(msg); err != nil {
				logrus.WithError(err).WithField("clientId", c.ID).Error("Failed to send WebSocket message to client")
			}
		}(client)
	}
}

// BroadcastDatasetState broadcasts the current dataset state to all clients
func BroadcastDatasetState() {
	ds := state.GetDatasetState()
	BroadcastToAll(types.WSMessage{
		Type:    "dataset",
		Dataset: &ds,
	})
}
