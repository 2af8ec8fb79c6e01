package events

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types pushed to the renderer
const (
	EventOrderUpdate     = "order_update"
	EventDashboardUpdate = "dashboard_update"
	EventSyncCompleted   = "sync_completed"
	EventSessionUpdate   = "session_update"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected renderer window. Writes happen after local
// mutations so the UI re-reads from the store instead of polling.
type hub struct {
	clients map[*websocket.Conn]struct{}
	mutex   sync.Mutex
}

var eventHub = hub{
	clients: make(map[*websocket.Conn]struct{}),
}

// RegisterClient adds a renderer connection to the set.
func RegisterClient(conn *websocket.Conn) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()
	eventHub.clients[conn] = struct{}{}
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()
	delete(eventHub.clients, conn)
	conn.Close()
}

// BroadcastOrderUpdate tells the renderer one order changed locally.
func BroadcastOrderUpdate(orderID string) {
	broadcast(Message{
		Event: EventOrderUpdate,
		Data:  map[string]string{"orderId": orderID},
	})
}

// BroadcastDashboardUpdate tells the renderer a restaurant's projection
// was recomputed.
func BroadcastDashboardUpdate(restaurantID string) {
	broadcast(Message{
		Event: EventDashboardUpdate,
		Data:  map[string]string{"restaurantId": restaurantID},
	})
}

// BroadcastSyncCompleted announces a finished entity-family sync.
func BroadcastSyncCompleted(family string, synced int) {
	broadcast(Message{
		Event: EventSyncCompleted,
		Data: map[string]interface{}{
			"family": family,
			"synced": synced,
		},
	})
}

// BroadcastSessionUpdate announces login/logout.
func BroadcastSessionUpdate(loggedIn bool) {
	broadcast(Message{
		Event: EventSessionUpdate,
		Data:  map[string]bool{"loggedIn": loggedIn},
	})
}

func broadcast(msg Message) {
	eventHub.mutex.Lock()
	defer eventHub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	for conn := range eventHub.clients {
		// A dead connection is cleaned up by its reader loop.
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}
