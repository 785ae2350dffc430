package overlay

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/Drilmo/streamq/internal/bus"
)

// Client is one connected overlay session. Send is drained by the session's
// writer goroutine; a full buffer drops the snapshot rather than blocking
// the engine-side fanout.
type Client struct {
	ID      string
	Send    chan []byte
	QueueID string
}

// Hub fans queue snapshots out to overlay sessions. Overlays never call the
// engine: they receive snapshots here and emit state requests back onto the
// bus.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	bus     bus.Bus
}

// Message is the inbound wire format from an overlay session.
type Message struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

const (
	ActionSubscribe    = "subscribe"
	ActionRequestState = "request_state"
)

func New(b bus.Bus) *Hub {
	return &Hub{clients: make(map[string]*Client), bus: b}
}

// Bind subscribes the hub to the queue-state topic and returns the
// unsubscribe function.
func (h *Hub) Bind() func() {
	return h.bus.Subscribe(bus.TopicQueueState, h.broadcast)
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client.ID)
	close(client.Send)
}

// SetFilter binds a client to one queue id. An empty id receives every
// published snapshot.
func (h *Hub) SetFilter(client *Client, queueID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	client.QueueID = queueID
}

// RequestState re-emits a session's state request onto the bus. The answer
// comes back through the state topic like any other snapshot.
func (h *Hub) RequestState(queueID string) {
	payload, _ := json.Marshal(Message{ID: queueID})
	h.bus.Publish(bus.TopicRequestState, payload)
}

func (h *Hub) broadcast(payload []byte) {
	queueID := extractQueueID(payload)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.QueueID != "" && client.QueueID != queueID {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			log.Printf("drop snapshot for overlay client %s", client.ID)
		}
	}
}

func extractQueueID(payload []byte) string {
	var snapshot struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return ""
	}
	return snapshot.ID
}

// ParseMessage decodes an inbound session message, rejecting unknown actions.
func ParseMessage(data []byte) (Message, bool) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, false
	}
	if msg.Action != ActionSubscribe && msg.Action != ActionRequestState {
		return Message{}, false
	}
	return msg, true
}
