package engine

import (
	"encoding/json"
	"log"

	"github.com/Drilmo/streamq/internal/bus"
)

// BroadcastStates publishes queue snapshots on the state topic. With an id
// it publishes that one queue; with an empty id it publishes every default
// queue, the slot overlay widgets bind to unless configured otherwise.
func (e *Engine) BroadcastStates(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.broadcastStates(id)
}

// broadcastStates is the locked core of BroadcastStates, also called as the
// final step of every mutation so persisted and broadcast state line up.
func (e *Engine) broadcastStates(id string) {
	for _, q := range e.queues {
		if id != "" && q.ID != id {
			continue
		}
		if id == "" && !q.IsDefault {
			continue
		}
		payload, err := json.Marshal(q.Snapshot())
		if err != nil {
			log.Printf("encode queue state queue=%s: %v", q.ID, err)
			continue
		}
		e.bus.Publish(bus.TopicQueueState, payload)
	}
}
