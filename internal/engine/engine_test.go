package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/Drilmo/streamq/internal/bus"
	"github.com/Drilmo/streamq/internal/models"
	"github.com/Drilmo/streamq/internal/store/memory"
)

// recordingBus records publishes synchronously and lets tests deliver
// inbound messages to subscribers on demand.
type recordingBus struct {
	mu        sync.Mutex
	published []publishedMessage
	handlers  map[string][]bus.Handler
}

type publishedMessage struct {
	topic   string
	payload []byte
}

func newRecordingBus() *recordingBus {
	return &recordingBus{handlers: make(map[string][]bus.Handler)}
}

func (b *recordingBus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, publishedMessage{topic: topic, payload: payload})
}

func (b *recordingBus) Subscribe(topic string, handler bus.Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	index := len(b.handlers[topic]) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.handlers[topic][index] = nil
	}
}

// deliver feeds an inbound message to current subscribers, synchronously.
func (b *recordingBus) deliver(topic string, payload []byte) {
	b.mu.Lock()
	handlers := append([]bus.Handler(nil), b.handlers[topic]...)
	b.mu.Unlock()
	for _, handler := range handlers {
		if handler != nil {
			handler(payload)
		}
	}
}

func (b *recordingBus) stateUpdates() []publishedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	var updates []publishedMessage
	for _, msg := range b.published {
		if msg.topic == bus.TopicQueueState {
			updates = append(updates, msg)
		}
	}
	return updates
}

func (b *recordingBus) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

func newTestEngine(t *testing.T, premium bool) (*Engine, *recordingBus) {
	t.Helper()
	b := newRecordingBus()
	eng := New(memory.NewStore(), b, StaticOracle(premium), Options{MaxQueues: 2})
	if err := eng.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	b.reset()
	return eng, b
}

func testUser(id string) *models.User {
	return &models.User{ID: id, Login: "user_" + id, DisplayName: "User " + id}
}

func defaultQueueID(t *testing.T, eng *Engine) string {
	t.Helper()
	for _, q := range eng.Queues() {
		if q.IsDefault {
			return q.ID
		}
	}
	t.Fatal("no default queue")
	return ""
}

func assertDisjoint(t *testing.T, eng *Engine, queueID string) {
	t.Helper()
	q := eng.Queue(queueID)
	if q == nil {
		t.Fatalf("queue %s not found", queueID)
	}
	seen := make(map[string]string)
	for _, entry := range q.Entries {
		seen[entry.User.ID] = "queue"
	}
	for _, entry := range q.InProgress {
		if where, ok := seen[entry.User.ID]; ok {
			t.Fatalf("user %s present in both %s and inProgress", entry.User.ID, where)
		}
	}
}
