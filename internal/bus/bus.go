package bus

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Well-known topics shared by the engine and the overlay endpoint.
const (
	// TopicQueueState carries one queue snapshot per message.
	TopicQueueState = "queue-state-update"
	// TopicRequestState asks the engine to re-publish current state,
	// payload {"id"?}. The answer arrives on TopicQueueState.
	TopicRequestState = "request-current-queue-state"
)

// Handler consumes one published payload. Handlers run on the subscriber's
// own goroutine, never on the publisher's.
type Handler func(payload []byte)

// Bus is a best-effort broadcast channel. Publish never blocks and is not
// acknowledged; delivery order is only guaranteed per subscriber per topic.
type Bus interface {
	Publish(topic string, payload []byte)
	Subscribe(topic string, handler Handler) (unsubscribe func())
}

type subscriber struct {
	send chan []byte
}

// MemoryBus is the in-process Bus implementation. Each subscriber owns a
// buffered channel drained by a dedicated goroutine; a full buffer drops
// the message rather than blocking the publisher.
type MemoryBus struct {
	mu     sync.RWMutex
	topics map[string]map[string]*subscriber
	buffer int
}

func New() *MemoryBus {
	return &MemoryBus{topics: make(map[string]map[string]*subscriber), buffer: 16}
}

func (b *MemoryBus) Publish(topic string, payload []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, sub := range b.topics[topic] {
		select {
		case sub.send <- payload:
		default:
			log.Printf("bus drop topic=%s subscriber=%s", topic, id)
		}
	}
}

func (b *MemoryBus) Subscribe(topic string, handler Handler) func() {
	sub := &subscriber{send: make(chan []byte, b.buffer)}
	id := uuid.NewString()

	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[string]*subscriber)
	}
	b.topics[topic][id] = sub
	b.mu.Unlock()

	go func() {
		for payload := range sub.send {
			handler(payload)
		}
	}()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs, ok := b.topics[topic]
		if !ok {
			return
		}
		if _, ok := subs[id]; !ok {
			return
		}
		delete(subs, id)
		if len(subs) == 0 {
			delete(b.topics, topic)
		}
		close(sub.send)
	}
}
