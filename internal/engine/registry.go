package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Drilmo/streamq/internal/bus"
	"github.com/Drilmo/streamq/internal/models"
	"github.com/Drilmo/streamq/internal/store"
)

// Initialize hydrates the queue list from the persistence adapter, repairs
// the default-queue invariant, and arms the state-request subscription.
// Exactly one default queue exists once Initialize returns.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()

	raw, ok, err := e.store.Get(ctx, store.RegistryKey)
	if err != nil {
		e.mu.Unlock()
		return fmt.Errorf("load queue registry: %w", err)
	}
	if ok && raw != "" {
		var doc models.RegistryDocument
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			e.mu.Unlock()
			return fmt.Errorf("decode queue registry: %w", err)
		}
		e.queues = doc.QueueList
	}

	for _, q := range e.queues {
		if q.OverlayParams == nil {
			q.OverlayParams = models.DefaultOverlayParams()
		} else {
			q.OverlayParams.ApplyDefaults()
		}
		if q.Entries == nil {
			q.Entries = []*models.QueueEntry{}
		}
		if q.InProgress == nil {
			q.InProgress = []*models.QueueEntry{}
		}
	}

	if !e.hasDefaultQueue() {
		// Default queues never count against the creation limit.
		e.queues = append(e.queues, e.newQueue(true))
	}
	e.saveData(ctx)
	e.mu.Unlock()

	e.armStateRequests()
	return nil
}

// CreateQueue appends a new queue and persists. Silent no-op (nil) when the
// operator is not premium and the non-default queue count already reached
// the configured maximum.
func (e *Engine) CreateQueue(ctx context.Context) *models.Queue {
	premium := e.oracle.IsPremium(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !premium && e.nonDefaultCount() >= e.maxQueues {
		return nil
	}
	q := e.newQueue(false)
	e.queues = append(e.queues, q)
	e.saveData(ctx)
	e.broadcastStates(q.ID)
	return q
}

// DeleteQueue removes the queue with the given id. No-op when absent. The
// registry applies no default-queue protection; callers guard that.
func (e *Engine) DeleteQueue(ctx context.Context, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, q := range e.queues {
		if q.ID == id {
			e.queues = append(e.queues[:i], e.queues[i+1:]...)
			e.saveData(ctx)
			return
		}
	}
}

// Queues returns a snapshot of every queue, in registry order.
func (e *Engine) Queues() []*models.Queue {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshots := make([]*models.Queue, 0, len(e.queues))
	for _, q := range e.queues {
		snapshots = append(snapshots, q.Snapshot())
	}
	return snapshots
}

// Queue returns a snapshot of one queue, or nil when unknown.
func (e *Engine) Queue(id string) *models.Queue {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(id)
	if q == nil {
		return nil
	}
	return q.Snapshot()
}

func (e *Engine) newQueue(isDefault bool) *models.Queue {
	return &models.Queue{
		ID:                e.newID(),
		Title:             "Waiting line",
		PlaceholderKey:    fmt.Sprintf("QUEUE_%d", len(e.queues)+1),
		IsDefault:         isDefault,
		Enabled:           true,
		InProgressEnabled: true,
		Entries:           []*models.QueueEntry{},
		InProgress:        []*models.QueueEntry{},
		OverlayParams:     models.DefaultOverlayParams(),
	}
}

func (e *Engine) hasDefaultQueue() bool {
	for _, q := range e.queues {
		if q.IsDefault {
			return true
		}
	}
	return false
}

func (e *Engine) nonDefaultCount() int {
	count := 0
	for _, q := range e.queues {
		if !q.IsDefault {
			count++
		}
	}
	return count
}

// saveData serializes the full queue list and overwrites the persisted
// document. Write failures are logged, never surfaced: the in-memory state
// stays authoritative for the session. Callers hold e.mu.
func (e *Engine) saveData(ctx context.Context) {
	for _, q := range e.queues {
		if !q.InProgressEnabled {
			q.InProgress = []*models.QueueEntry{}
			if q.OverlayParams != nil {
				q.OverlayParams.ShowInProgress = false
			}
		}
		if q.OverlayParams == nil {
			q.OverlayParams = models.DefaultOverlayParams()
		}
	}
	raw, err := json.Marshal(models.RegistryDocument{QueueList: e.queues})
	if err != nil {
		log.Printf("encode queue registry: %v", err)
		return
	}
	if err := e.store.Set(ctx, store.RegistryKey, string(raw)); err != nil {
		log.Printf("save queue registry: %v", err)
	}
}

// armStateRequests (re-)subscribes the engine to the state-request topic.
func (e *Engine) armStateRequests() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
	e.unsubscribe = e.bus.Subscribe(bus.TopicRequestState, func(payload []byte) {
		var req struct {
			ID string `json:"id"`
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				log.Printf("state request decode: %v", err)
				return
			}
		}
		e.BroadcastStates(req.ID)
	})
}

// Close releases the state-request subscription.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
}
