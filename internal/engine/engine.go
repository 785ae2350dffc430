package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Drilmo/streamq/internal/bus"
	"github.com/Drilmo/streamq/internal/models"
	"github.com/Drilmo/streamq/internal/store"
)

// DefaultMaxQueues caps how many non-default queues a non-premium operator
// may create.
const DefaultMaxQueues = 2

// EntitlementOracle answers whether the operator is on the premium tier.
// Consulted only to gate queue creation.
type EntitlementOracle interface {
	IsPremium(ctx context.Context) bool
}

// StaticOracle is a fixed entitlement answer, typically read from config.
type StaticOracle bool

func (o StaticOracle) IsPremium(ctx context.Context) bool { return bool(o) }

type Options struct {
	MaxQueues int
}

// Engine owns the canonical queue list. It is the single mutator: every
// mutation runs to completion under one lock, persists the full document,
// then broadcasts the affected queue. Subscribers only ever see snapshots.
type Engine struct {
	mu     sync.Mutex
	store  store.Store
	bus    bus.Bus
	oracle EntitlementOracle

	maxQueues int
	queues    []*models.Queue

	unsubscribe func()

	// overridden in tests
	now   func() time.Time
	newID func() string
}

func New(st store.Store, b bus.Bus, oracle EntitlementOracle, options Options) *Engine {
	maxQueues := options.MaxQueues
	if maxQueues <= 0 {
		maxQueues = DefaultMaxQueues
	}
	return &Engine{
		store:     st,
		bus:       b,
		oracle:    oracle,
		maxQueues: maxQueues,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// findQueue returns the queue with the given id. Callers hold e.mu.
func (e *Engine) findQueue(id string) *models.Queue {
	for _, q := range e.queues {
		if q.ID == id {
			return q
		}
	}
	return nil
}

// userLocation reports which list of q holds userID. Callers hold e.mu.
func userLocation(q *models.Queue, userID string) models.Location {
	for _, entry := range q.Entries {
		if entry.User != nil && entry.User.ID == userID {
			return models.LocationQueue
		}
	}
	for _, entry := range q.InProgress {
		if entry.User != nil && entry.User.ID == userID {
			return models.LocationInProgress
		}
	}
	return models.LocationNone
}

// removeFromList removes and returns the entry of userID, preserving order.
func removeFromList(list *[]*models.QueueEntry, userID string) *models.QueueEntry {
	for i, entry := range *list {
		if entry.User != nil && entry.User.ID == userID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return entry
		}
	}
	return nil
}
