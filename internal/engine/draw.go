package engine

import (
	"context"
	"math/rand"

	"github.com/Drilmo/streamq/internal/models"
)

// DrawUserFromQueue selects one waiting entry per drawType, removes it from
// the waiting list, and optionally promotes it into the in-progress set.
//
//   - DrawFirst picks the head of the waiting list (pure FIFO).
//   - DrawUser picks the first entry matching userID; userID is required.
//   - DrawRandom picks a uniform index over the current list length.
//
// The removal and the promotion each persist and broadcast, so observers
// coalescing by queue id may see two events for one draw. The drawn entry is
// returned even when promotion is refused by the duplicate check.
func (e *Engine) DrawUserFromQueue(ctx context.Context, queueID, drawType, userID string, addToInProgress bool) *models.QueueEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(queueID)
	if q == nil || len(q.Entries) == 0 {
		return nil
	}

	index := -1
	switch drawType {
	case models.DrawFirst:
		index = 0
	case models.DrawUser:
		if userID == "" {
			return nil
		}
		for i, entry := range q.Entries {
			if entry.User != nil && entry.User.ID == userID {
				index = i
				break
			}
		}
	case models.DrawRandom:
		index = rand.Intn(len(q.Entries))
	}
	if index < 0 {
		return nil
	}

	entry := q.Entries[index]
	q.Entries = append(q.Entries[:index], q.Entries[index+1:]...)
	e.saveData(ctx)
	e.broadcastStates(q.ID)

	if addToInProgress {
		e.promote(ctx, q, entry)
	}
	return entry
}

// promote re-links a drawn entry into the in-progress set, note and join
// timestamp intact. The lifecycle duplicate check still applies: an entry
// whose user is already in progress is dropped silently. Callers hold e.mu.
func (e *Engine) promote(ctx context.Context, q *models.Queue, entry *models.QueueEntry) {
	if !q.InProgressEnabled || entry.User == nil {
		return
	}
	for _, existing := range q.InProgress {
		if existing.User != nil && existing.User.ID == entry.User.ID {
			return
		}
	}
	q.InProgress = append(q.InProgress, entry)
	e.saveData(ctx)
	e.broadcastStates(q.ID)
}
