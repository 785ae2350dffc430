package engine

import (
	"context"

	"github.com/Drilmo/streamq/internal/models"
)

// AddUserToQueue appends user to the tail of the waiting list. Returns nil
// with no side effect when the queue is unknown or disabled, the queue is at
// capacity, or the user already occupies either list.
func (e *Engine) AddUserToQueue(ctx context.Context, queueID string, user *models.User, note string) *models.QueueEntry {
	if user == nil || user.ID == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(queueID)
	if q == nil || !q.Enabled {
		return nil
	}
	if q.MaxEntries > 0 && len(q.Entries) >= q.MaxEntries {
		return nil
	}
	if userLocation(q, user.ID) != models.LocationNone {
		return nil
	}

	entry := &models.QueueEntry{
		ID:       e.newID(),
		User:     user,
		JoinedAt: e.now(),
		Note:     note,
	}
	q.Entries = append(q.Entries, entry)
	e.saveData(ctx)
	e.broadcastStates(q.ID)
	return entry
}

// AddUserToInProgress puts user directly into the in-progress set. A waiting
// entry for the same user is absorbed first, keeping its join timestamp; the
// whole operation broadcasts once. Returns nil when the queue is unknown,
// in-progress handling is disabled, or the user is already in progress.
func (e *Engine) AddUserToInProgress(ctx context.Context, queueID string, user *models.User, note string) *models.QueueEntry {
	if user == nil || user.ID == "" {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(queueID)
	if q == nil || !q.InProgressEnabled {
		return nil
	}
	for _, entry := range q.InProgress {
		if entry.User != nil && entry.User.ID == user.ID {
			return nil
		}
	}

	entry := removeFromList(&q.Entries, user.ID)
	if entry == nil {
		entry = &models.QueueEntry{
			ID:       e.newID(),
			User:     user,
			JoinedAt: e.now(),
		}
	}
	if note != "" {
		entry.Note = note
	}
	q.InProgress = append(q.InProgress, entry)
	e.saveData(ctx)
	e.broadcastStates(q.ID)
	return entry
}

// RemoveUserFromQueue removes the user's waiting entry and returns it, or
// nil when the queue or the entry is unknown.
func (e *Engine) RemoveUserFromQueue(ctx context.Context, queueID, userID string) *models.QueueEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeUser(ctx, queueID, userID, false)
}

// RemoveUserFromInProgress removes the user's in-progress entry and returns
// it, or nil when the queue or the entry is unknown.
func (e *Engine) RemoveUserFromInProgress(ctx context.Context, queueID, userID string) *models.QueueEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.removeUser(ctx, queueID, userID, true)
}

func (e *Engine) removeUser(ctx context.Context, queueID, userID string, inProgress bool) *models.QueueEntry {
	q := e.findQueue(queueID)
	if q == nil {
		return nil
	}
	list := &q.Entries
	if inProgress {
		list = &q.InProgress
	}
	entry := removeFromList(list, userID)
	if entry == nil {
		return nil
	}
	e.saveData(ctx)
	e.broadcastStates(q.ID)
	return entry
}

// ClearQueue empties the waiting list unconditionally.
func (e *Engine) ClearQueue(ctx context.Context, queueID string) {
	e.clearList(ctx, queueID, false)
}

// ClearInProgress empties the in-progress set unconditionally.
func (e *Engine) ClearInProgress(ctx context.Context, queueID string) {
	e.clearList(ctx, queueID, true)
}

func (e *Engine) clearList(ctx context.Context, queueID string, inProgress bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(queueID)
	if q == nil {
		return
	}
	if inProgress {
		q.InProgress = []*models.QueueEntry{}
	} else {
		q.Entries = []*models.QueueEntry{}
	}
	e.saveData(ctx)
	e.broadcastStates(q.ID)
}

// GetUserPositionInQueue returns the 1-indexed position of userID in the
// waiting list, or -1 when the queue or the user is unknown.
func (e *Engine) GetUserPositionInQueue(queueID, userID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(queueID)
	if q == nil {
		return -1
	}
	for i, entry := range q.Entries {
		if entry.User != nil && entry.User.ID == userID {
			return i + 1
		}
	}
	return -1
}

// GetUserLocation reports which list holds userID. Pure query.
func (e *Engine) GetUserLocation(queueID, userID string) models.Location {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(queueID)
	if q == nil {
		return models.LocationNone
	}
	return userLocation(q, userID)
}

// PauseQueue marks the queue paused for overlay display.
func (e *Engine) PauseQueue(ctx context.Context, queueID string) {
	e.setFlag(ctx, queueID, func(q *models.Queue) { q.Paused = true })
}

// ResumeQueue clears the paused flag.
func (e *Engine) ResumeQueue(ctx context.Context, queueID string) {
	e.setFlag(ctx, queueID, func(q *models.Queue) { q.Paused = false })
}

// SetQueueEnabled toggles whether viewers may join.
func (e *Engine) SetQueueEnabled(ctx context.Context, queueID string, enabled bool) {
	e.setFlag(ctx, queueID, func(q *models.Queue) { q.Enabled = enabled })
}

func (e *Engine) setFlag(ctx context.Context, queueID string, apply func(*models.Queue)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.findQueue(queueID)
	if q == nil {
		return
	}
	apply(q)
	e.saveData(ctx)
	e.broadcastStates(q.ID)
}
