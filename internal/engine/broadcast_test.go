package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Drilmo/streamq/internal/models"
)

func TestBroadcastStatesByID(t *testing.T) {
	eng, b := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()

	eng.AddUserToQueue(ctx, id, testUser("u1"), "hello")
	b.reset()

	eng.BroadcastStates(id)
	updates := b.stateUpdates()
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1", len(updates))
	}

	var snapshot models.Queue
	if err := json.Unmarshal(updates[0].payload, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.ID != id {
		t.Fatalf("snapshot id = %s, want %s", snapshot.ID, id)
	}
	if len(snapshot.Entries) != 1 || snapshot.Entries[0].User.ID != "u1" {
		t.Fatalf("snapshot entries = %+v, want u1 waiting", snapshot.Entries)
	}
	if snapshot.Entries[0].Note != "hello" {
		t.Fatalf("snapshot note = %q, want hello", snapshot.Entries[0].Note)
	}
	if snapshot.OverlayParams == nil {
		t.Fatal("snapshot missing overlay params")
	}
}

func TestBroadcastStatesUnknownID(t *testing.T) {
	eng, b := newTestEngine(t, false)
	eng.BroadcastStates("missing")
	if got := len(b.stateUpdates()); got != 0 {
		t.Fatalf("got %d updates for an unknown id, want 0", got)
	}
}

func TestBroadcastStatesEmptyIDDefaultsOnly(t *testing.T) {
	eng, b := newTestEngine(t, true)
	id := defaultQueueID(t, eng)
	for i := 0; i < 2; i++ {
		if q := eng.CreateQueue(context.Background()); q == nil {
			t.Fatal("create rejected")
		}
	}
	b.reset()

	eng.BroadcastStates("")
	updates := b.stateUpdates()
	if len(updates) != 1 {
		t.Fatalf("got %d updates, want 1 (defaults only)", len(updates))
	}
	var snapshot models.Queue
	if err := json.Unmarshal(updates[0].payload, &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.ID != id || !snapshot.IsDefault {
		t.Fatalf("snapshot = %s default=%v, want the default queue", snapshot.ID, snapshot.IsDefault)
	}
}

func TestEveryMutationBroadcastsOnce(t *testing.T) {
	eng, b := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()

	steps := []struct {
		name string
		run  func()
	}{
		{"add", func() { eng.AddUserToQueue(ctx, id, testUser("u1"), "") }},
		{"promote", func() { eng.AddUserToInProgress(ctx, id, testUser("u1"), "") }},
		{"removeInProgress", func() { eng.RemoveUserFromInProgress(ctx, id, "u1") }},
		{"addAgain", func() { eng.AddUserToQueue(ctx, id, testUser("u2"), "") }},
		{"removeQueue", func() { eng.RemoveUserFromQueue(ctx, id, "u2") }},
		{"clear", func() { eng.ClearQueue(ctx, id) }},
		{"clearInProgress", func() { eng.ClearInProgress(ctx, id) }},
		{"pause", func() { eng.PauseQueue(ctx, id) }},
		{"resume", func() { eng.ResumeQueue(ctx, id) }},
	}
	for _, step := range steps {
		b.reset()
		step.run()
		if got := len(b.stateUpdates()); got != 1 {
			t.Fatalf("step %s broadcast %d times, want 1", step.name, got)
		}
	}
}

func TestQueriesDoNotBroadcast(t *testing.T) {
	eng, b := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()

	eng.AddUserToQueue(ctx, id, testUser("u1"), "")
	b.reset()

	eng.GetUserPositionInQueue(id, "u1")
	eng.GetUserLocation(id, "u1")
	eng.Queues()
	eng.Queue(id)

	if got := len(b.stateUpdates()); got != 0 {
		t.Fatalf("pure queries broadcast %d times, want 0", got)
	}
}
