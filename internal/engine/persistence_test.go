package engine

import (
	"context"
	"testing"

	"github.com/Drilmo/streamq/internal/store/memory"
)

// A second engine hydrated from the same store must observe the first
// engine's final state: every mutation writes the whole document through.
func TestStateSurvivesRestart(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	first := New(st, newRecordingBus(), StaticOracle(true), Options{})
	if err := first.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	id := defaultQueueID(t, first)
	extra := first.CreateQueue(ctx)
	if extra == nil {
		t.Fatal("create rejected")
	}
	first.AddUserToQueue(ctx, id, testUser("a"), "waiting")
	first.AddUserToInProgress(ctx, id, testUser("b"), "serving")
	first.PauseQueue(ctx, extra.ID)

	second := New(st, newRecordingBus(), StaticOracle(true), Options{})
	if err := second.Initialize(ctx); err != nil {
		t.Fatalf("reload Initialize: %v", err)
	}

	if got := len(second.Queues()); got != 2 {
		t.Fatalf("got %d queues after reload, want 2", got)
	}
	q := second.Queue(id)
	if q == nil {
		t.Fatal("default queue lost across restart")
	}
	if len(q.Entries) != 1 || q.Entries[0].User.ID != "a" || q.Entries[0].Note != "waiting" {
		t.Fatalf("waiting list corrupted across restart: %+v", q.Entries)
	}
	if len(q.InProgress) != 1 || q.InProgress[0].User.ID != "b" {
		t.Fatalf("in-progress list corrupted across restart: %+v", q.InProgress)
	}
	if !second.Queue(extra.ID).Paused {
		t.Fatal("paused flag lost across restart")
	}
	if got := second.GetUserPositionInQueue(id, "a"); got != 1 {
		t.Fatalf("position after reload = %d, want 1", got)
	}
}
