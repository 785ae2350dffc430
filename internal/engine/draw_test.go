package engine

import (
	"context"
	"testing"

	"github.com/Drilmo/streamq/internal/models"
)

func seedWaiting(t *testing.T, eng *Engine, queueID string, userIDs ...string) {
	t.Helper()
	for _, userID := range userIDs {
		if entry := eng.AddUserToQueue(context.Background(), queueID, testUser(userID), ""); entry == nil {
			t.Fatalf("seed add for %s rejected", userID)
		}
	}
}

func TestDrawFirstIsFIFO(t *testing.T) {
	eng, _ := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()
	seedWaiting(t, eng, id, "a", "b", "c")

	first := eng.DrawUserFromQueue(ctx, id, models.DrawFirst, "", false)
	if first == nil || first.User.ID != "a" {
		t.Fatalf("first draw = %+v, want user a", first)
	}
	second := eng.DrawUserFromQueue(ctx, id, models.DrawFirst, "", false)
	if second == nil || second.User.ID != "b" {
		t.Fatalf("second draw = %+v, want user b", second)
	}
	if got := len(eng.Queue(id).Entries); got != 1 {
		t.Fatalf("got %d entries left, want 1", got)
	}
}

func TestDrawSpecificUser(t *testing.T) {
	eng, _ := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()
	seedWaiting(t, eng, id, "a", "b", "c")

	drawn := eng.DrawUserFromQueue(ctx, id, models.DrawUser, "b", false)
	if drawn == nil || drawn.User.ID != "b" {
		t.Fatalf("draw = %+v, want user b", drawn)
	}
	if got := eng.GetUserPositionInQueue(id, "b"); got != -1 {
		t.Fatalf("drawn user still at position %d", got)
	}
}

func TestDrawSpecificUserRequiresID(t *testing.T) {
	eng, _ := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()
	seedWaiting(t, eng, id, "a")

	if drawn := eng.DrawUserFromQueue(ctx, id, models.DrawUser, "", false); drawn != nil {
		t.Fatal("draw without a user id succeeded")
	}
	if drawn := eng.DrawUserFromQueue(ctx, id, models.DrawUser, "missing", false); drawn != nil {
		t.Fatal("draw of an absent user succeeded")
	}
	if got := len(eng.Queue(id).Entries); got != 1 {
		t.Fatalf("failed draws changed the waiting list to %d entries", got)
	}
}

func TestDrawRandomBound(t *testing.T) {
	eng, _ := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()
	seedWaiting(t, eng, id, "a", "b", "c", "d", "e")

	before := make(map[string]bool)
	for _, entry := range eng.Queue(id).Entries {
		before[entry.User.ID] = true
	}

	drawn := eng.DrawUserFromQueue(ctx, id, models.DrawRandom, "", false)
	if drawn == nil {
		t.Fatal("random draw returned nil on a populated queue")
	}
	if !before[drawn.User.ID] {
		t.Fatalf("random draw returned user %s who was not waiting", drawn.User.ID)
	}
	if got := eng.GetUserPositionInQueue(id, drawn.User.ID); got != -1 {
		t.Fatal("randomly drawn user still in the waiting list")
	}
	if got := len(eng.Queue(id).Entries); got != 4 {
		t.Fatalf("got %d entries left, want 4", got)
	}
}

func TestDrawEmptyQueue(t *testing.T) {
	eng, b := newTestEngine(t, false)
	id := defaultQueueID(t, eng)

	if drawn := eng.DrawUserFromQueue(context.Background(), id, models.DrawFirst, "", false); drawn != nil {
		t.Fatal("draw from an empty queue succeeded")
	}
	if got := len(b.stateUpdates()); got != 0 {
		t.Fatalf("empty draw broadcast %d times, want 0", got)
	}
}

func TestDrawUnknownQueue(t *testing.T) {
	eng, _ := newTestEngine(t, false)
	if drawn := eng.DrawUserFromQueue(context.Background(), "missing", models.DrawFirst, "", false); drawn != nil {
		t.Fatal("draw from an unknown queue succeeded")
	}
}

func TestDrawUnknownType(t *testing.T) {
	eng, _ := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	seedWaiting(t, eng, id, "a")

	if drawn := eng.DrawUserFromQueue(context.Background(), id, "weighted", "", false); drawn != nil {
		t.Fatal("draw with an unknown type succeeded")
	}
}

func TestDrawPromotesIntoInProgress(t *testing.T) {
	eng, b := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()

	added := eng.AddUserToQueue(ctx, id, testUser("a"), "note kept")
	joinedAt := added.JoinedAt
	b.reset()

	drawn := eng.DrawUserFromQueue(ctx, id, models.DrawFirst, "", true)
	if drawn == nil {
		t.Fatal("draw rejected")
	}
	q := eng.Queue(id)
	if len(q.Entries) != 0 {
		t.Fatal("drawn entry still waiting")
	}
	if len(q.InProgress) != 1 {
		t.Fatalf("got %d in-progress entries, want 1", len(q.InProgress))
	}
	promoted := q.InProgress[0]
	if promoted.Note != "note kept" {
		t.Fatalf("note = %q, want %q", promoted.Note, "note kept")
	}
	if !promoted.JoinedAt.Equal(joinedAt) {
		t.Fatal("joinedAt not preserved through draw promotion")
	}
	// Removal then promotion: two broadcasts for one logical transition.
	if got := len(b.stateUpdates()); got != 2 {
		t.Fatalf("got %d broadcasts, want 2", got)
	}
	assertDisjoint(t, eng, id)
}

func TestDrawWithoutPromotionLeavesInProgressAlone(t *testing.T) {
	eng, b := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()
	seedWaiting(t, eng, id, "a")
	b.reset()

	if drawn := eng.DrawUserFromQueue(ctx, id, models.DrawFirst, "", false); drawn == nil {
		t.Fatal("draw rejected")
	}
	if got := len(eng.Queue(id).InProgress); got != 0 {
		t.Fatalf("got %d in-progress entries, want 0", got)
	}
	if got := len(b.stateUpdates()); got != 1 {
		t.Fatalf("got %d broadcasts, want 1", got)
	}
}

func TestDrawPromotionDuplicateCheck(t *testing.T) {
	eng, _ := newTestEngine(t, false)
	id := defaultQueueID(t, eng)
	ctx := context.Background()

	if entry := eng.AddUserToInProgress(ctx, id, testUser("a"), ""); entry == nil {
		t.Fatal("in-progress add rejected")
	}
	// Simulate stale persisted data where the same user also waits.
	eng.mu.Lock()
	q := eng.findQueue(id)
	q.Entries = append(q.Entries, &models.QueueEntry{ID: "stale", User: testUser("a")})
	eng.mu.Unlock()

	drawn := eng.DrawUserFromQueue(ctx, id, models.DrawFirst, "", true)
	if drawn == nil {
		t.Fatal("draw rejected: the entry must be returned even when promotion is refused")
	}
	if got := len(eng.Queue(id).InProgress); got != 1 {
		t.Fatalf("got %d in-progress entries, want 1 (duplicate promotion must be dropped)", got)
	}
	assertDisjoint(t, eng, id)
}
