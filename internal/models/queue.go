package models

import "time"

// Queue is one named waiting line: an ordered waiting list served FIFO and an
// unordered set of entries currently being handled.
type Queue struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	PlaceholderKey    string         `json:"placeholderKey"`
	IsDefault         bool           `json:"isDefault"`
	Enabled           bool           `json:"enabled"`
	Paused            bool           `json:"paused"`
	InProgressEnabled bool           `json:"inProgressEnabled"`
	MaxEntries        int            `json:"maxEntries"`
	Entries           []*QueueEntry  `json:"queueEntries"`
	InProgress        []*QueueEntry  `json:"inProgressEntries"`
	OverlayParams     *OverlayParams `json:"overlayParams"`
}

// QueueEntry is one viewer's occupancy of a line. The entry id is distinct
// from the user id: a viewer who leaves and rejoins gets a fresh entry.
type QueueEntry struct {
	ID       string    `json:"id"`
	User     *User     `json:"user"`
	JoinedAt time.Time `json:"joinedAt"`
	Note     string    `json:"note,omitempty"`
}

// User is an opaque viewer identity owned by the chat platform layer.
// The engine holds a reference and never mutates it.
type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar,omitempty"`
}

// Location names which list of a queue a user currently occupies.
type Location string

const (
	LocationNone       Location = ""
	LocationQueue      Location = "queue"
	LocationInProgress Location = "inProgress"
)

// Draw types accepted by the draw engine.
const (
	DrawFirst  = "first"
	DrawUser   = "user"
	DrawRandom = "random"
)

// RegistryDocument is the persisted shape of the whole queue list, stored
// verbatim under a single key.
type RegistryDocument struct {
	QueueList []*Queue `json:"queueList"`
}

// Snapshot returns a deep copy of the queue suitable for broadcasting:
// subscribers must never share mutable state with the engine.
func (q *Queue) Snapshot() *Queue {
	copied := *q
	copied.Entries = copyEntries(q.Entries)
	copied.InProgress = copyEntries(q.InProgress)
	if q.OverlayParams != nil {
		params := *q.OverlayParams
		copied.OverlayParams = &params
	}
	return &copied
}

func copyEntries(entries []*QueueEntry) []*QueueEntry {
	copied := make([]*QueueEntry, 0, len(entries))
	for _, entry := range entries {
		e := *entry
		if entry.User != nil {
			u := *entry.User
			e.User = &u
		}
		copied = append(copied, &e)
	}
	return copied
}
