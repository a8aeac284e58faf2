package models

import "time"

// EventKind is the discriminant of an event payload. The set below covers
// the kinds the UI records today; unknown kinds pass through the queue
// untouched, only an empty kind makes a payload unsyncable.
type EventKind string

const (
	EventGoal         EventKind = "goal"
	EventOwnGoal      EventKind = "own_goal"
	EventPenalty      EventKind = "penalty"
	EventYellowCard   EventKind = "yellow_card"
	EventRedCard      EventKind = "red_card"
	EventSubstitution EventKind = "substitution"
	EventOther        EventKind = "other"
)

const (
	SideHome = "home"
	SideAway = "away"
)

// EventPayload is the body of a recorded live event. The queue stores it
// opaquely; its shape is only checked when a sync batch is assembled.
type EventPayload struct {
	Kind     EventKind `json:"kind"`
	Minute   int       `json:"minute"`
	Side     string    `json:"side,omitempty"`
	PlayerID *int      `json:"player_id,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

// QueuedEvent is a locally buffered live event. Immutable after creation
// except for Synced, which flips false->true exactly once when the remote
// store durably accepts the event.
type QueuedEvent struct {
	ID        string       `json:"id"`
	MatchID   int          `json:"match_id"`
	Payload   EventPayload `json:"payload"`
	CreatedAt time.Time    `json:"created_at"`
	Synced    bool         `json:"synced"`
}

// MatchEvent is the remote-store row shape of a synced event. ClientID
// carries the QueuedEvent id end to end and backs the idempotency
// constraint on the match_events table.
type MatchEvent struct {
	ID        int       `json:"id" db:"id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	ClientID  string    `json:"client_id" db:"client_id"`
	Kind      EventKind `json:"kind" db:"kind"`
	Minute    int       `json:"minute" db:"minute"`
	Side      *string   `json:"side,omitempty" db:"side"`
	PlayerID  *int      `json:"player_id,omitempty" db:"player_id"`
	Detail    *string   `json:"detail,omitempty" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
