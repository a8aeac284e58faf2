package models

import "time"

// LineupEntry is one player selected for one side of a match. A team's
// lineup for a match is the set of its entries, replaced as a whole when
// resubmitted.
type LineupEntry struct {
	ID        int       `json:"id" db:"id"`
	MatchID   int       `json:"match_id" db:"match_id"`
	TeamID    int       `json:"team_id" db:"team_id"`
	PlayerID  int       `json:"player_id" db:"player_id"`
	Starting  bool      `json:"starting" db:"starting"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
}
