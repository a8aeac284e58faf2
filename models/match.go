package models

import "time"

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
	MatchCanceled   MatchStatus = "canceled"
)

// Match is a single contest between two teams, optionally linked to a
// tournament. Scores stay nil until they are recorded.
type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID *int        `json:"tournament_id,omitempty" db:"tournament_id"`
	HomeTeamID   int         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   int         `json:"away_team_id" db:"away_team_id"`
	HomeScore    *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int        `json:"away_score,omitempty" db:"away_score"`
	Status       MatchStatus `json:"status" db:"status"`
	KickoffAt    time.Time   `json:"kickoff_at" db:"kickoff_at"`
	Venue        *string     `json:"venue,omitempty" db:"venue"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	HomeTeam *Team `json:"home_team,omitempty" db:"-"`
	AwayTeam *Team `json:"away_team,omitempty" db:"-"`
}

// HasResult reports whether the match counts toward standings: completed
// with both scores recorded. A completed match missing a score is treated
// as inconsistent data and excluded from aggregation, not as a 0-0 draw.
func (m *Match) HasResult() bool {
	return m.Status == MatchCompleted && m.HomeScore != nil && m.AwayScore != nil
}
