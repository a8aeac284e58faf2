package models

import "time"

// Standing is one derived row of a tournament table. Rows are never
// authored directly: the full set for a tournament is replaced on every
// recompute, and the incremental apply path upserts individual rows
// without re-ranking.
type Standing struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	Played       int       `json:"played" db:"played"`
	Won          int       `json:"won" db:"won"`
	Drawn        int       `json:"drawn" db:"drawn"`
	Lost         int       `json:"lost" db:"lost"`
	GoalsFor     int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst int       `json:"goals_against" db:"goals_against"`
	GoalDiff     int       `json:"goal_diff" db:"goal_diff"`
	Points       int       `json:"points" db:"points"`
	LastFive     string    `json:"last_five" db:"last_five"`
	Position     int       `json:"position" db:"position"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
