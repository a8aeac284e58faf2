package models

import "time"

// TournamentStatus mirrors the ENUM in the database.
type TournamentStatus string

const (
	TournamentScheduled TournamentStatus = "scheduled"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCanceled  TournamentStatus = "canceled"
)

// Tournament is a competition with its own points configuration.
// PointsWin/PointsDraw/PointsLoss default to 3/1/0 but are overridable per
// tournament; negative loss points are allowed.
type Tournament struct {
	ID         int              `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Season     *string          `json:"season,omitempty" db:"season"`
	Status     TournamentStatus `json:"status" db:"status"`
	PointsWin  int              `json:"points_win" db:"points_win"`
	PointsDraw int              `json:"points_draw" db:"points_draw"`
	PointsLoss int              `json:"points_loss" db:"points_loss"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Teams   []TournamentTeam `json:"teams,omitempty" db:"-"`
	Matches []Match          `json:"matches,omitempty" db:"-"`
}

// TournamentTeam is a team's membership record within one tournament,
// distinct from the global Team identity.
type TournamentTeam struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}
