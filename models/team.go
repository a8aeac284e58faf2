package models

import "time"

// Team is the global club identity. Tournament membership is tracked
// separately via TournamentTeam.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ShortName *string   `json:"short_name,omitempty" db:"short_name"`
	City      *string   `json:"city,omitempty" db:"city"`
	CrestKey  *string   `json:"-" db:"crest_key"`
	CrestURL  *string   `json:"crest_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Optional linked data, populated by the service layer.
	Players []Player `json:"players,omitempty" db:"-"`
}
