package services

import "errors"

// Service-level sentinel errors, mapped to HTTP statuses in the handlers
// package. Repository errors are translated into these at the service
// boundary.
var (
	// Validation and business rules
	ErrTeamNameRequired       = errors.New("team name is required")
	ErrPlayerNameRequired     = errors.New("player name is required")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrMatchSameTeam          = errors.New("a match needs two different teams")
	ErrNegativeScore          = errors.New("scores must be non-negative")
	ErrMatchAlreadyCompleted  = errors.New("match is already completed")
	ErrMatchCanceled          = errors.New("match is canceled")
	ErrUnsupportedCrestType   = errors.New("unsupported crest image type")

	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")

	// Conflicts
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamAlreadyRegistered  = errors.New("team is already registered for this tournament")

	// Missing required linkage
	ErrTeamNotRegistered       = errors.New("team is not registered for this tournament")
	ErrMatchWithoutTournament  = errors.New("match has no tournament linkage")
	ErrCrestStorageUnavailable = errors.New("crest storage is not configured")

	// Entity lookups
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
)
