package handlers

import (
	"net/http"

	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	matchService      services.MatchService
	standingService   services.StandingService
}

func NewTournamentHandler(
	tournamentService services.TournamentService,
	matchService services.MatchService,
	standingService services.StandingService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		matchService:      matchService,
		standingService:   standingService,
	}
}

// CreateHandler handles POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /tournaments
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatusHandler handles PATCH /tournaments/{tournamentID}/status
func (h *TournamentHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), id, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterTeamHandler handles POST /tournaments/{tournamentID}/teams
func (h *TournamentHandler) RegisterTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		TeamID int `json:"team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	registration, err := h.tournamentService.RegisterTeam(r.Context(), id, input.TeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"registration": registration}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler handles GET /tournaments/{tournamentID}/matches
func (h *TournamentHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var statusFilter *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		statusFilter = &status
	}

	matches, err := h.matchService.ListByTournament(r.Context(), id, statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStandingsHandler handles GET /tournaments/{tournamentID}/standings
func (h *TournamentHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	table, err := h.standingService.GetTable(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": table}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecalculateStandingsHandler handles POST /tournaments/{tournamentID}/standings/recalculate
func (h *TournamentHandler) RecalculateStandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.standingService.Recalculate(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	table, err := h.standingService.GetTable(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": table}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
