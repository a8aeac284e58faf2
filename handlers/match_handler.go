package handlers

import (
	"net/http"

	"github.com/pitchside/matchday/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// CreateHandler handles POST /matches
func (h *MatchHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /matches/{matchID}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetLineupHandler handles PUT /matches/{matchID}/lineup/{teamID}
func (h *MatchHandler) SetLineupHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Entries []services.LineupEntryInput `json:"entries"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	lineup, err := h.matchService.SetLineup(r.Context(), matchID, teamID, input.Entries)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"lineup": lineup}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLineupHandler handles GET /matches/{matchID}/lineup
func (h *MatchHandler) GetLineupHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	lineup, err := h.matchService.GetLineup(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"lineup": lineup}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// FinalizeHandler handles POST /matches/{matchID}/finalize
func (h *MatchHandler) FinalizeHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		HomeScore int `json:"home_score"`
		AwayScore int `json:"away_score"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.matchService.Finalize(r.Context(), matchID, input.HomeScore, input.AwayScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RepairStandingsHandler handles POST /matches/{matchID}/standings/repair,
// the retry path for a finalization whose standings update failed.
func (h *MatchHandler) RepairStandingsHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.matchService.RepairStandings(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings_updated": true}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
