package handlers

import (
	"net/http"

	"github.com/pitchside/matchday/services"
)

type TeamHandler struct {
	teamService   services.TeamService
	playerService services.PlayerService
}

func NewTeamHandler(teamService services.TeamService, playerService services.PlayerService) *TeamHandler {
	return &TeamHandler{teamService: teamService, playerService: playerService}
}

// CreateHandler handles POST /teams
func (h *TeamHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /teams/{teamID}
func (h *TeamHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /teams
func (h *TeamHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /teams/{teamID}
func (h *TeamHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	team, err := h.teamService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadCrestHandler handles PUT /teams/{teamID}/crest. The body is the
// raw image; the type comes from the Content-Type header.
func (h *TeamHandler) UploadCrestHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	contentType := r.Header.Get("Content-Type")
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20) // 5MB cap on crest images

	team, err := h.teamService.UploadCrest(r.Context(), id, contentType, r.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreatePlayerHandler handles POST /teams/{teamID}/players
func (h *TeamHandler) CreatePlayerHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), teamID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListPlayersHandler handles GET /teams/{teamID}/players
func (h *TeamHandler) ListPlayersHandler(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	players, err := h.playerService.ListByTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}); err != nil {
		serverErrorResponse(w, r, err)
	}
}
