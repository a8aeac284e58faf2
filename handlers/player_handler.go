package handlers

import (
	"net/http"

	"github.com/pitchside/matchday/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// UpdateHandler handles PUT /players/{playerID}
func (h *PlayerHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /players/{playerID}
func (h *PlayerHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
