package handlers

import (
	"net/http"

	"github.com/pitchside/matchday/live"
	"github.com/pitchside/matchday/models"
	"github.com/pitchside/matchday/queue"
	"github.com/pitchside/matchday/repositories"
)

// EventHandler exposes the offline event queue. Recording writes only to
// device-local storage; pushing to the remote store happens through the
// sync endpoint (or the background scheduler).
type EventHandler struct {
	queue      *queue.Queue
	eventsRepo repositories.MatchEventRepository
	hub        *live.Hub
}

func NewEventHandler(q *queue.Queue, eventsRepo repositories.MatchEventRepository, hub *live.Hub) *EventHandler {
	return &EventHandler{queue: q, eventsRepo: eventsRepo, hub: hub}
}

// RecordHandler handles POST /matches/{matchID}/events
func (h *EventHandler) RecordHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var payload models.EventPayload
	if err := readJSON(w, r, &payload); err != nil {
		badRequestResponse(w, err)
		return
	}

	event, err := h.queue.Enqueue(matchID, payload)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastMatch(matchID, live.MessageEventRecorded, event)
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /matches/{matchID}/events. It reads the local
// queue, so the UI sees a consistent list regardless of sync state.
func (h *EventHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	events, err := h.queue.GetAll(matchID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListSyncedHandler handles GET /matches/{matchID}/events/synced: the
// events as the remote store has them, the view another device (or this
// one after a reinstall) would see.
func (h *EventHandler) ListSyncedHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	events, err := h.eventsRepo.ListByMatch(r.Context(), matchID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SyncStateHandler handles GET /matches/{matchID}/events/state
func (h *EventHandler) SyncStateHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	state, err := h.queue.SyncState(matchID)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, state); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SyncHandler handles POST /matches/{matchID}/events/sync. A remote-store
// failure is not an HTTP error: the events are safe locally and will be
// retried, so the response just reports that nothing synced.
func (h *EventHandler) SyncHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.queue.Sync(r.Context(), matchID)
	if err == nil && result.Synced > 0 && h.hub != nil {
		h.hub.BroadcastMatch(matchID, live.MessageEventsSynced, result)
	}
	if err := writeJSON(w, http.StatusOK, result); err != nil {
		serverErrorResponse(w, r, err)
	}
}
