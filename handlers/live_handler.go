package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/pitchside/matchday/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The mobile web client is served from a different origin; CORS
	// policy is enforced at the router level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewLiveHandler(hub *live.Hub, logger *slog.Logger) *LiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHandler{hub: hub, logger: logger}
}

// ServeMatchFeed handles GET /matches/{matchID}/live, upgrading the
// connection and attaching it to the match's room.
func (h *LiveHandler) ServeMatchFeed(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			slog.Int("match_id", matchID),
			slog.Any("error", err))
		return
	}
	live.NewClient(h.hub, conn, matchID)
}
