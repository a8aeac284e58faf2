// Package live pushes match updates to connected spectators over
// websockets. Each match is a room; recorded events, sync completions and
// finalized results are broadcast to the match's room.
package live

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
)

// Message types broadcast to match rooms.
const (
	MessageEventRecorded  = "EVENT_RECORDED"
	MessageEventsSynced   = "EVENTS_SYNCED"
	MessageMatchFinalized = "MATCH_FINALIZED"
)

type Message struct {
	Type    string      `json:"type"`
	MatchID int         `json:"match_id"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run processes client registration until the process exits. Start it in
// its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.logger.Debug("live client joined",
				slog.String("room", client.room),
				slog.Int("room_size", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
					h.logger.Debug("live client left", slog.String("room", client.room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastMatch sends a message to every client watching the match.
// Slow clients are skipped rather than blocking the broadcast.
func (h *Hub) BroadcastMatch(matchID int, messageType string, payload interface{}) {
	msg := Message{Type: messageType, MatchID: matchID, Payload: payload}
	raw, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal live message",
			slog.String("type", messageType),
			slog.Any("error", err))
		return
	}

	room := roomName(matchID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.trySend(raw)
	}
}

func roomName(matchID int) string {
	return "match:" + strconv.Itoa(matchID)
}
