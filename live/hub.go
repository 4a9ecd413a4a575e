// Package live pushes tournament events to WebSocket subscribers. One room
// per tournament; the engine services broadcast after their transactions
// commit, so a subscriber never sees an event for state that has not landed.
package live

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
)

// Event is the wire format pushed to a room.
type Event struct {
	Type         string      `json:"type"`
	TournamentID int         `json:"tournament_id"`
	Payload      interface{} `json:"payload"`
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

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
				slog.Int("clients", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, exists := clients[client]; exists {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToTournament implements the broadcaster the engine services
// depend on. Clients with a full send buffer are skipped rather than
// blocking the caller.
func (h *Hub) BroadcastToTournament(tournamentID int, eventType string, payload interface{}) {
	message, err := json.Marshal(Event{
		Type:         eventType,
		TournamentID: tournamentID,
		Payload:      payload,
	})
	if err != nil {
		h.logger.Error("failed to marshal live event",
			slog.String("type", eventType), slog.Any("error", err))
		return
	}

	room := roomName(tournamentID)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		client.trySend(message)
	}
}

func roomName(tournamentID int) string {
	return "tournament:" + strconv.Itoa(tournamentID)
}
