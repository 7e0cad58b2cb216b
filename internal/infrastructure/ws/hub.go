package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/puzzle-hub/puzzle-hub/internal/application/play"
)

// Hub tracks the websocket clients of every game room. It is the process's
// presence authority and the fan-out path for play events.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[uuid.UUID]*Client
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[uuid.UUID]*Client),
		logger: logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Register adds a client to its game room. A second connection for the same
// session replaces the first, which is closed.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	room := h.rooms[client.GameID]
	if room == nil {
		room = make(map[uuid.UUID]*Client)
		h.rooms[client.GameID] = room
	}
	prev := room[client.SessionID]
	room[client.SessionID] = client
	h.mu.Unlock()

	if prev != nil {
		prev.close()
	}
}

// Unregister removes a client. The entry is only dropped when it still points
// at this client, so a replacement connection is not torn down by the old
// connection's cleanup.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	room := h.rooms[client.GameID]
	if room != nil && room[client.SessionID] == client {
		delete(room, client.SessionID)
		if len(room) == 0 {
			delete(h.rooms, client.GameID)
		}
	}
	h.mu.Unlock()

	client.close()
}

// PlayerCount reports the number of live connections in a game room.
func (h *Hub) PlayerCount(gameID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[gameID])
}

// ToRoom sends the event to every client in the room except the excluded
// session. Marshals once; slow clients are dropped rather than blocking the
// room.
func (h *Hub) ToRoom(gameID uuid.UUID, exclude uuid.UUID, event play.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("type", event.Type).Msg("marshal event")
		return
	}

	h.mu.RLock()
	var stale []*Client
	for sessionID, client := range h.rooms[gameID] {
		if sessionID == exclude {
			continue
		}
		if !client.trySend(payload) {
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.logger.Warn().
			Str("game_id", gameID.String()).
			Str("session_id", client.SessionID.String()).
			Msg("send buffer full, dropping client")
		h.Unregister(client)
	}
}

// Shutdown closes every connection in every room.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0)
	for _, room := range h.rooms {
		for _, c := range room {
			clients = append(clients, c)
		}
	}
	h.rooms = make(map[uuid.UUID]map[uuid.UUID]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
