package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/puzzle-hub/puzzle-hub/internal/application/play"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 256
)

// Client is one participant connection inside a game room.
type Client struct {
	GameID    uuid.UUID
	SessionID uuid.UUID
	Name      string

	hub    *Hub
	plays  *play.Service
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger zerolog.Logger
}

// Serve wires a freshly upgraded connection into the room: registers it,
// announces the join, and starts the read and write pumps. Returns
// immediately; the pumps own the connection from here.
func Serve(hub *Hub, plays *play.Service, conn *websocket.Conn, gameID, sessionID uuid.UUID, name string, logger zerolog.Logger) {
	client := &Client{
		GameID:    gameID,
		SessionID: sessionID,
		Name:      name,
		hub:       hub,
		plays:     plays,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
		logger: logger.With().
			Str("component", "ws_client").
			Str("game_id", gameID.String()).
			Str("session_id", sessionID.String()).
			Logger(),
	}

	hub.Register(client)
	hub.ToRoom(gameID, uuid.Nil, play.Event{
		Type: play.EventPlayerJoined,
		Data: play.PlayerJoinedEvent{SessionID: sessionID, Name: name, PlayerCount: hub.PlayerCount(gameID)},
	})

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer c.teardown()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}
		c.dispatch(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// teardown releases the participant's pieces before the room forgets it, so
// a disconnect can never leave a piece stuck in a dead hand.
func (c *Client) teardown() {
	c.plays.Disconnect(c.GameID, c.SessionID)
	c.hub.Unregister(c)
	c.hub.ToRoom(c.GameID, uuid.Nil, play.Event{
		Type: play.EventPlayerLeft,
		Data: play.PlayerLeftEvent{SessionID: c.SessionID, Name: c.Name, PlayerCount: c.hub.PlayerCount(c.GameID)},
	})
}

// sendEvent queues an event for this client only.
func (c *Client) sendEvent(event play.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Str("type", event.Type).Msg("marshal event")
		return
	}
	c.trySend(payload)
}

func (c *Client) trySend(payload []byte) bool {
	select {
	case c.send <- payload:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
