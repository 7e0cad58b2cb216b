package play

import "github.com/google/uuid"

// Event names on the realtime wire. Clients subscribe by name; payloads are
// the structs below.
const (
	EventPieceGrabbed    = "piece:grabbed"
	EventPieceGrabDenied = "piece:grab:denied"
	EventPieceMoved      = "piece:moved"
	EventPieceRotated    = "piece:rotated"
	EventPieceDropped    = "piece:dropped"
	EventPieceSnapped    = "piece:snapped"
	EventPiecePanel      = "piece:panel"
	EventCursorMoved     = "cursor:moved"
	EventReaction        = "reaction:received"
	EventPlayerJoined    = "player:joined"
	EventPlayerLeft      = "player:left"
	EventGameCompleted   = "game:completed"
	EventError           = "error"
)

// Event is a named payload fanned out to a game room.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broadcaster fans events out to every participant connected to a game,
// except the one identified by exclude. Pass uuid.Nil to reach everyone.
type Broadcaster interface {
	ToRoom(gameID uuid.UUID, exclude uuid.UUID, event Event)
}

// PieceGrabbedEvent announces that a participant now holds a lock group.
type PieceGrabbedEvent struct {
	PieceIndex int       `json:"pieceIndex"`
	Members    []int     `json:"members"`
	SessionID  uuid.UUID `json:"sessionId"`
}

// GrabDeniedEvent is sent only to the requester when a grab loses the race.
type GrabDeniedEvent struct {
	PieceIndex int       `json:"pieceIndex"`
	HeldBy     uuid.UUID `json:"heldBy"`
}

// PieceMovedEvent relays a transient position while a piece is held.
type PieceMovedEvent struct {
	PieceIndex int       `json:"pieceIndex"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	SessionID  uuid.UUID `json:"sessionId"`
}

// PieceRotatedEvent relays a transient rotation while a piece is held.
type PieceRotatedEvent struct {
	PieceIndex int       `json:"pieceIndex"`
	Rotation   float64   `json:"rotation"`
	SessionID  uuid.UUID `json:"sessionId"`
}

// PieceDroppedEvent carries the authoritative outcome after a drop resolves:
// the final pose, whether it snapped, and the lock group it landed in.
type PieceDroppedEvent struct {
	PieceIndex int       `json:"pieceIndex"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Rotation   float64   `json:"rotation"`
	Snapped    bool      `json:"snapped"`
	LockGroup  *int      `json:"newLockGroup"`
	SessionID  uuid.UUID `json:"sessionId"`
}

// PieceSnappedEvent announces newly solved edges and the resulting group.
type PieceSnappedEvent struct {
	PieceIndex  int      `json:"pieceIndex"`
	SolvedEdges []string `json:"solvedEdges"`
	LockGroup   int      `json:"lockGroup"`
	Members     []int    `json:"members"`
}

// PiecePanelEvent announces that a piece was returned to the tray.
type PiecePanelEvent struct {
	PieceIndex int       `json:"pieceIndex"`
	PanelOrder int       `json:"panelOrder"`
	SessionID  uuid.UUID `json:"sessionId"`
}

// CursorMovedEvent relays a participant cursor position. Never persisted.
type CursorMovedEvent struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
}

// ReactionEvent relays an emoji reaction. Never persisted.
type ReactionEvent struct {
	Emoji     string    `json:"emoji"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	SessionID uuid.UUID `json:"sessionId"`
	Name      string    `json:"name"`
}

// PlayerJoinedEvent announces a participant entering the room.
type PlayerJoinedEvent struct {
	SessionID   uuid.UUID `json:"sessionId"`
	Name        string    `json:"name"`
	PlayerCount int       `json:"playerCount"`
}

// PlayerLeftEvent announces a participant leaving the room.
type PlayerLeftEvent struct {
	SessionID   uuid.UUID `json:"sessionId"`
	Name        string    `json:"name"`
	PlayerCount int       `json:"playerCount"`
}

// GameCompletedEvent fires once, when the final edge is solved.
type GameCompletedEvent struct {
	GameID      uuid.UUID `json:"gameId"`
	CompletedAt string    `json:"completedAt"`
}

// ErrorEvent is sent only to the requester when an intent is rejected.
type ErrorEvent struct {
	Intent     string `json:"intent"`
	PieceIndex int    `json:"pieceIndex,omitempty"`
	Code       string `json:"code"`
}
