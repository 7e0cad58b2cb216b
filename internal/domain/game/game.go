package game

import (
	"time"

	"github.com/google/uuid"
)

// Status describes game lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Game is one running puzzle instance.
type Game struct {
	ID             int64      `json:"id"`
	GameID         uuid.UUID  `json:"gameId"`
	Slug           string     `json:"urlSlug"`
	Status         Status     `json:"status"`
	PieceCount     int        `json:"pieceCount"`
	ImageURL       string     `json:"imageUrl"`
	ImageName      string     `json:"imageName"`
	ImageWidth     int        `json:"imageWidth"`
	ImageHeight    int        `json:"imageHeight"`
	AdminSessionID *uuid.UUID `json:"adminSessionId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// PieceState is the mutable, persisted placement of one piece. Exactly one
// row exists per piece index for the life of the game.
type PieceState struct {
	PieceIndex int     `json:"index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation"`
	InPanel    bool    `json:"inPanel"`
	PanelOrder *int    `json:"panelOrder"`
	LockGroup  *int    `json:"lockGroup"`
}

// EdgeState tracks whether one adjacency has been solved. The edge set is
// fixed at creation; only the solved flag mutates.
type EdgeState struct {
	PieceA int  `json:"pieceA"`
	PieceB int  `json:"pieceB"`
	Solved bool `json:"solved"`
}

// State is the derived read view of a game: computed on demand, never stored.
type State struct {
	Pieces      []PieceState `json:"pieces"`
	SolvedEdges []string     `json:"solvedEdges"`
	Progress    float64      `json:"progress"`
	PlayerCount int          `json:"playerCount"`
}

// Summary is the listing view of a game.
type Summary struct {
	GameID      uuid.UUID `json:"gameId"`
	Slug        string    `json:"urlSlug"`
	PieceCount  int       `json:"pieceCount"`
	ImageName   string    `json:"imageName"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	PlayerCount int       `json:"playerCount"`
}

// IsCompleted reports whether the game has been marked completed.
func (g *Game) IsCompleted() bool {
	return g.Status == StatusCompleted
}
