package game

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/puzzle-hub/puzzle-hub/internal/domain/board"
)

// DropUpdate is the full effect of one drop, persisted atomically: the
// dropped piece's final pose and panel exit, any newly solved edges, the
// lock-group assignments for pieces gaining a group, and the relabelling of
// bridged groups. Either all of it lands or none of it does.
type DropUpdate struct {
	PieceIndex  int
	X           float64
	Y           float64
	Rotation    float64
	SolvedEdges []string
	// AssignGroup maps piece index -> unified lock-group id for pieces that
	// gain or change group membership directly (the dropped piece and the
	// neighbors on newly solved edges).
	AssignGroup map[int]int
	// MergeGroups lists pre-existing group ids whose every member must be
	// relabelled to the unified id.
	MergeGroups []int
	UnifiedID   int
}

// Repository is the canonical state store: the durable source of truth for
// games, piece states and edge states.
type Repository interface {
	CreateGame(ctx context.Context, g *Game, topo *board.Topology, pieces []PieceState) error
	GetGameByID(ctx context.Context, gameID uuid.UUID) (*Game, error)
	GetGameBySlug(ctx context.Context, slug string) (*Game, error)
	ListActiveGames(ctx context.Context) ([]*Game, error)
	SetAdminSession(ctx context.Context, gameID, sessionID uuid.UUID) error
	DeleteGame(ctx context.Context, gameID uuid.UUID) error

	Topology(ctx context.Context, gameID uuid.UUID) (*board.Topology, error)

	GetPieceState(ctx context.Context, gameID uuid.UUID, pieceIndex int) (*PieceState, error)
	ListPieceStates(ctx context.Context, gameID uuid.UUID) ([]PieceState, error)
	ListPieceStatesByLockGroup(ctx context.Context, gameID uuid.UUID, lockGroup int) ([]PieceState, error)
	MaxLockGroup(ctx context.Context, gameID uuid.UUID) (int, error)
	UpdatePiecePanel(ctx context.Context, gameID uuid.UUID, pieceIndex, panelOrder int) error

	ApplyDrop(ctx context.Context, gameID uuid.UUID, update DropUpdate) error

	ListSolvedEdges(ctx context.Context, gameID uuid.UUID) ([]EdgeState, error)
	CountUnsolvedEdges(ctx context.Context, gameID uuid.UUID) (int, error)
	CountEdges(ctx context.Context, gameID uuid.UUID) (int, error)

	// MarkCompleted transitions an active game to completed. It reports true
	// only for the call that performed the transition, so a race between two
	// simultaneous completing drops fires the completion event once.
	MarkCompleted(ctx context.Context, gameID uuid.UUID, at time.Time) (bool, error)
}

// Presence reports which participants are live in which game room. Backed by
// the realtime hub; consulted by listings and by deletion gating.
type Presence interface {
	PlayerCount(gameID uuid.UUID) int
}
