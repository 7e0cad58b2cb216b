package play

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/puzzle-hub/puzzle-hub/internal/domain/board"
	"github.com/puzzle-hub/puzzle-hub/internal/domain/game"
)

var (
	// ErrGameNotFound means the game id does not resolve to a live game.
	ErrGameNotFound = errors.New("game not found")
	// ErrUnknownPiece means the piece index is outside the game's topology.
	ErrUnknownPiece = errors.New("unknown piece")
	// ErrNotOwner means the participant does not hold the piece it is acting on.
	ErrNotOwner = errors.New("piece not owned by session")
	// ErrPieceLocked means the piece belongs to a lock group and cannot return
	// to the panel.
	ErrPieceLocked = errors.New("piece is locked to the board")
)

// Service coordinates all realtime play intents for a game room: ownership,
// movement relay, drop resolution with snap matching and lock-group merging,
// and completion detection. One instance serves every room in the process.
type Service struct {
	repo        game.Repository
	topos       board.Provider
	ledger      *Ledger
	broadcaster Broadcaster
	logger      zerolog.Logger
}

// NewService creates a play coordinator. The topology provider is usually the
// same store as the repository; it is separate so callers can cache the
// immutable topologies independently.
func NewService(repo game.Repository, topos board.Provider, ledger *Ledger, broadcaster Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		topos:       topos,
		ledger:      ledger,
		broadcaster: broadcaster,
		logger:      logger.With().Str("service", "play").Logger(),
	}
}

// GrabResult reports the outcome of a grab intent to the requester.
type GrabResult struct {
	Granted bool
	HeldBy  uuid.UUID
	Members []int
}

// DropResult reports the authoritative outcome of a drop to the requester.
type DropResult struct {
	X           float64
	Y           float64
	Rotation    float64
	Snapped     bool
	SolvedEdges []string
	LockGroup   *int
	Members     []int
	Completed   bool
}

// Grab attempts to take exclusive ownership of the piece and its whole lock
// group. On success every other participant in the room is told; on denial
// only the requester learns who holds the piece.
func (s *Service) Grab(ctx context.Context, gameID, participant uuid.UUID, pieceIndex int) (*GrabResult, error) {
	members, _, err := s.resolveGroup(ctx, gameID, pieceIndex)
	if err != nil {
		return nil, err
	}

	holder, granted := s.ledger.Claim(gameID, members, participant)
	if !granted {
		return &GrabResult{Granted: false, HeldBy: holder}, nil
	}

	s.broadcaster.ToRoom(gameID, participant, Event{
		Type: EventPieceGrabbed,
		Data: PieceGrabbedEvent{PieceIndex: pieceIndex, Members: members, SessionID: participant},
	})
	return &GrabResult{Granted: true, Members: members}, nil
}

// Move relays a transient position. Nothing is validated or persisted; the
// canonical position changes only on drop, and drop is where ownership is
// enforced, so a stale relay can never corrupt state.
func (s *Service) Move(gameID, participant uuid.UUID, pieceIndex int, x, y float64) {
	s.broadcaster.ToRoom(gameID, participant, Event{
		Type: EventPieceMoved,
		Data: PieceMovedEvent{PieceIndex: pieceIndex, X: x, Y: y, SessionID: participant},
	})
}

// Rotate relays a transient rotation. Same contract as Move.
func (s *Service) Rotate(gameID, participant uuid.UUID, pieceIndex int, rotation float64) {
	s.broadcaster.ToRoom(gameID, participant, Event{
		Type: EventPieceRotated,
		Data: PieceRotatedEvent{PieceIndex: pieceIndex, Rotation: rotation, SessionID: participant},
	})
}

// Drop resolves a drop intent: snap-match against live neighbors, merge lock
// groups across newly solved edges, persist the whole effect atomically,
// release ownership, broadcast, and check for completion. If persistence
// fails the participant keeps ownership and canonical state is untouched.
func (s *Service) Drop(ctx context.Context, gameID, participant uuid.UUID, pieceIndex int, x, y, rotation float64) (*DropResult, error) {
	topo, err := s.topos.Topology(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if topo == nil {
		return nil, ErrGameNotFound
	}
	piece := topo.PieceAt(pieceIndex)
	if piece == nil {
		return nil, ErrUnknownPiece
	}
	if holder, held := s.ledger.Holder(gameID, pieceIndex); !held || holder != participant {
		return nil, ErrNotOwner
	}

	state, err := s.repo.GetPieceState(ctx, gameID, pieceIndex)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrUnknownPiece
	}
	heldMembers, err := s.groupMembers(ctx, gameID, state)
	if err != nil {
		return nil, err
	}

	neighbors := make(map[int]board.NeighborState, len(piece.Edges))
	for _, edge := range piece.Edges {
		ns, err := s.repo.GetPieceState(ctx, gameID, edge.NeighborIndex)
		if err != nil {
			return nil, err
		}
		if ns == nil {
			continue
		}
		neighbors[edge.NeighborIndex] = board.NeighborState{X: ns.X, Y: ns.Y, Rotation: ns.Rotation, InPanel: ns.InPanel}
	}

	snap := board.Snap(topo, pieceIndex, board.Pose{X: x, Y: y, Rotation: board.NormalizeRotation(rotation)}, neighbors)

	update := game.DropUpdate{
		PieceIndex:  pieceIndex,
		X:           snap.Pose.X,
		Y:           snap.Pose.Y,
		Rotation:    snap.Pose.Rotation,
		SolvedEdges: snap.SnappedEdges,
	}

	var unified int
	if snap.Snapped {
		unified, err = s.unifyGroups(ctx, gameID, state, snap.SnappedEdges, &update)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.ApplyDrop(ctx, gameID, update); err != nil {
		s.logger.Error().Err(err).
			Str("game_id", gameID.String()).
			Int("piece", pieceIndex).
			Msg("drop persist failed, ownership retained")
		return nil, err
	}

	// Ownership is released only once canonical state holds the drop.
	s.ledger.Release(gameID, heldMembers, participant)

	result := &DropResult{
		X:           update.X,
		Y:           update.Y,
		Rotation:    update.Rotation,
		Snapped:     snap.Snapped,
		SolvedEdges: snap.SnappedEdges,
	}
	if snap.Snapped {
		groupStates, err := s.repo.ListPieceStatesByLockGroup(ctx, gameID, unified)
		if err != nil {
			return nil, err
		}
		members := make([]int, 0, len(groupStates))
		for _, gs := range groupStates {
			members = append(members, gs.PieceIndex)
		}
		result.LockGroup = &unified
		result.Members = members
	}

	s.broadcaster.ToRoom(gameID, participant, Event{
		Type: EventPieceDropped,
		Data: PieceDroppedEvent{
			PieceIndex: pieceIndex,
			X:          update.X,
			Y:          update.Y,
			Rotation:   update.Rotation,
			Snapped:    snap.Snapped,
			LockGroup:  result.LockGroup,
			SessionID:  participant,
		},
	})

	if snap.Snapped {
		s.broadcaster.ToRoom(gameID, participant, Event{
			Type: EventPieceSnapped,
			Data: PieceSnappedEvent{PieceIndex: pieceIndex, SolvedEdges: snap.SnappedEdges, LockGroup: unified, Members: result.Members},
		})

		completed, err := s.checkCompletion(ctx, gameID)
		if err != nil {
			s.logger.Error().Err(err).Str("game_id", gameID.String()).Msg("completion check failed")
		}
		result.Completed = completed
	}

	return result, nil
}

// Panel returns a loose piece to the tray at the given slot. Pieces that are
// part of a lock group stay on the board.
func (s *Service) Panel(ctx context.Context, gameID, participant uuid.UUID, pieceIndex, panelOrder int) error {
	if holder, held := s.ledger.Holder(gameID, pieceIndex); !held || holder != participant {
		return ErrNotOwner
	}
	state, err := s.repo.GetPieceState(ctx, gameID, pieceIndex)
	if err != nil {
		return err
	}
	if state == nil {
		return ErrUnknownPiece
	}
	if state.LockGroup != nil {
		return ErrPieceLocked
	}
	if err := s.repo.UpdatePiecePanel(ctx, gameID, pieceIndex, panelOrder); err != nil {
		return err
	}
	s.ledger.Release(gameID, []int{pieceIndex}, participant)

	s.broadcaster.ToRoom(gameID, participant, Event{
		Type: EventPiecePanel,
		Data: PiecePanelEvent{PieceIndex: pieceIndex, PanelOrder: panelOrder, SessionID: participant},
	})
	return nil
}

// Cursor relays a cursor position to the rest of the room. Never persisted.
func (s *Service) Cursor(gameID, participant uuid.UUID, name string, x, y float64) {
	s.broadcaster.ToRoom(gameID, participant, Event{
		Type: EventCursorMoved,
		Data: CursorMovedEvent{X: x, Y: y, SessionID: participant, Name: name},
	})
}

// Reaction relays an emoji reaction to the rest of the room. Never persisted.
func (s *Service) Reaction(gameID, participant uuid.UUID, name, emoji string, x, y float64) {
	s.broadcaster.ToRoom(gameID, participant, Event{
		Type: EventReaction,
		Data: ReactionEvent{Emoji: emoji, X: x, Y: y, SessionID: participant, Name: name},
	})
}

// Disconnect frees every piece the participant held in the game. Must run
// before the room registry forgets the participant so no piece stays stuck.
func (s *Service) Disconnect(gameID, participant uuid.UUID) {
	s.ledger.ReleaseAllFor(gameID, participant)
}

// resolveGroup validates the piece and returns the indices that move as one
// unit: the piece's whole lock group, or just the piece when it is loose.
func (s *Service) resolveGroup(ctx context.Context, gameID uuid.UUID, pieceIndex int) ([]int, *game.PieceState, error) {
	state, err := s.repo.GetPieceState(ctx, gameID, pieceIndex)
	if err != nil {
		return nil, nil, err
	}
	if state == nil {
		return nil, nil, ErrUnknownPiece
	}
	members, err := s.groupMembers(ctx, gameID, state)
	if err != nil {
		return nil, nil, err
	}
	return members, state, nil
}

func (s *Service) groupMembers(ctx context.Context, gameID uuid.UUID, state *game.PieceState) ([]int, error) {
	if state.LockGroup == nil {
		return []int{state.PieceIndex}, nil
	}
	groupStates, err := s.repo.ListPieceStatesByLockGroup(ctx, gameID, *state.LockGroup)
	if err != nil {
		return nil, err
	}
	members := make([]int, 0, len(groupStates))
	for _, gs := range groupStates {
		members = append(members, gs.PieceIndex)
	}
	return members, nil
}

// unifyGroups decides the single group id that survives a snap. Every group
// bridged by the newly solved edges collapses into the smallest existing id;
// when none of the involved pieces had a group yet a fresh id is allocated.
// Populates the update's assignments and merge list.
func (s *Service) unifyGroups(ctx context.Context, gameID uuid.UUID, dropped *game.PieceState, solvedEdges []string, update *game.DropUpdate) (int, error) {
	existing := make(map[int]struct{})
	if dropped.LockGroup != nil {
		existing[*dropped.LockGroup] = struct{}{}
	}

	ungrouped := []int{dropped.PieceIndex}
	for _, edgeID := range solvedEdges {
		a, b, err := board.ParseEdgeID(edgeID)
		if err != nil {
			return 0, fmt.Errorf("solved edge: %w", err)
		}
		other := a
		if other == dropped.PieceIndex {
			other = b
		}
		ns, err := s.repo.GetPieceState(ctx, gameID, other)
		if err != nil {
			return 0, err
		}
		if ns == nil {
			return 0, ErrUnknownPiece
		}
		if ns.LockGroup != nil {
			existing[*ns.LockGroup] = struct{}{}
		} else {
			ungrouped = append(ungrouped, other)
		}
	}

	unified := 0
	if len(existing) > 0 {
		for id := range existing {
			if unified == 0 || id < unified {
				unified = id
			}
		}
	} else {
		max, err := s.repo.MaxLockGroup(ctx, gameID)
		if err != nil {
			return 0, err
		}
		unified = max + 1
	}

	update.UnifiedID = unified
	update.AssignGroup = make(map[int]int, len(ungrouped))
	for _, idx := range ungrouped {
		update.AssignGroup[idx] = unified
	}
	for id := range existing {
		if id != unified {
			update.MergeGroups = append(update.MergeGroups, id)
		}
	}
	return unified, nil
}

// checkCompletion marks the game completed when no unsolved edges remain.
// The conditional transition in the store guarantees the event fires once
// even when two finishing drops race.
func (s *Service) checkCompletion(ctx context.Context, gameID uuid.UUID) (bool, error) {
	remaining, err := s.repo.CountUnsolvedEdges(ctx, gameID)
	if err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	fired, err := s.repo.MarkCompleted(ctx, gameID, now)
	if err != nil {
		return false, err
	}
	if !fired {
		return true, nil
	}

	s.logger.Info().Str("game_id", gameID.String()).Msg("game completed")
	s.broadcaster.ToRoom(gameID, uuid.Nil, Event{
		Type: EventGameCompleted,
		Data: GameCompletedEvent{GameID: gameID, CompletedAt: now.Format(time.RFC3339)},
	})
	return true, nil
}
