package games

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/puzzle-hub/puzzle-hub/internal/domain/board"
	"github.com/puzzle-hub/puzzle-hub/internal/domain/game"
)

const (
	// MinPieceCount and MaxPieceCount bound the requested puzzle size. The
	// generated grid may round to a nearby count.
	MinPieceCount = 200
	MaxPieceCount = 900

	slugLength   = 8
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

var (
	// ErrGameNotFound means no game exists for the given slug or id.
	ErrGameNotFound = errors.New("game not found")
	// ErrPlayersConnected blocks deletion while the room is occupied.
	ErrPlayersConnected = errors.New("players are connected")
)

// Service owns the game lifecycle: creation with board generation and state
// seeding, lookup with first-visitor admin claim, derived state reads,
// listing, and guarded deletion.
type Service struct {
	repo     game.Repository
	presence game.Presence
	logger   zerolog.Logger

	mu  sync.Mutex
	rng *mrand.Rand
}

// NewService creates a game lifecycle service. A nil rng falls back to a
// time-seeded source; tests pass a fixed seed for reproducible seeding.
func NewService(repo game.Repository, presence game.Presence, rng *mrand.Rand, logger zerolog.Logger) *Service {
	if rng == nil {
		rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		repo:     repo,
		presence: presence,
		rng:      rng,
		logger:   logger.With().Str("service", "games").Logger(),
	}
}

// CreateInput describes a new game request.
type CreateInput struct {
	PieceCount  int
	ImageURL    string
	ImageName   string
	ImageWidth  int
	ImageHeight int
}

// Create generates the board topology, then writes the game row and seeds
// every piece state and edge state in one transaction. Pieces start in the
// panel in shuffled order with random rotations.
func (s *Service) Create(ctx context.Context, in CreateInput) (*game.Game, error) {
	if in.PieceCount < MinPieceCount || in.PieceCount > MaxPieceCount {
		return nil, fmt.Errorf("piece count must be between %d and %d", MinPieceCount, MaxPieceCount)
	}
	if in.ImageWidth <= 0 || in.ImageHeight <= 0 {
		return nil, fmt.Errorf("image dimensions must be positive")
	}
	if in.ImageURL == "" {
		return nil, fmt.Errorf("image url is required")
	}

	topo := board.GenerateGrid(board.GridOptions{
		ImageWidth:  in.ImageWidth,
		ImageHeight: in.ImageHeight,
		PieceCount:  in.PieceCount,
	})
	if err := topo.Validate(); err != nil {
		return nil, fmt.Errorf("generate board: %w", err)
	}

	slug, err := generateSlug()
	if err != nil {
		return nil, err
	}
	g := &game.Game{
		GameID:      uuid.New(),
		Slug:        slug,
		Status:      game.StatusActive,
		PieceCount:  topo.PieceCount(),
		ImageURL:    in.ImageURL,
		ImageName:   in.ImageName,
		ImageWidth:  in.ImageWidth,
		ImageHeight: in.ImageHeight,
		CreatedAt:   time.Now().UTC(),
	}

	pieces := s.seedPieces(topo.PieceCount())
	if err := s.repo.CreateGame(ctx, g, topo, pieces); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("game_id", g.GameID.String()).
		Str("slug", g.Slug).
		Int("pieces", g.PieceCount).
		Msg("game created")
	return g, nil
}

// View is a game plus the caller's admin standing.
type View struct {
	Game    *game.Game `json:"game"`
	IsAdmin bool       `json:"isAdmin"`
}

// GetBySlug returns the game, claiming admin for the first session to visit
// an unclaimed game.
func (s *Service) GetBySlug(ctx context.Context, slug string, sessionID uuid.UUID) (*View, error) {
	g, err := s.repo.GetGameBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}

	isAdmin := g.AdminSessionID != nil && *g.AdminSessionID == sessionID
	if g.AdminSessionID == nil && sessionID != uuid.Nil {
		if err := s.repo.SetAdminSession(ctx, g.GameID, sessionID); err != nil {
			return nil, err
		}
		g.AdminSessionID = &sessionID
		isAdmin = true
	}
	return &View{Game: g, IsAdmin: isAdmin}, nil
}

// Topology returns the immutable board description for a game.
func (s *Service) Topology(ctx context.Context, slug string) (*board.Topology, error) {
	g, err := s.repo.GetGameBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	topo, err := s.repo.Topology(ctx, g.GameID)
	if err != nil {
		return nil, err
	}
	if topo == nil {
		return nil, ErrGameNotFound
	}
	return topo, nil
}

// State assembles the derived read view: every piece state, the solved edge
// ids, fractional progress, and the live player count.
func (s *Service) State(ctx context.Context, slug string) (*game.State, error) {
	g, err := s.repo.GetGameBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}

	pieces, err := s.repo.ListPieceStates(ctx, g.GameID)
	if err != nil {
		return nil, err
	}
	solved, err := s.repo.ListSolvedEdges(ctx, g.GameID)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountEdges(ctx, g.GameID)
	if err != nil {
		return nil, err
	}

	edgeIDs := make([]string, 0, len(solved))
	for _, e := range solved {
		edgeIDs = append(edgeIDs, board.EdgeID(e.PieceA, e.PieceB))
	}
	progress := 0.0
	if total > 0 {
		progress = float64(len(edgeIDs)) / float64(total)
	}

	return &game.State{
		Pieces:      pieces,
		SolvedEdges: edgeIDs,
		Progress:    progress,
		PlayerCount: s.presence.PlayerCount(g.GameID),
	}, nil
}

// List returns active games newest first, with live player counts.
func (s *Service) List(ctx context.Context) ([]game.Summary, error) {
	active, err := s.repo.ListActiveGames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]game.Summary, 0, len(active))
	for _, g := range active {
		out = append(out, game.Summary{
			GameID:      g.GameID,
			Slug:        g.Slug,
			PieceCount:  g.PieceCount,
			ImageName:   g.ImageName,
			ImageURL:    g.ImageURL,
			CreatedAt:   g.CreatedAt,
			PlayerCount: s.presence.PlayerCount(g.GameID),
		})
	}
	return out, nil
}

// Delete removes a game and all of its state. Refused while any participant
// is connected to the room.
func (s *Service) Delete(ctx context.Context, slug string) error {
	g, err := s.repo.GetGameBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if g == nil {
		return ErrGameNotFound
	}
	if s.presence.PlayerCount(g.GameID) > 0 {
		return ErrPlayersConnected
	}
	if err := s.repo.DeleteGame(ctx, g.GameID); err != nil {
		return err
	}
	s.logger.Info().Str("game_id", g.GameID.String()).Str("slug", slug).Msg("game deleted")
	return nil
}

// seedPieces builds the initial piece states: all in the panel, panel order a
// uniform permutation, rotations uniform in [0, 2π).
func (s *Service) seedPieces(count int) []game.PieceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.rng.Perm(count)
	pieces := make([]game.PieceState, count)
	for i := 0; i < count; i++ {
		po := order[i]
		pieces[i] = game.PieceState{
			PieceIndex: i,
			X:          0,
			Y:          0,
			Rotation:   s.rng.Float64() * 2 * math.Pi,
			InPanel:    true,
			PanelOrder: &po,
		}
	}
	return pieces
}

func generateSlug() (string, error) {
	buf := make([]byte, slugLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(slugAlphabet))))
		if err != nil {
			return "", err
		}
		buf[i] = slugAlphabet[n.Int64()]
	}
	return string(buf), nil
}
