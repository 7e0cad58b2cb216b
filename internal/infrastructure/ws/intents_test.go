package ws

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puzzle-hub/puzzle-hub/internal/application/play"
	"github.com/puzzle-hub/puzzle-hub/internal/domain/board"
	"github.com/puzzle-hub/puzzle-hub/internal/domain/game"
)

type stubRepo struct {
	topo   *board.Topology
	pieces map[int]*game.PieceState
}

func newStubRepo(topo *board.Topology) *stubRepo {
	r := &stubRepo{topo: topo, pieces: make(map[int]*game.PieceState)}
	for _, p := range topo.Pieces {
		r.pieces[p.Index] = &game.PieceState{PieceIndex: p.Index, X: p.CorrectPosition.X, Y: p.CorrectPosition.Y}
	}
	return r
}

func (r *stubRepo) CreateGame(context.Context, *game.Game, *board.Topology, []game.PieceState) error {
	return nil
}
func (r *stubRepo) GetGameByID(context.Context, uuid.UUID) (*game.Game, error)  { return nil, nil }
func (r *stubRepo) GetGameBySlug(context.Context, string) (*game.Game, error)   { return nil, nil }
func (r *stubRepo) ListActiveGames(context.Context) ([]*game.Game, error)       { return nil, nil }
func (r *stubRepo) SetAdminSession(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (r *stubRepo) DeleteGame(context.Context, uuid.UUID) error                 { return nil }

func (r *stubRepo) Topology(context.Context, uuid.UUID) (*board.Topology, error) {
	return r.topo, nil
}

func (r *stubRepo) GetPieceState(_ context.Context, _ uuid.UUID, pieceIndex int) (*game.PieceState, error) {
	p, ok := r.pieces[pieceIndex]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *stubRepo) ListPieceStates(context.Context, uuid.UUID) ([]game.PieceState, error) {
	return nil, nil
}
func (r *stubRepo) ListPieceStatesByLockGroup(context.Context, uuid.UUID, int) ([]game.PieceState, error) {
	return nil, nil
}
func (r *stubRepo) MaxLockGroup(context.Context, uuid.UUID) (int, error)        { return 0, nil }
func (r *stubRepo) UpdatePiecePanel(context.Context, uuid.UUID, int, int) error { return nil }
func (r *stubRepo) ApplyDrop(context.Context, uuid.UUID, game.DropUpdate) error { return nil }
func (r *stubRepo) MarkCompleted(context.Context, uuid.UUID, time.Time) (bool, error) {
	return false, nil
}
func (r *stubRepo) ListSolvedEdges(context.Context, uuid.UUID) ([]game.EdgeState, error) {
	return nil, nil
}
func (r *stubRepo) CountUnsolvedEdges(context.Context, uuid.UUID) (int, error) { return 1, nil }
func (r *stubRepo) CountEdges(context.Context, uuid.UUID) (int, error)         { return 1, nil }

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []play.Event
}

func (b *recordingBroadcaster) ToRoom(_ uuid.UUID, _ uuid.UUID, event play.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

func pairTopology() *board.Topology {
	return &board.Topology{
		ImageWidth:  200,
		ImageHeight: 100,
		Pieces: []board.Piece{
			{
				Index:    0,
				Bounds:   board.Bounds{W: 100, H: 100},
				Centroid: board.Point{X: 50, Y: 50},
				Edges:    []board.NeighborEdge{{NeighborIndex: 1, EdgeID: "0-1"}},
			},
			{
				Index:           1,
				Bounds:          board.Bounds{X: 100, W: 100, H: 100},
				Centroid:        board.Point{X: 150, Y: 50},
				CorrectPosition: board.Point{X: 100},
				Edges:           []board.NeighborEdge{{NeighborIndex: 0, EdgeID: "0-1"}},
			},
		},
		Edges: []board.Edge{{ID: "0-1", Pieces: [2]int{0, 1}}},
	}
}

func newTestClient(t *testing.T) (*Client, *recordingBroadcaster) {
	t.Helper()
	bc := &recordingBroadcaster{}
	repo := newStubRepo(pairTopology())
	svc := play.NewService(repo, repo, play.NewLedger(), bc, zerolog.Nop())
	return &Client{
		GameID:    uuid.New(),
		SessionID: uuid.New(),
		Name:      "Anonymous Fox",
		plays:     svc,
		send:      make(chan []byte, sendBufferSize),
		done:      make(chan struct{}),
		logger:    zerolog.Nop(),
	}, bc
}

type replyEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func readReply(t *testing.T, c *Client) replyEnvelope {
	t.Helper()
	select {
	case payload := <-c.send:
		var envelope replyEnvelope
		require.NoError(t, json.Unmarshal(payload, &envelope))
		return envelope
	default:
		t.Fatal("expected a reply to the requester")
		return replyEnvelope{}
	}
}

func requireNoReply(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.send:
		t.Fatalf("unexpected reply: %s", payload)
	default:
	}
}

func TestDropByNonOwnerRepliesError(t *testing.T) {
	c, bc := newTestClient(t)

	c.dispatch([]byte(`{"type":"piece:drop","data":{"pieceIndex":0,"x":10,"y":20,"rotation":0}}`))

	reply := readReply(t, c)
	assert.Equal(t, play.EventError, reply.Type)
	var body struct {
		Intent     string `json:"intent"`
		PieceIndex int    `json:"pieceIndex"`
		Code       string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(reply.Data, &body))
	assert.Equal(t, intentDrop, body.Intent)
	assert.Equal(t, "not_owner", body.Code)

	// The failed drop never reaches the room.
	assert.Empty(t, bc.types())
	requireNoReply(t, c)
}

func TestGrabUnknownPieceRepliesError(t *testing.T) {
	c, bc := newTestClient(t)

	c.dispatch([]byte(`{"type":"piece:grab","data":{"pieceIndex":99}}`))

	reply := readReply(t, c)
	assert.Equal(t, play.EventError, reply.Type)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(reply.Data, &body))
	assert.Equal(t, "unknown_piece", body.Code)
	assert.Empty(t, bc.types())
}

func TestMoveRelaysWithoutOwnership(t *testing.T) {
	c, bc := newTestClient(t)

	c.dispatch([]byte(`{"type":"piece:move","data":{"pieceIndex":0,"x":5,"y":6}}`))

	assert.Equal(t, []string{play.EventPieceMoved}, bc.types())
	requireNoReply(t, c)
}

func TestDropAckCarriesSnapOutcome(t *testing.T) {
	c, bc := newTestClient(t)

	c.dispatch([]byte(`{"type":"piece:grab","data":{"pieceIndex":1}}`))
	requireNoReply(t, c)

	// Neighbor 0 sits at its canonical origin; piece 1 belongs 100 to its
	// right, so this lands within tolerance and snaps.
	c.dispatch([]byte(`{"type":"piece:drop","data":{"pieceIndex":1,"x":103,"y":2,"rotation":0}}`))

	reply := readReply(t, c)
	assert.Equal(t, play.EventPieceDropped, reply.Type)
	var body struct {
		X            float64 `json:"x"`
		Y            float64 `json:"y"`
		Snapped      bool    `json:"snapped"`
		NewLockGroup *int    `json:"newLockGroup"`
	}
	require.NoError(t, json.Unmarshal(reply.Data, &body))
	assert.Equal(t, 100.0, body.X)
	assert.Equal(t, 0.0, body.Y)
	assert.True(t, body.Snapped)
	require.NotNil(t, body.NewLockGroup)

	snapReply := readReply(t, c)
	assert.Equal(t, play.EventPieceSnapped, snapReply.Type)
	assert.Contains(t, bc.types(), play.EventPieceDropped)
}
