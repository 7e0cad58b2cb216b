package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/puzzle-hub/puzzle-hub/internal/domain/board"
	"github.com/puzzle-hub/puzzle-hub/internal/domain/game"
)

// GameRepository implements game.Repository on Postgres. The board topology
// is stored as a JSONB column on the game row; piece and edge states live in
// their own tables keyed by (game_id, piece index).
type GameRepository struct {
	pool *pgxpool.Pool
}

func NewGameRepository(pool *pgxpool.Pool) *GameRepository {
	return &GameRepository{pool: pool}
}

func (r *GameRepository) CreateGame(ctx context.Context, g *game.Game, topo *board.Topology, pieces []game.PieceState) error {
	topoJSON, err := json.Marshal(topo)
	if err != nil {
		return fmt.Errorf("marshal topology: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO games
		(game_id, url_slug, status, piece_count, image_url, image_name, image_width, image_height, topology, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id
	`, g.GameID, g.Slug, g.Status, g.PieceCount, g.ImageURL, g.ImageName, g.ImageWidth, g.ImageHeight, topoJSON, g.CreatedAt).Scan(&g.ID)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, p := range pieces {
		batch.Queue(`
			INSERT INTO piece_states
			(game_id, piece_index, x, y, rotation, in_panel, panel_order, lock_group)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, g.GameID, p.PieceIndex, p.X, p.Y, p.Rotation, p.InPanel, p.PanelOrder, p.LockGroup)
	}
	for _, e := range topo.Edges {
		batch.Queue(`
			INSERT INTO edge_states (game_id, piece_a, piece_b, solved)
			VALUES ($1,$2,$3,false)
		`, g.GameID, e.Pieces[0], e.Pieces[1])
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *GameRepository) GetGameByID(ctx context.Context, gameID uuid.UUID) (*game.Game, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, game_id, url_slug, status, piece_count, image_url, image_name, image_width, image_height, admin_session_id, created_at, completed_at
		FROM games
		WHERE game_id=$1
	`, gameID)
	return scanGame(row)
}

func (r *GameRepository) GetGameBySlug(ctx context.Context, slug string) (*game.Game, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, game_id, url_slug, status, piece_count, image_url, image_name, image_width, image_height, admin_session_id, created_at, completed_at
		FROM games
		WHERE url_slug=$1
	`, slug)
	return scanGame(row)
}

func (r *GameRepository) ListActiveGames(ctx context.Context) ([]*game.Game, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, game_id, url_slug, status, piece_count, image_url, image_name, image_width, image_height, admin_session_id, created_at, completed_at
		FROM games
		WHERE status='active'
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SetAdminSession claims admin for the first visitor; a second claim on an
// already-claimed game is a no-op.
func (r *GameRepository) SetAdminSession(ctx context.Context, gameID, sessionID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE games
		SET admin_session_id=$1
		WHERE game_id=$2 AND admin_session_id IS NULL
	`, sessionID, gameID)
	return err
}

func (r *GameRepository) DeleteGame(ctx context.Context, gameID uuid.UUID) error {
	// piece_states and edge_states cascade from the game row.
	_, err := r.pool.Exec(ctx, `DELETE FROM games WHERE game_id=$1`, gameID)
	return err
}

func (r *GameRepository) Topology(ctx context.Context, gameID uuid.UUID) (*board.Topology, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT topology
		FROM games
		WHERE game_id=$1
	`, gameID)
	var raw json.RawMessage
	if err := row.Scan(&raw); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	var topo board.Topology
	if err := json.Unmarshal(raw, &topo); err != nil {
		return nil, fmt.Errorf("unmarshal topology: %w", err)
	}
	return &topo, nil
}

func (r *GameRepository) GetPieceState(ctx context.Context, gameID uuid.UUID, pieceIndex int) (*game.PieceState, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT piece_index, x, y, rotation, in_panel, panel_order, lock_group
		FROM piece_states
		WHERE game_id=$1 AND piece_index=$2
	`, gameID, pieceIndex)
	return scanPieceState(row)
}

func (r *GameRepository) ListPieceStates(ctx context.Context, gameID uuid.UUID) ([]game.PieceState, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT piece_index, x, y, rotation, in_panel, panel_order, lock_group
		FROM piece_states
		WHERE game_id=$1
		ORDER BY piece_index ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPieceStates(rows)
}

func (r *GameRepository) ListPieceStatesByLockGroup(ctx context.Context, gameID uuid.UUID, lockGroup int) ([]game.PieceState, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT piece_index, x, y, rotation, in_panel, panel_order, lock_group
		FROM piece_states
		WHERE game_id=$1 AND lock_group=$2
		ORDER BY piece_index ASC
	`, gameID, lockGroup)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPieceStates(rows)
}

func (r *GameRepository) MaxLockGroup(ctx context.Context, gameID uuid.UUID) (int, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(lock_group), 0)
		FROM piece_states
		WHERE game_id=$1
	`, gameID)
	var max int
	if err := row.Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

func (r *GameRepository) UpdatePiecePanel(ctx context.Context, gameID uuid.UUID, pieceIndex, panelOrder int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE piece_states
		SET in_panel=true, panel_order=$1
		WHERE game_id=$2 AND piece_index=$3
	`, panelOrder, gameID, pieceIndex)
	return err
}

// ApplyDrop lands the full effect of a drop in one transaction: the final
// pose, group relabelling for merged groups, direct group assignments, and
// the newly solved edges. A failure leaves canonical state untouched.
func (r *GameRepository) ApplyDrop(ctx context.Context, gameID uuid.UUID, update game.DropUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE piece_states
		SET x=$1, y=$2, rotation=$3, in_panel=false, panel_order=NULL
		WHERE game_id=$4 AND piece_index=$5
	`, update.X, update.Y, update.Rotation, gameID, update.PieceIndex)
	if err != nil {
		return err
	}

	if len(update.MergeGroups) > 0 {
		_, err = tx.Exec(ctx, `
			UPDATE piece_states
			SET lock_group=$1
			WHERE game_id=$2 AND lock_group = ANY($3)
		`, update.UnifiedID, gameID, update.MergeGroups)
		if err != nil {
			return err
		}
	}
	for idx, groupID := range update.AssignGroup {
		_, err = tx.Exec(ctx, `
			UPDATE piece_states
			SET lock_group=$1
			WHERE game_id=$2 AND piece_index=$3
		`, groupID, gameID, idx)
		if err != nil {
			return err
		}
	}

	for _, edgeID := range update.SolvedEdges {
		a, b, err := board.ParseEdgeID(edgeID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE edge_states
			SET solved=true
			WHERE game_id=$1 AND piece_a=$2 AND piece_b=$3
		`, gameID, a, b)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *GameRepository) ListSolvedEdges(ctx context.Context, gameID uuid.UUID) ([]game.EdgeState, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT piece_a, piece_b, solved
		FROM edge_states
		WHERE game_id=$1 AND solved=true
		ORDER BY piece_a ASC, piece_b ASC
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.EdgeState
	for rows.Next() {
		var e game.EdgeState
		if err := rows.Scan(&e.PieceA, &e.PieceB, &e.Solved); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *GameRepository) CountUnsolvedEdges(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.countEdges(ctx, gameID, `AND solved=false`)
}

func (r *GameRepository) CountEdges(ctx context.Context, gameID uuid.UUID) (int, error) {
	return r.countEdges(ctx, gameID, ``)
}

func (r *GameRepository) countEdges(ctx context.Context, gameID uuid.UUID, filter string) (int, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT COUNT(1)
		FROM edge_states
		WHERE game_id=$1 `+filter, gameID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarkCompleted performs the active->completed transition. The status guard
// makes the transition fire for exactly one caller.
func (r *GameRepository) MarkCompleted(ctx context.Context, gameID uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE games
		SET status='completed', completed_at=$1
		WHERE game_id=$2 AND status <> 'completed'
	`, at, gameID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanGame(row pgx.Row) (*game.Game, error) {
	var g game.Game
	if err := row.Scan(&g.ID, &g.GameID, &g.Slug, &g.Status, &g.PieceCount, &g.ImageURL, &g.ImageName, &g.ImageWidth, &g.ImageHeight, &g.AdminSessionID, &g.CreatedAt, &g.CompletedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func scanPieceState(row pgx.Row) (*game.PieceState, error) {
	var p game.PieceState
	if err := row.Scan(&p.PieceIndex, &p.X, &p.Y, &p.Rotation, &p.InPanel, &p.PanelOrder, &p.LockGroup); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func collectPieceStates(rows pgx.Rows) ([]game.PieceState, error) {
	var out []game.PieceState
	for rows.Next() {
		var p game.PieceState
		if err := rows.Scan(&p.PieceIndex, &p.X, &p.Y, &p.Rotation, &p.InPanel, &p.PanelOrder, &p.LockGroup); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
