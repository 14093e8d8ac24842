package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neonarcade/connect-four/backend/internal/domain"
)

type SnapshotRepo struct {
	DB *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{DB: db}
}

// SaveSnapshot inserts or replaces the current state of a game
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	stateJSON, err := json.Marshal(snap.State)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	query := `
	INSERT INTO game_snapshot (game_id, mode, difficulty, bot_player, state, status, move_count, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (game_id) DO UPDATE SET
		difficulty = EXCLUDED.difficulty,
		state = EXCLUDED.state,
		status = EXCLUDED.status,
		move_count = EXCLUDED.move_count,
		updated_at = EXCLUDED.updated_at;
	`

	_, err = r.DB.ExecContext(ctx, query,
		snap.GameID,
		string(snap.Mode),
		string(snap.Difficulty),
		int(snap.BotPlayer),
		stateJSON,
		string(snap.State.Status),
		snap.State.MoveCount,
		snap.CreatedAt,
		snap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns nil, nil when the game is unknown
func (r *SnapshotRepo) GetSnapshot(ctx context.Context, gameID string) (*domain.Snapshot, error) {
	query := `
	SELECT game_id, mode, difficulty, bot_player, state, created_at, updated_at
	FROM game_snapshot
	WHERE game_id = $1;
	`

	var (
		snap       domain.Snapshot
		mode       string
		difficulty string
		botPlayer  int
		stateJSON  []byte
	)
	err := r.DB.QueryRowContext(ctx, query, gameID).Scan(
		&snap.GameID,
		&mode,
		&difficulty,
		&botPlayer,
		&stateJSON,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if err := json.Unmarshal(stateJSON, &snap.State); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	snap.Mode = domain.GameMode(mode)
	snap.Difficulty = domain.Difficulty(difficulty)
	snap.BotPlayer = domain.PlayerID(botPlayer)
	return &snap, nil
}

func (r *SnapshotRepo) DeleteSnapshot(ctx context.Context, gameID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM game_snapshot WHERE game_id = $1;`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// PruneSnapshots removes games not updated since before
func (r *SnapshotRepo) PruneSnapshots(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM game_snapshot WHERE updated_at < $1;`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}
