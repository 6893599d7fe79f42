// Package storage holds the Postgres-backed repositories: the user registry
// that doubles as the broadcast distribution list, and the cumulative score
// records behind the leaderboard.
package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fidelbot/internal/logger"
	"log/slog"
)

// UserRepo persists the minimal identity records of everyone who ever
// contacted the bot.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo wraps the shared database handle.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Ensure inserts the user id if it is not registered yet. Repeated calls
// are no-ops, so every inbound message can call it unconditionally.
func (r *UserRepo) Ensure(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID)
	if err != nil {
		logger.SVCUsers.Error("user upsert failed",
			slog.String("event", "users.ensure"),
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("ensure user %d: %w", userID, err)
	}
	return nil
}

// ListIDs returns one page of user ids ordered by id, for broadcast fan-out.
func (r *UserRepo) ListIDs(ctx context.Context, limit, offset int) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT id FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users limit=%d offset=%d: %w", limit, offset, err)
	}
	return ids, nil
}
