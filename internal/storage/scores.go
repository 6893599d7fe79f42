package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"fidelbot/internal/logger"
	"log/slog"
)

// ScoreRow is one leaderboard entry.
type ScoreRow struct {
	UserID     int64  `db:"user_id"`
	FullName   string `db:"full_name"`
	TotalScore int64  `db:"total_score"`
}

// ScoreRepo persists cumulative quiz scores.
type ScoreRepo struct {
	db *sqlx.DB
}

// NewScoreRepo wraps the shared database handle.
func NewScoreRepo(db *sqlx.DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// Add merges a finished session's score into the user's total. The merge is
// additive: new_total = old_total + delta. The display name is refreshed on
// every merge so the leaderboard tracks renames.
func (r *ScoreRepo) Add(ctx context.Context, userID int64, fullName string, delta int) error {
	if delta <= 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scores (user_id, full_name, total_score, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET total_score = scores.total_score + EXCLUDED.total_score,
		    full_name   = EXCLUDED.full_name,
		    updated_at  = now()`,
		userID, fullName, delta)
	if err != nil {
		logger.SVCScores.Error("score merge failed",
			slog.String("event", "scores.merge"),
			slog.Int64("user_id", userID),
			slog.Int("score", delta),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("merge score for %d: %w", userID, err)
	}
	logger.SVCScores.Debug("score merged",
		slog.String("event", "scores.merge"),
		slog.Int64("user_id", userID),
		slog.Int("score", delta),
	)
	return nil
}

// Top returns up to limit leaderboard rows with a positive total, best first.
func (r *ScoreRepo) Top(ctx context.Context, limit int) ([]ScoreRow, error) {
	var rows []ScoreRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT user_id, full_name, total_score
		FROM scores
		WHERE total_score > 0
		ORDER BY total_score DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard top %d: %w", limit, err)
	}
	return rows, nil
}
