package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/CoderSATTY/Jobs-Tinder/internal/ranking"
)

// ReplaceRanking atomically overwrites the stored ranking for a user and
// resets the pagination cursor to zero. This is the only write path that
// changes a ranked list's contents; cursor and list move together in one
// statement.
func (db *DB) ReplaceRanking(ctx context.Context, userID uuid.UUID, entries []ranking.Entry) error {
	if entries == nil {
		entries = []ranking.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal ranking: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE user_profiles
		 SET ranked_jobs = $2, cursor_count = 0, ranking_updated_at = NOW()
		 WHERE user_id = $1`,
		userID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to replace ranking: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// GetRanking retrieves the ranked entries and the pagination cursor for a
// user. Returns ErrProfileNotFound if no profile was ever ingested.
func (db *DB) GetRanking(ctx context.Context, userID uuid.UUID) ([]ranking.Entry, int, error) {
	var (
		data  []byte
		count int
	)
	err := db.pool.QueryRow(ctx,
		`SELECT ranked_jobs, cursor_count FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&data, &count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, 0, ErrProfileNotFound
		}
		return nil, 0, fmt.Errorf("failed to get ranking: %w", err)
	}

	var entries []ranking.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal ranking: %w", err)
	}
	return entries, count, nil
}

// AdvanceCursor sets the pagination cursor for a user. The update is a
// single statement and monotonic: a racing session cannot move the cursor
// backwards and re-serve entries.
func (db *DB) AdvanceCursor(ctx context.Context, userID uuid.UUID, newCount int) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE user_profiles SET cursor_count = GREATEST(cursor_count, $2)
		 WHERE user_id = $1`,
		userID, newCount,
	)
	if err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
