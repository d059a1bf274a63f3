package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveMatch records a job the user saved, with the score it was served at.
// Saving the same job twice refreshes the score and timestamp.
func (db *DB) SaveMatch(ctx context.Context, userID uuid.UUID, jobID string, score float64) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO matches (user_id, job_id, score, status, matched_at)
		 VALUES ($1, $2, $3, 'saved', NOW())
		 ON CONFLICT (user_id, job_id) DO UPDATE SET score = $3, matched_at = NOW()`,
		userID, jobID, score,
	)
	if err != nil {
		return fmt.Errorf("failed to save match: %w", err)
	}
	return nil
}

// ListMatches retrieves all saved matches for a user, newest first.
func (db *DB) ListMatches(ctx context.Context, userID uuid.UUID) ([]Match, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT job_id, score, status, matched_at FROM matches
		 WHERE user_id = $1 ORDER BY matched_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.JobID, &m.Score, &m.Status, &m.MatchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}
