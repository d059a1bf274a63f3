package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/CoderSATTY/Jobs-Tinder/internal/ranking"
)

// GetJobSummary retrieves the client-facing projection of a job document.
// Returns nil if the job no longer exists; the ranked index is expected to
// go stale as the corpus evolves, so a missing job is not an error.
func (db *DB) GetJobSummary(ctx context.Context, jobID string) (*JobSummary, error) {
	var (
		s           JobSummary
		description string
		highlights  []byte
		extensions  []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, location, description, apply_link, tags, highlights, extensions
		 FROM jobs WHERE id = $1`,
		jobID,
	).Scan(&s.ID, &s.Title, &s.Company, &s.Location, &description, &s.ApplyLink, &s.Tags, &highlights, &extensions)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}

	s.Description = snippet(description)
	if err := json.Unmarshal(highlights, &s.Highlights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal highlights for job %s: %w", jobID, err)
	}
	if err := json.Unmarshal(extensions, &s.Extensions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extensions for job %s: %w", jobID, err)
	}

	return &s, nil
}

// LoadCorpus streams the full job corpus as ranking candidates. Jobs
// without an embedding are still returned; the ranker filters them.
func (db *DB) LoadCorpus(ctx context.Context) ([]ranking.Candidate, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, title, embedding FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("failed to load job corpus: %w", err)
	}
	defer rows.Close()

	var candidates []ranking.Candidate
	for rows.Next() {
		var c ranking.Candidate
		if err := rows.Scan(&c.ID, &c.Title, &c.Embedding); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to stream job corpus: %w", err)
	}
	return candidates, nil
}
