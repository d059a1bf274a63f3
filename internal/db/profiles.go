package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReplaceProfile overwrites the stored profile for a user in full. Any prior
// ranking and cursor are cleared in the same statement, so a concurrent
// reader never sees a new profile paired with a stale ranking.
func (db *DB) ReplaceProfile(ctx context.Context, userID uuid.UUID, p *Profile) error {
	personalInfo, err := json.Marshal(p.PersonalInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal personal info: %w", err)
	}
	preferences, err := json.Marshal(p.Preferences)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	discovered, err := json.Marshal(p.DiscoveredFields)
	if err != nil {
		return fmt.Errorf("failed to marshal discovered fields: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO user_profiles (user_id, personal_info, preferences, discovered_fields, ranked_jobs, cursor_count, updated_at)
		 VALUES ($1, $2, $3, $4, '[]', 0, NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
			personal_info = $2,
			preferences = $3,
			discovered_fields = $4,
			ranked_jobs = '[]',
			cursor_count = 0,
			updated_at = NOW()`,
		userID, personalInfo, preferences, discovered,
	)
	if err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	return nil
}

// GetProfile retrieves the stored profile for a user.
// Returns ErrProfileNotFound if the user has never ingested a resume.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var (
		personalInfo []byte
		preferences  []byte
		discovered   []byte
		p            Profile
	)
	err := db.pool.QueryRow(ctx,
		`SELECT personal_info, preferences, discovered_fields, updated_at
		 FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(&personalInfo, &preferences, &discovered, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if err := json.Unmarshal(personalInfo, &p.PersonalInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal personal info: %w", err)
	}
	if err := json.Unmarshal(preferences, &p.Preferences); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	if err := json.Unmarshal(discovered, &p.DiscoveredFields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discovered fields: %w", err)
	}

	return &p, nil
}
