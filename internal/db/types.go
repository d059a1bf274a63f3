package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrProfileNotFound indicates no profile has ever been ingested for a user.
var ErrProfileNotFound = errors.New("profile not found")

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PasswordSet  bool      `json:"password_set"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Profile is the structured resume data stored per user. The two maps are
// open-ended: the structuring model may discover fields beyond the ones the
// prompt asks for, and those are tracked in DiscoveredFields.
type Profile struct {
	PersonalInfo     map[string]any      `json:"personal_info"`
	Preferences      map[string]any      `json:"preference_profile"`
	DiscoveredFields map[string][]string `json:"discovered_fields"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// JobSummary is the single projection of a job document served to clients.
// It is constructed once at the store boundary; the description is capped
// to a snippet there as well.
type JobSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	ApplyLink   string   `json:"apply_link"`
	Tags        []string `json:"tags"`
	Highlights  any      `json:"job_highlights"`
	Extensions  any      `json:"extensions"`
}

// Match is a job the user saved (swiped right on).
type Match struct {
	JobID     string    `json:"job_id"`
	Score     float64   `json:"score"`
	Status    string    `json:"status"`
	MatchedAt time.Time `json:"matched_at"`
}

// snippetLen caps JobSummary descriptions.
const snippetLen = 300

func snippet(s string) string {
	runes := []rune(s)
	if len(runes) <= snippetLen {
		return s
	}
	return string(runes[:snippetLen])
}
