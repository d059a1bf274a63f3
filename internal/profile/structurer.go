// Package profile turns raw resume text into a structured profile using the
// LLM, and produces the canonical text that gets embedded.
package profile

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/CoderSATTY/Jobs-Tinder/internal/llm"
)

//go:embed prompt.txt
var systemPrompt string

//go:embed profile_schema.json
var profileSchema string

// ErrStructuringFailed indicates the model output did not conform to the
// expected profile shape.
type ErrStructuringFailed struct {
	Reason string
}

func (e *ErrStructuringFailed) Error() string {
	return fmt.Sprintf("resume structuring failed: %s", e.Reason)
}

// StructuredProfile is the parsed resume: personal details, the preference
// profile that drives ranking, and any fields the model discovered beyond
// the requested schema.
type StructuredProfile struct {
	PersonalInfo     map[string]any      `json:"info_dict"`
	Preferences      map[string]any      `json:"job_dict"`
	DiscoveredFields map[string][]string `json:"new_keys_tracker"`
}

// Structurer converts resume text into a StructuredProfile.
type Structurer struct {
	client llm.Client
}

// NewStructurer creates a structurer backed by the given LLM client.
func NewStructurer(client llm.Client) *Structurer {
	return &Structurer{client: client}
}

// Structure sends the resume text to the model and validates the returned
// JSON against the profile schema. Provider errors (including quota
// exhaustion) pass through wrapped; non-conforming output becomes
// ErrStructuringFailed.
func (s *Structurer) Structure(ctx context.Context, resumeText string) (*StructuredProfile, error) {
	prompt := fmt.Sprintf("%s\n\nResume Text:\n%s", systemPrompt, resumeText)

	raw, err := s.client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("structuring call failed: %w", err)
	}

	if err := validateProfileJSON(raw); err != nil {
		return nil, err
	}

	var parsed StructuredProfile
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, &ErrStructuringFailed{Reason: fmt.Sprintf("invalid JSON from model: %v", err)}
	}

	if parsed.PersonalInfo == nil {
		parsed.PersonalInfo = map[string]any{}
	}
	if parsed.Preferences == nil {
		parsed.Preferences = map[string]any{}
	}
	if parsed.DiscoveredFields == nil {
		parsed.DiscoveredFields = map[string][]string{}
	}

	return &parsed, nil
}

// validateProfileJSON checks the model output against the embedded schema.
func validateProfileJSON(raw string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(profileSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return &ErrStructuringFailed{Reason: fmt.Sprintf("output is not valid JSON: %v", err)}
	}

	if !result.Valid() {
		reason := "schema violation"
		if errs := result.Errors(); len(errs) > 0 {
			reason = fmt.Sprintf("schema violation: %s: %s", errs[0].Field(), errs[0].Description())
		}
		return &ErrStructuringFailed{Reason: reason}
	}
	return nil
}

// CanonicalText serializes the preference profile for embedding. Go's JSON
// encoder writes map keys in sorted order, which gives the stable
// serialization the embedding step needs for determinism.
func CanonicalText(preferences map[string]any) (string, error) {
	data, err := json.Marshal(preferences)
	if err != nil {
		return "", fmt.Errorf("failed to serialize preference profile: %w", err)
	}
	return string(data), nil
}
