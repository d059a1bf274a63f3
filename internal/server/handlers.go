package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/CoderSATTY/Jobs-Tinder/internal/feed"
	"github.com/CoderSATTY/Jobs-Tinder/internal/server/middleware"
)

// maxResumeSize caps resume uploads at 10 MB.
const maxResumeSize = 10 << 20

// handleParseResume accepts a resume upload, runs the ingest pipeline, and
// returns the structured profile. Ranking recomputes in the background.
func (s *Server) handleParseResume(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxResumeSize); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "file", Message: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "file", Message: "file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxResumeSize))
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	parsed, err := s.ingester.Ingest(r.Context(), userID, header.Filename, data)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":      true,
		"info_dict":    parsed.PersonalInfo,
		"job_dict":     parsed.Preferences,
		"dynamic_keys": parsed.DiscoveredFields,
	})
}

// handleSaveProfile serves the next batch of ranked jobs and advances the
// user's cursor past the jobs it returned.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	batch, err := s.feed.NextBatch(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"ranked_jobs": jobsOrEmpty(batch.Jobs),
		"total_jobs":  batch.Total,
	})
}

// handleMe returns the stored profile for the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := s.store.GetProfile(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    p,
	})
}

// MatchRequest is the payload for saving a match.
type MatchRequest struct {
	JobID string  `json:"job_id"`
	Score float64 `json:"score"`
}

// handleMatch saves a job the user swiped right on.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if req.JobID == "" {
		s.errorResponse(w, &ErrValidation{Field: "job_id", Message: "required"})
		return
	}

	if err := s.store.SaveMatch(r.Context(), userID, req.JobID, req.Score); err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true})
}

// matchedJob is a saved match with its job details resolved.
type matchedJob struct {
	feed.ScoredJob
	MatchedAt time.Time `json:"matched_at"`
}

// handleMatches lists the user's saved matches with resolved job details.
// Matches whose job document has since disappeared are dropped.
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	matches, err := s.store.ListMatches(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	resolved := make([]matchedJob, 0, len(matches))
	for _, m := range matches {
		job, err := s.store.GetJobSummary(r.Context(), m.JobID)
		if err != nil {
			s.errorResponse(w, err)
			return
		}
		if job == nil {
			s.log.Debugw("matched job missing from corpus, skipping", "job_id", m.JobID)
			continue
		}
		resolved = append(resolved, matchedJob{
			ScoredJob: feed.ScoredJob{JobSummary: *job, Score: m.Score},
			MatchedAt: m.MatchedAt,
		})
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"matches": resolved,
	})
}

// handleDebugRankings returns the user's current page without consuming it.
func (s *Server) handleDebugRankings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	batch, err := s.feed.PeekBatch(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":            true,
		"ranked_jobs_sample": jobsOrEmpty(batch.Jobs),
		"total_jobs":         batch.Total,
	})
}

// jobsOrEmpty keeps an exhausted page serializing as [] rather than null.
func jobsOrEmpty(jobs []feed.ScoredJob) []feed.ScoredJob {
	if jobs == nil {
		return []feed.ScoredJob{}
	}
	return jobs
}
