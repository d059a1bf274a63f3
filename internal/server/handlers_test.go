package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/llm"
)

func TestSaveProfile_ServesBatchAndAdvances(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.authToken(t)
	env.data.seedRanking(userID, 8)

	rec := env.do(t, http.MethodGet, "/save-profile", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success    bool             `json:"success"`
		RankedJobs []map[string]any `json:"ranked_jobs"`
		TotalJobs  int              `json:"total_jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Len(t, resp.RankedJobs, 5)
	assert.Equal(t, 8, resp.TotalJobs)
	assert.Equal(t, "job-0", resp.RankedJobs[0]["id"])
	assert.Equal(t, 5, env.data.counts[userID])

	// Second page picks up where the first left off.
	rec = env.do(t, http.MethodGet, "/save-profile", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.RankedJobs, 3)
	assert.Equal(t, "job-5", resp.RankedJobs[0]["id"])
}

func TestSaveProfile_ExhaustedListReturnsEmptyArray(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.authToken(t)
	env.data.seedRanking(userID, 2)
	env.data.counts[userID] = 2

	rec := env.do(t, http.MethodGet, "/save-profile", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ranked_jobs":[]`)
}

func TestSaveProfile_NoProfileIs404(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.authToken(t)

	rec := env.do(t, http.MethodGet, "/save-profile", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMe_ReturnsStoredProfile(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.authToken(t)
	env.data.profiles[userID] = &db.Profile{
		PersonalInfo: map[string]any{"name": "Jane"},
		Preferences:  map[string]any{"technical_skills": []any{"Go"}},
	}

	rec := env.do(t, http.MethodGet, "/me", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Jane"`)
}

func TestMe_NoProfileIs404(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.authToken(t)

	rec := env.do(t, http.MethodGet, "/me", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatch_SavesAndLists(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.authToken(t)
	env.data.seedRanking(userID, 1)

	rec := env.do(t, http.MethodPost, "/match", token, `{"job_id":"job-0","score":0.91}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/matches", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool             `json:"success"`
		Matches []map[string]any `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "job-0", resp.Matches[0]["id"])
	assert.InDelta(t, 0.91, resp.Matches[0]["score"].(float64), 1e-9)
}

func TestMatch_MissingJobIDIs400(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.authToken(t)

	rec := env.do(t, http.MethodPost, "/match", token, `{"score":0.5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatches_DropsDeletedJobs(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.authToken(t)
	env.data.seedRanking(userID, 2)

	env.do(t, http.MethodPost, "/match", token, `{"job_id":"job-0","score":0.9}`)
	env.do(t, http.MethodPost, "/match", token, `{"job_id":"job-1","score":0.8}`)
	delete(env.data.jobs, "job-0")

	rec := env.do(t, http.MethodGet, "/matches", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Matches []map[string]any `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "job-1", resp.Matches[0]["id"])
}

func TestDebugRankings_DoesNotConsumeFeed(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.authToken(t)
	env.data.seedRanking(userID, 6)

	rec := env.do(t, http.MethodGet, "/debug/rankings", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.data.counts[userID])

	var resp struct {
		Sample []map[string]any `json:"ranked_jobs_sample"`
		Total  int              `json:"total_jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Sample, 5)
	assert.Equal(t, 6, resp.Total)
}

// multipartResume builds a resume upload request body.
func multipartResume(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestParseResume_ReturnsStructuredProfile(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.authToken(t)

	body, contentType := multipartResume(t, "resume.txt", "Jane. Go engineer.")
	req := httptest.NewRequest(http.MethodPost, "/parse-resume", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success  bool           `json:"success"`
		InfoDict map[string]any `json:"info_dict"`
		JobDict  map[string]any `json:"job_dict"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Jane", resp.InfoDict["name"])
	assert.Contains(t, resp.JobDict, "technical_skills")
}

func TestParseResume_MissingFileIs400(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.authToken(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/parse-resume", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseResume_QuotaExceededIs429(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.authToken(t)
	env.ingest.parsed = nil
	env.ingest.err = fmt.Errorf("structuring: %w", llm.ErrQuotaExceeded)

	body, contentType := multipartResume(t, "resume.txt", "Jane. Go engineer.")
	req := httptest.NewRequest(http.MethodPost, "/parse-resume", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
