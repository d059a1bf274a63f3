package feed

import (
	"context"

	"github.com/google/uuid"

	"github.com/CoderSATTY/Jobs-Tinder/internal/ranking"
)

// Stream serves one ranked job per request over a long-lived connection.
// The ranked list and cursor are loaded once at open; the in-memory cursor
// is a cache, and every advance is persisted so a reconnect resumes where
// the client left off.
type Stream struct {
	feed    *Feed
	userID  uuid.UUID
	entries []ranking.Entry
	count   int
}

// OpenStream loads the user's ranking state and returns a stream positioned
// at the persisted cursor.
func (f *Feed) OpenStream(ctx context.Context, userID uuid.UUID) (*Stream, error) {
	entries, count, err := f.store.GetRanking(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Stream{feed: f, userID: userID, entries: entries, count: count}, nil
}

// Next returns the next ranked job. end=true signals the list is exhausted;
// the cursor is not advanced in that case and the stream stays usable. A
// later re-ingestion repopulates the list, so exhaustion is re-checked
// against the store rather than the cached copy. A nil job with end=false
// means the entry's document has gone stale and was skipped; unlike the
// batch path the cursor still advances, since each advance answers one
// explicit client request and a one-item skip beats re-offering a dead
// entry forever.
func (s *Stream) Next(ctx context.Context) (*ScoredJob, bool, error) {
	if s.count >= len(s.entries) {
		entries, count, err := s.feed.store.GetRanking(ctx, s.userID)
		if err != nil {
			return nil, false, err
		}
		s.entries, s.count = entries, count
		if s.count >= len(s.entries) {
			return nil, true, nil
		}
	}

	entry := s.entries[s.count]
	s.count++
	if err := s.feed.store.AdvanceCursor(ctx, s.userID, s.count); err != nil {
		return nil, false, err
	}

	job, err := s.feed.store.GetJobSummary(ctx, entry.ID)
	if err != nil {
		return nil, false, err
	}
	if job == nil {
		s.feed.log.Debugw("streamed job missing from corpus, skipping", "job_id", entry.ID)
		return nil, false, nil
	}

	return &ScoredJob{JobSummary: *job, Score: entry.Score}, false, nil
}
