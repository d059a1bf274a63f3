// Package feed serves a user's ranked job list incrementally. Two consumers
// share one persisted cursor: a batch fetch for request/response clients and
// a one-at-a-time stream for long-lived connections.
package feed

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/ranking"
)

// DefaultBatchSize is the page size served to batch clients.
const DefaultBatchSize = 5

// Store is the persistence surface the feed needs.
type Store interface {
	GetRanking(ctx context.Context, userID uuid.UUID) ([]ranking.Entry, int, error)
	AdvanceCursor(ctx context.Context, userID uuid.UUID, newCount int) error
	GetJobSummary(ctx context.Context, jobID string) (*db.JobSummary, error)
}

// ScoredJob is a resolved job document carrying the score it was ranked at.
type ScoredJob struct {
	db.JobSummary
	Score float64 `json:"score"`
}

// Batch is one page of the feed.
type Batch struct {
	Jobs  []ScoredJob
	Total int
}

// Feed pages through ranked job lists.
type Feed struct {
	store     Store
	log       *zap.SugaredLogger
	batchSize int
}

// New creates a feed over the given store.
func New(store Store, log *zap.SugaredLogger) *Feed {
	return &Feed{store: store, log: log, batchSize: DefaultBatchSize}
}

// NextBatch returns the next page of the user's ranked list and advances the
// persisted cursor by the number of jobs actually resolved. Entries whose
// job document has disappeared are dropped without advancing past anything
// the client never saw, so a retry after a failure re-serves the same page.
func (f *Feed) NextBatch(ctx context.Context, userID uuid.UUID) (*Batch, error) {
	entries, count, err := f.store.GetRanking(ctx, userID)
	if err != nil {
		return nil, err
	}

	jobs, err := f.resolveWindow(ctx, window(entries, count, f.batchSize))
	if err != nil {
		return nil, err
	}

	if len(jobs) > 0 {
		if err := f.store.AdvanceCursor(ctx, userID, count+len(jobs)); err != nil {
			return nil, err
		}
	}

	return &Batch{Jobs: jobs, Total: len(entries)}, nil
}

// PeekBatch is the read-only variant of NextBatch: same page, no cursor
// movement. Used by the debug surface and by callers that must not consume
// the feed.
func (f *Feed) PeekBatch(ctx context.Context, userID uuid.UUID) (*Batch, error) {
	entries, count, err := f.store.GetRanking(ctx, userID)
	if err != nil {
		return nil, err
	}

	jobs, err := f.resolveWindow(ctx, window(entries, count, f.batchSize))
	if err != nil {
		return nil, err
	}

	return &Batch{Jobs: jobs, Total: len(entries)}, nil
}

// resolveWindow fans out job detail lookups and returns the resolved jobs in
// ranked order, dropping entries whose document is gone.
func (f *Feed) resolveWindow(ctx context.Context, entries []ranking.Entry) ([]ScoredJob, error) {
	resolved := make([]*ScoredJob, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			job, err := f.store.GetJobSummary(gctx, entry.ID)
			if err != nil {
				return err
			}
			if job == nil {
				f.log.Debugw("ranked job missing from corpus, skipping", "job_id", entry.ID)
				return nil
			}
			resolved[i] = &ScoredJob{JobSummary: *job, Score: entry.Score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	jobs := make([]ScoredJob, 0, len(resolved))
	for _, job := range resolved {
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

// window slices entries[count : count+size] without going out of bounds.
func window(entries []ranking.Entry, count, size int) []ranking.Entry {
	if count >= len(entries) {
		return nil
	}
	end := count + size
	if end > len(entries) {
		end = len(entries)
	}
	return entries[count:end]
}
