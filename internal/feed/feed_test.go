package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/logger"
	"github.com/CoderSATTY/Jobs-Tinder/internal/ranking"
)

// fakeStore is an in-memory Store double.
type fakeStore struct {
	mu      sync.Mutex
	entries []ranking.Entry
	count   int
	jobs    map[string]*db.JobSummary
	known   bool
}

func newFakeStore(entries []ranking.Entry) *fakeStore {
	s := &fakeStore{entries: entries, jobs: make(map[string]*db.JobSummary), known: true}
	for _, e := range entries {
		s.jobs[e.ID] = &db.JobSummary{ID: e.ID, Title: "Job " + e.ID}
	}
	return s
}

func (s *fakeStore) GetRanking(_ context.Context, _ uuid.UUID) ([]ranking.Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known {
		return nil, 0, db.ErrProfileNotFound
	}
	return s.entries, s.count, nil
}

func (s *fakeStore) AdvanceCursor(_ context.Context, _ uuid.UUID, newCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if newCount > s.count {
		s.count = newCount
	}
	return nil
}

func (s *fakeStore) GetJobSummary(_ context.Context, jobID string) (*db.JobSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[jobID], nil
}

func entriesN(n int) []ranking.Entry {
	entries := make([]ranking.Entry, n)
	for i := range entries {
		entries[i] = ranking.Entry{ID: fmt.Sprintf("job-%d", i), Score: 1.0 - float64(i)*0.1}
	}
	return entries
}

func newTestFeed(store Store) *Feed {
	return New(store, logger.NewNop().Sugar())
}

func TestNextBatch_ServesPageAndAdvances(t *testing.T) {
	store := newFakeStore(entriesN(8))
	f := newTestFeed(store)

	batch, err := f.NextBatch(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, batch.Jobs, 5)
	assert.Equal(t, 8, batch.Total)
	assert.Equal(t, "job-0", batch.Jobs[0].ID)
	assert.InDelta(t, 1.0, batch.Jobs[0].Score, 1e-9)
	assert.Equal(t, 5, store.count)
}

func TestNextBatch_AdvancesOnlyByResolvedCount(t *testing.T) {
	store := newFakeStore(entriesN(5))
	delete(store.jobs, "job-2") // stale index entry

	f := newTestFeed(store)
	batch, err := f.NextBatch(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, batch.Jobs, 4)
	assert.Equal(t, 4, store.count)
	for _, job := range batch.Jobs {
		assert.NotEqual(t, "job-2", job.ID)
	}
}

func TestNextBatch_PreservesRankedOrder(t *testing.T) {
	store := newFakeStore(entriesN(5))
	f := newTestFeed(store)

	batch, err := f.NextBatch(context.Background(), uuid.New())
	require.NoError(t, err)

	want := []string{"job-0", "job-1", "job-2", "job-3", "job-4"}
	for i, job := range batch.Jobs {
		assert.Equal(t, want[i], job.ID)
	}
}

func TestNextBatch_ExhaustedListDoesNotAdvance(t *testing.T) {
	store := newFakeStore(entriesN(3))
	store.count = 3

	f := newTestFeed(store)
	batch, err := f.NextBatch(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Empty(t, batch.Jobs)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 3, store.count)
}

func TestNextBatch_UnknownUser(t *testing.T) {
	store := newFakeStore(nil)
	store.known = false

	f := newTestFeed(store)
	_, err := f.NextBatch(context.Background(), uuid.New())
	assert.ErrorIs(t, err, db.ErrProfileNotFound)
}

func TestPeekBatch_NeverAdvances(t *testing.T) {
	store := newFakeStore(entriesN(8))
	f := newTestFeed(store)

	first, err := f.PeekBatch(context.Background(), uuid.New())
	require.NoError(t, err)
	second, err := f.PeekBatch(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 0, store.count)
}

func TestStream_ProgressesOneAtATime(t *testing.T) {
	store := newFakeStore(entriesN(3))
	f := newTestFeed(store)

	stream, err := f.OpenStream(context.Background(), uuid.New())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		job, end, err := stream.Next(context.Background())
		require.NoError(t, err)
		assert.False(t, end)
		require.NotNil(t, job)
		assert.Equal(t, fmt.Sprintf("job-%d", i), job.ID)
		assert.Equal(t, i+1, store.count)
	}

	_, end, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, end)
	assert.Equal(t, 3, store.count)
}

func TestStream_EndWhenAlreadyExhausted(t *testing.T) {
	store := newFakeStore(entriesN(2))
	store.count = 2

	f := newTestFeed(store)
	stream, err := f.OpenStream(context.Background(), uuid.New())
	require.NoError(t, err)

	job, end, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, end)
	assert.Nil(t, job)
	assert.Equal(t, 2, store.count)
}

func TestStream_SkipsStaleEntryButAdvances(t *testing.T) {
	store := newFakeStore(entriesN(2))
	delete(store.jobs, "job-0")

	f := newTestFeed(store)
	stream, err := f.OpenStream(context.Background(), uuid.New())
	require.NoError(t, err)

	job, end, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, end)
	assert.Nil(t, job)
	assert.Equal(t, 1, store.count)

	job, end, err = stream.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, end)
	require.NotNil(t, job)
	assert.Equal(t, "job-1", job.ID)
}

func TestStream_RecoversAfterReingestion(t *testing.T) {
	store := newFakeStore(nil)
	f := newTestFeed(store)

	stream, err := f.OpenStream(context.Background(), uuid.New())
	require.NoError(t, err)

	_, end, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, end)

	// A re-ingestion replaces the list and resets the cursor; the live
	// stream picks the new list up on its next request.
	fresh := newFakeStore(entriesN(1))
	store.mu.Lock()
	store.entries = fresh.entries
	store.count = 0
	store.jobs = fresh.jobs
	store.mu.Unlock()

	job, end, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, end)
	require.NotNil(t, job)
	assert.Equal(t, "job-0", job.ID)
}

func TestWindow_Bounds(t *testing.T) {
	entries := entriesN(4)

	assert.Len(t, window(entries, 0, 5), 4)
	assert.Len(t, window(entries, 2, 5), 2)
	assert.Nil(t, window(entries, 4, 5))
	assert.Nil(t, window(entries, 9, 5))
}
