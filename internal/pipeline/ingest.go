// Package pipeline orchestrates resume ingestion: extract text, structure it
// with the LLM, persist the profile, then recompute the user's job ranking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CoderSATTY/Jobs-Tinder/internal/db"
	"github.com/CoderSATTY/Jobs-Tinder/internal/extraction"
	"github.com/CoderSATTY/Jobs-Tinder/internal/llm"
	"github.com/CoderSATTY/Jobs-Tinder/internal/profile"
	"github.com/CoderSATTY/Jobs-Tinder/internal/ranking"
)

// ErrCorpusEmpty indicates there are no jobs to rank against.
var ErrCorpusEmpty = errors.New("job corpus is empty")

// Store is the persistence surface the pipeline needs.
type Store interface {
	ReplaceProfile(ctx context.Context, userID uuid.UUID, p *db.Profile) error
	ReplaceRanking(ctx context.Context, userID uuid.UUID, entries []ranking.Entry) error
	LoadCorpus(ctx context.Context) ([]ranking.Candidate, error)
}

// Pipeline runs the ingest sequence.
type Pipeline struct {
	extractor  extraction.Extractor
	structurer *profile.Structurer
	embedder   llm.Client
	store      Store
	log        *zap.SugaredLogger

	wg sync.WaitGroup
}

// New creates an ingest pipeline.
func New(extractor extraction.Extractor, structurer *profile.Structurer, embedder llm.Client, store Store, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		structurer: structurer,
		embedder:   embedder,
		store:      store,
		log:        log,
	}
}

// Ingest processes an uploaded resume. The profile save is the commit
// point: once it succeeds the client gets the structured profile back even
// if ranking later fails. Ranking runs detached because it needs a corpus
// scan plus an embedding call, and a failure there must leave the user with
// a saved profile and an empty list, not a failed upload.
func (p *Pipeline) Ingest(ctx context.Context, userID uuid.UUID, filename string, data []byte) (*profile.StructuredProfile, error) {
	text, err := p.extractor.Extract(ctx, filename, data)
	if err != nil {
		return nil, err
	}

	parsed, err := p.structurer.Structure(ctx, text)
	if err != nil {
		return nil, err
	}

	err = p.store.ReplaceProfile(ctx, userID, &db.Profile{
		PersonalInfo:     parsed.PersonalInfo,
		Preferences:      parsed.Preferences,
		DiscoveredFields: parsed.DiscoveredFields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	rankCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.RecomputeRanking(rankCtx, userID, parsed.Preferences); err != nil {
			p.log.Errorw("ranking recompute failed", "user_id", userID, "error", err)
		}
	}()

	return parsed, nil
}

// RecomputeRanking embeds the preference profile, ranks the corpus against
// it, and replaces the stored ranking (which also resets the cursor).
func (p *Pipeline) RecomputeRanking(ctx context.Context, userID uuid.UUID, preferences map[string]any) error {
	canonical, err := profile.CanonicalText(preferences)
	if err != nil {
		return err
	}

	query, err := p.embedder.Embed(ctx, canonical)
	if err != nil {
		return fmt.Errorf("failed to embed preference profile: %w", err)
	}

	candidates, err := p.store.LoadCorpus(ctx)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return ErrCorpusEmpty
	}

	entries := ranking.Rank(query, candidates, ranking.DefaultTopK)
	p.log.Infow("ranking recomputed", "user_id", userID, "candidates", len(candidates), "ranked", len(entries))

	return p.store.ReplaceRanking(ctx, userID, entries)
}

// Wait blocks until detached ranking work has finished. Used on shutdown
// and in tests.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
