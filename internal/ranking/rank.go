// Package ranking scores job candidates against a user's preference
// embedding and produces the deduplicated, score-ordered list that feeds
// pagination.
package ranking

import (
	"sort"
	"strings"

	"github.com/CoderSATTY/Jobs-Tinder/internal/similarity"
)

// DefaultTopK is the internal backlog depth kept per user. The externally
// served page size is much smaller; a deep backlog lets the feed run for a
// long time without recomputing.
const DefaultTopK = 3000

// Candidate is one job posting as seen by the ranker. Jobs without an
// embedding are skipped.
type Candidate struct {
	ID        string
	Title     string
	Embedding []float64
}

// Entry is a ranked reference to a job: the id plus its cosine score.
type Entry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Rank scores candidates against the query vector and returns entries
// sorted by score descending, deduplicated by normalized title, truncated
// to topK. The sort is stable, so ties keep the original candidate order.
// Candidates whose embedding dimension does not match the query are
// skipped the same way as candidates with no embedding at all.
func Rank(query []float64, candidates []Candidate, topK int) []Entry {
	if topK <= 0 || len(candidates) == 0 {
		return []Entry{}
	}

	type scored struct {
		Entry
		title string
	}

	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		score, err := similarity.Cosine(query, c.Embedding)
		if err != nil {
			continue
		}
		results = append(results, scored{
			Entry: Entry{ID: c.ID, Score: score},
			title: normalizeTitle(c.Title),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	// Keep only the first (highest-scoring) occurrence of each title.
	// Entries with an empty title are dropped entirely.
	seen := make(map[string]bool, len(results))
	unique := make([]Entry, 0, len(results))
	for _, r := range results {
		if r.title == "" || seen[r.title] {
			continue
		}
		seen[r.title] = true
		unique = append(unique, r.Entry)
		if len(unique) == topK {
			break
		}
	}

	return unique
}

// normalizeTitle is the dedupe key: trimmed and lowercased.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
