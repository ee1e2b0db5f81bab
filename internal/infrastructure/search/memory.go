// Package search holds the passage retrieval backends. The in-memory
// retriever here serves CLI demos and tests; the OpenSearch subpackage is the
// production backend.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/clearclaim/clearclaim/internal/domain/decision"
	"github.com/clearclaim/clearclaim/internal/domain/query"
)

// InMemoryRetriever scores a fixed passage corpus by term overlap with the
// expanded query. Scoring is deterministic: ties break on source ID.
type InMemoryRetriever struct {
	corpus []decision.Passage
	topK   int
}

// NewInMemory builds a retriever over a corpus. topK below 1 defaults to 10.
func NewInMemory(corpus []decision.Passage, topK int) *InMemoryRetriever {
	if topK <= 0 {
		topK = 10
	}
	return &InMemoryRetriever{corpus: corpus, topK: topK}
}

// Name identifies this backend in logs and metrics.
func (r *InMemoryRetriever) Name() string { return "memory" }

// Retrieve returns the topK passages with at least one matching term.
func (r *InMemoryRetriever) Retrieve(ctx context.Context, u *query.Understanding) ([]decision.Passage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := searchTerms(u)
	if len(terms) == 0 {
		return nil, nil
	}

	var scored []decision.Passage
	for _, p := range r.corpus {
		lower := strings.ToLower(p.Text)
		matches := 0
		for _, t := range terms {
			if strings.Contains(lower, t) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		p.Score = float64(matches) / float64(len(terms))
		scored = append(scored, p)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].SourceID < scored[j].SourceID
	})
	if len(scored) > r.topK {
		scored = scored[:r.topK]
	}
	return scored, nil
}

func searchTerms(u *query.Understanding) []string {
	if u == nil {
		return nil
	}
	seen := map[string]bool{}
	for _, t := range u.Expansion.Terms {
		seen[strings.ToLower(t.Term)] = true
	}
	for _, a := range u.Attributes.All() {
		if a.Known && a.Text != "" {
			seen[strings.ToLower(a.Text)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
