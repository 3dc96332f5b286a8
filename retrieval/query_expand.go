package retrieval

import (
	"context"
	"sync"
)

// expansionHits runs one semantic search per query variant and merges the
// hit lists, keeping each chunk once with its best normalized score across
// variants. The merged list is what both the expansion strategy and the
// ensemble's expansion leg rank over.
func (e *Engine) expansionHits(ctx context.Context, query string, filter Filter, limit int) ([]Hit, bool) {
	variants := e.expander.Expand(query)

	// One semantic search per variant, run in parallel and collected by
	// index so merge order stays deterministic
	perVariant := make([][]Hit, len(variants))
	oks := make([]bool, len(variants))
	var wg sync.WaitGroup
	for i, variant := range variants {
		wg.Add(1)
		go func(i int, variant string) {
			defer wg.Done()
			perVariant[i], oks[i] = e.runLeg(ctx, "expansion:"+variant, func(ctx context.Context) ([]Hit, error) {
				return e.semanticHits(ctx, variant, filter, limit)
			})
		}(i, variant)
	}
	wg.Wait()

	// Keep each chunk once with the best score across variants. The
	// original query is variant zero, so its scores win ties.
	best := make(map[string]int)
	var merged []Hit
	allOK := true
	for i, hits := range perVariant {
		allOK = allOK && oks[i]
		for _, h := range normalizeScores(hits) {
			at, seen := best[h.Chunk.ID]
			if !seen {
				best[h.Chunk.ID] = len(merged)
				merged = append(merged, h)
				continue
			}
			if h.Score > merged[at].Score {
				merged[at].Score = h.Score
			}
		}
	}
	return merged, allOK
}

func (e *Engine) queryExpansion(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool) {
	hits, ok := e.expansionHits(ctx, query, filter, limit)

	results := make([]ScoredChunk, 0, len(hits))
	for _, h := range hits {
		results = append(results, ScoredChunk{Chunk: h.Chunk, Score: h.Score, Strategy: StrategyExpansion})
	}
	return sortRanked(results, limit), ok
}
