package retrieval

import "context"

func (e *Engine) queryKeyword(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool) {
	hits, ok := e.runLeg(ctx, "keyword", func(ctx context.Context) ([]Hit, error) {
		return e.keywordHits(ctx, query, filter, limit)
	})

	results := make([]ScoredChunk, 0, len(hits))
	for _, h := range normalizeScores(hits) {
		results = append(results, ScoredChunk{Chunk: h.Chunk, Score: h.Score, Strategy: StrategyKeyword})
	}
	return sortRanked(results, limit), ok
}
