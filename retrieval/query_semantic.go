package retrieval

import "context"

// semanticHits runs a vector similarity search for the query and returns
// raw hits. All strategies that need a semantic leg go through here.
func (e *Engine) semanticHits(ctx context.Context, query string, filter Filter, limit int) ([]Hit, error) {
	embedding, err := e.embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.store.SimilaritySearch(ctx, embedding, filter, limit)
}

func (e *Engine) querySemantic(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool) {
	hits, ok := e.runLeg(ctx, "semantic", func(ctx context.Context) ([]Hit, error) {
		return e.semanticHits(ctx, query, filter, limit)
	})

	results := make([]ScoredChunk, 0, len(hits))
	for _, h := range normalizeScores(hits) {
		results = append(results, ScoredChunk{Chunk: h.Chunk, Score: h.Score, Strategy: StrategySemantic})
	}
	return sortRanked(results, limit), ok
}
