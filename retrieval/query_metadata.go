package retrieval

import (
	"context"

	"go.uber.org/zap"
)

func (e *Engine) queryMetadata(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool) {
	if filter.Empty() {
		// Nothing to filter on, so this degenerates to semantic search
		results, ok := e.querySemantic(ctx, query, filter, limit)
		return relabel(results, StrategyMetadata), ok
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.StrategyTimeout)
	defer cancel()

	chunks, err := e.store.ListByFilter(ctx, filter)
	if err != nil {
		e.logger.Warn("Metadata listing failed", zap.Error(err))
		return nil, false
	}
	if len(chunks) == 0 {
		return nil, true
	}

	embedding, err := e.embed(ctx, query)
	if err != nil {
		e.logger.Warn("Query embedding failed", zap.Error(err))
		return nil, false
	}

	hits := make([]Hit, 0, len(chunks))
	for _, chunk := range chunks {
		hits = append(hits, Hit{Chunk: chunk, Score: cosineSimilarity(embedding, chunk.Embedding)})
	}

	results := make([]ScoredChunk, 0, len(hits))
	for _, h := range normalizeScores(hits) {
		results = append(results, ScoredChunk{Chunk: h.Chunk, Score: h.Score, Strategy: StrategyMetadata})
	}
	return sortRanked(results, limit), true
}
