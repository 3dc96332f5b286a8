package retrieval

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runLeg executes one search leg under the per-strategy timeout. Leg
// failures degrade to an empty list so one slow or broken backend cannot
// sink the whole request; ok is false when that happens so callers know
// the results are partial.
func (e *Engine) runLeg(ctx context.Context, name string, fn func(ctx context.Context) ([]Hit, error)) ([]Hit, bool) {
	legCtx, cancel := context.WithTimeout(ctx, e.cfg.StrategyTimeout)
	defer cancel()

	hits, err := fn(legCtx)
	if err != nil {
		e.logger.Warn("Search leg failed", zap.String("leg", name), zap.Error(err))
		return nil, false
	}
	return hits, true
}

func (e *Engine) queryHybrid(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool) {
	candidateLimit := limit * 2

	var semantic, keyword []Hit
	var semOK, kwOK bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		semantic, semOK = e.runLeg(gctx, "semantic", func(ctx context.Context) ([]Hit, error) {
			return e.semanticHits(ctx, query, filter, candidateLimit)
		})
		return nil
	})
	g.Go(func() error {
		keyword, kwOK = e.runLeg(gctx, "keyword", func(ctx context.Context) ([]Hit, error) {
			return e.keywordHits(ctx, query, filter, candidateLimit)
		})
		return nil
	})
	g.Wait()

	// Weighted sum over normalized scores; a chunk found by only one leg
	// scores zero on the other
	type candidate struct {
		chunk    Chunk
		semantic float64
		keyword  float64
	}
	candidates := make(map[string]*candidate)
	for _, h := range normalizeScores(semantic) {
		candidates[h.Chunk.ID] = &candidate{chunk: h.Chunk, semantic: h.Score}
	}
	for _, h := range normalizeScores(keyword) {
		if c, ok := candidates[h.Chunk.ID]; ok {
			c.keyword = h.Score
		} else {
			candidates[h.Chunk.ID] = &candidate{chunk: h.Chunk, keyword: h.Score}
		}
	}

	results := make([]ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		score := e.cfg.SemanticWeight*c.semantic + e.cfg.KeywordWeight*c.keyword
		results = append(results, ScoredChunk{Chunk: c.chunk, Score: score, Strategy: StrategyHybrid})
	}
	return sortRanked(results, limit), semOK && kwOK
}

// keywordHits searches the lexical index and applies the filter locally.
func (e *Engine) keywordHits(ctx context.Context, query string, filter Filter, limit int) ([]Hit, error) {
	fetchLimit := limit
	if !filter.Empty() {
		fetchLimit = limit * 4
	}
	hits, err := e.index.Search(ctx, query, fetchLimit)
	if err != nil {
		return nil, err
	}
	if filter.Empty() {
		return hits, nil
	}
	kept := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if filter.Match(h.Chunk.Metadata) {
			kept = append(kept, h)
		}
	}
	if len(kept) > limit {
		kept = kept[:limit]
	}
	return kept, nil
}
