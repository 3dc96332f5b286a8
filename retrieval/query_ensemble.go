package retrieval

import (
	"context"

	"golang.org/x/sync/errgroup"
)

func (e *Engine) queryEnsemble(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool) {
	candidateLimit := limit * 2

	// Semantic, keyword and query-expansion legs run in parallel and are
	// fused by configured weight. The expansion leg is the full variant
	// merge, so chunks only reachable through an expanded term still
	// enter the fusion.
	var semantic, keyword, expansion []Hit
	var semOK, kwOK, expOK bool
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
	g.Go(func() error {
		expansion, expOK = e.expansionHits(gctx, query, filter, candidateLimit)
		return nil
	})
	g.Wait()

	fused := Fuse(
		[][]Hit{semantic, keyword, expansion},
		[]float64{e.cfg.EnsembleSemanticWeight, e.cfg.EnsembleKeywordWeight, e.cfg.EnsembleExpansionWeight},
		limit,
		StrategyEnsemble,
	)
	return fused, semOK && kwOK && expOK
}
