package retrieval

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Retrieve runs a retrieval strategy for the query and returns ranked,
// deduplicated results of at most limit chunks. When override names a valid
// strategy it is used as-is; otherwise the selector picks one from the
// query's surface features. Collaborator failures degrade to fewer (or no)
// results rather than an error.
func (e *Engine) Retrieve(ctx context.Context, query string, filter Filter, limit int, override Strategy) ([]ScoredChunk, Strategy) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, override
	}
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	strategy := override
	if !strategy.Valid() {
		strategy = e.selector.Select(query, !filter.Empty())
	}

	key := cacheKey(query, filter, strategy, limit)
	if cached, ok := e.cache.Get(key); ok {
		e.logger.Debug("Cache hit", zap.String("strategy", string(strategy)))
		return cached, strategy
	}

	start := time.Now()
	results, ok := e.strategies[strategy](ctx, query, filter, limit)
	e.logger.Info("Retrieval complete",
		zap.String("strategy", string(strategy)),
		zap.Int("results", len(results)),
		zap.Bool("complete", ok),
		zap.Duration("elapsed", time.Since(start)))

	// Only complete runs are cached. A run degraded by a collaborator
	// failure would otherwise pin its partial results for the full TTL.
	if ok {
		e.cache.Put(key, results)
	}
	return results, strategy
}

// InvalidateCache drops every cached result. Callers invoke it after the
// corpus changes so stale rankings are not served against the new corpus.
func (e *Engine) InvalidateCache() {
	e.cache.Purge()
}

// SelectStrategy exposes the selector's decision without running retrieval.
func (e *Engine) SelectStrategy(query string, filter Filter) Strategy {
	return e.selector.Select(strings.TrimSpace(query), !filter.Empty())
}
