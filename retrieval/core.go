package retrieval

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "audit-agent/errors"
)

// Chunk is a unit of indexed document text. Metadata values are flat strings;
// multi-valued fields (compliance_frameworks, control_ids) are comma-joined.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// Hit is a chunk paired with a raw score from a single search backend.
// Scores from different backends are not comparable until normalized.
type Hit struct {
	Chunk Chunk
	Score float64
}

// ScoredChunk is a ranked retrieval result. Score is on a normalized scale
// and Strategy records which strategy produced it.
type ScoredChunk struct {
	Chunk    Chunk
	Score    float64
	Strategy Strategy
}

// Strategy identifies one of the retrieval strategies the engine can run.
type Strategy string

const (
	StrategySemantic  Strategy = "semantic"
	StrategyKeyword   Strategy = "keyword"
	StrategyHybrid    Strategy = "hybrid"
	StrategyExpansion Strategy = "query_expansion"
	StrategyMultiHop  Strategy = "multi_hop"
	StrategyMetadata  Strategy = "metadata_filtered"
	StrategyEnsemble  Strategy = "ensemble"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySemantic, StrategyKeyword, StrategyHybrid, StrategyExpansion,
		StrategyMultiHop, StrategyMetadata, StrategyEnsemble:
		return true
	}
	return false
}

// ChunkStore is the vector-store side of retrieval.
type ChunkStore interface {
	// SimilaritySearch returns up to limit chunks nearest to the embedding,
	// restricted to chunks matching the filter when it is non-empty.
	SimilaritySearch(ctx context.Context, embedding []float32, filter Filter, limit int) ([]Hit, error)

	// ListByFilter returns every chunk matching the filter, unranked.
	ListByFilter(ctx context.Context, filter Filter) ([]Chunk, error)
}

// KeywordIndex is the lexical side of retrieval.
type KeywordIndex interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// EmbeddingFunc turns text into a vector.
type EmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

// Config carries the retrieval engine's tuning knobs.
type Config struct {
	DefaultLimit            int
	SemanticWeight          float64
	KeywordWeight           float64
	EnsembleSemanticWeight  float64
	EnsembleKeywordWeight   float64
	EnsembleExpansionWeight float64
	CacheTTL                time.Duration
	CacheMaxEntries         int
	MaxHops                 int
	MinHopResults           int
	StrategyTimeout         time.Duration
	ShortQueryTokens        int
	LongQueryTokens         int
	MaxQueryVariants        int
}

func (c *Config) withDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 10
	}
	if c.SemanticWeight <= 0 && c.KeywordWeight <= 0 {
		c.SemanticWeight = 0.7
		c.KeywordWeight = 0.3
	}
	if c.EnsembleSemanticWeight <= 0 {
		c.EnsembleSemanticWeight = 1.0
	}
	if c.EnsembleKeywordWeight <= 0 {
		c.EnsembleKeywordWeight = 1.0
	}
	if c.EnsembleExpansionWeight <= 0 {
		c.EnsembleExpansionWeight = 1.0
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.CacheMaxEntries <= 0 {
		c.CacheMaxEntries = 256
	}
	if c.MaxHops <= 0 {
		c.MaxHops = 2
	}
	if c.MinHopResults <= 0 {
		c.MinHopResults = 2
	}
	if c.StrategyTimeout <= 0 {
		c.StrategyTimeout = 10 * time.Second
	}
	if c.ShortQueryTokens <= 0 {
		c.ShortQueryTokens = 6
	}
	if c.LongQueryTokens <= c.ShortQueryTokens {
		c.LongQueryTokens = c.ShortQueryTokens + 8
	}
	if c.MaxQueryVariants <= 0 {
		c.MaxQueryVariants = 5
	}
}

// runFunc executes one strategy. ok reports whether every collaborator call
// succeeded; degraded results are still returned but must not be cached.
type runFunc func(ctx context.Context, query string, filter Filter, limit int) ([]ScoredChunk, bool)

// Engine runs retrieval strategies over a chunk store and keyword index.
type Engine struct {
	cfg      Config
	store    ChunkStore
	index    KeywordIndex
	embed    EmbeddingFunc
	expander *Expander
	selector *Selector
	cache    *ResultCache
	logger   *zap.Logger

	strategies map[Strategy]runFunc
}

// NewEngine wires an engine from its collaborators. Any zero config field
// falls back to a sensible default.
func NewEngine(cfg Config, store ChunkStore, index KeywordIndex, embed EmbeddingFunc, logger *zap.Logger) (*Engine, error) {
	if store == nil || index == nil || embed == nil {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "engine requires store, index and embedder")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.withDefaults()

	e := &Engine{
		cfg:      cfg,
		store:    store,
		index:    index,
		embed:    embed,
		expander: NewExpander(cfg.MaxQueryVariants),
		cache:    NewResultCache(cfg.CacheMaxEntries, cfg.CacheTTL),
		logger:   logger.Named("retrieval"),
	}
	e.selector = NewSelector(e.expander, cfg.ShortQueryTokens, cfg.LongQueryTokens)
	e.strategies = map[Strategy]runFunc{
		StrategySemantic:  e.querySemantic,
		StrategyKeyword:   e.queryKeyword,
		StrategyHybrid:    e.queryHybrid,
		StrategyExpansion: e.queryExpansion,
		StrategyMultiHop:  e.queryMultiHop,
		StrategyMetadata:  e.queryMetadata,
		StrategyEnsemble:  e.queryEnsemble,
	}
	return e, nil
}
