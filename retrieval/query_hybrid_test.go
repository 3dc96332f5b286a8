package retrieval

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func newWeightedEngine(t *testing.T, store ChunkStore, index KeywordIndex, semantic, keyword float64) *Engine {
	t.Helper()
	engine, err := NewEngine(Config{
		DefaultLimit:   10,
		SemanticWeight: semantic,
		KeywordWeight:  keyword,
	}, store, index, wordEmbed, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestHybridPureSemanticWeightMatchesSemantic(t *testing.T) {
	store := &fakeStore{chunks: corpusChunks()}
	index := &fakeIndex{hits: []Hit{{Chunk: corpusChunks()[2], Score: 9.9}}}
	engine := newWeightedEngine(t, store, index, 1.0, 0.0001)

	query := "terminated users access review"
	hybrid, _ := engine.queryHybrid(context.Background(), query, nil, 3)
	semantic, _ := engine.querySemantic(context.Background(), query, nil, 3)

	if len(hybrid) == 0 || len(semantic) == 0 {
		t.Fatal("expected results from both strategies")
	}
	if hybrid[0].Chunk.ID != semantic[0].Chunk.ID {
		t.Errorf("with near-zero keyword weight, hybrid top = %q, semantic top = %q",
			hybrid[0].Chunk.ID, semantic[0].Chunk.ID)
	}
}

func TestHybridBothLegsBoostSharedChunk(t *testing.T) {
	chunks := corpusChunks()
	// The keyword leg strongly favors c2, which only weakly matches the query
	index := &fakeIndex{hits: []Hit{
		{Chunk: chunks[1], Score: 8.0},
		{Chunk: chunks[0], Score: 7.5},
	}}
	engine := newWeightedEngine(t, &fakeStore{chunks: chunks}, index, 0.7, 0.3)

	results, ok := engine.queryHybrid(context.Background(), "terminated users with active accounts", nil, 3)
	if !ok {
		t.Error("both legs succeeded, run should be complete")
	}
	if len(results) == 0 {
		t.Fatal("expected hybrid results")
	}
	// c1 leads the semantic leg and appears in the keyword leg, so it must
	// outrank the keyword-only leader
	if results[0].Chunk.ID != "c1" {
		t.Errorf("top hybrid result = %q, want c1", results[0].Chunk.ID)
	}
	for _, sc := range results {
		if sc.Strategy != StrategyHybrid {
			t.Errorf("result %q labeled %q, want hybrid", sc.Chunk.ID, sc.Strategy)
		}
	}
}

func TestHybridKeywordLegFailureDegrades(t *testing.T) {
	store := &fakeStore{chunks: corpusChunks()}
	index := &fakeIndex{err: context.DeadlineExceeded}
	engine := newWeightedEngine(t, store, index, 0.7, 0.3)

	results, ok := engine.queryHybrid(context.Background(), "terminated users", nil, 3)
	if len(results) == 0 {
		t.Error("expected semantic-only results when keyword leg fails")
	}
	if ok {
		t.Error("run with a failed leg should report itself as degraded")
	}
}
