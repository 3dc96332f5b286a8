package retrieval

import (
	"context"
	"testing"
)

func TestEnsembleExpansionLegCoversAllVariants(t *testing.T) {
	// Reachable only through the third expansion variant of "material
	// weakness" ("... remediation"); the original query and the first
	// variant share no vocabulary with it.
	chunk := testChunk("c-rem", "remediation milestones tracked to closure", map[string]string{
		"company": "Acme", "document_type": "access_review",
	})
	engine := newTestEngine(t, &fakeStore{chunks: []Chunk{chunk}}, &fakeIndex{}, nil)

	results, ok := engine.queryEnsemble(context.Background(), "material weakness", nil, 3)
	if !ok {
		t.Error("all legs succeeded, run should be complete")
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Chunk.ID != "c-rem" || results[0].Score <= 0 {
		t.Errorf("chunk matched only by a later query variant scored %.3f, want a positive fused score", results[0].Score)
	}
	if results[0].Strategy != StrategyEnsemble {
		t.Errorf("result labeled %q, want ensemble", results[0].Strategy)
	}
}

func TestEnsembleFailedLegReportsDegraded(t *testing.T) {
	engine := newTestEngine(t, &fakeStore{chunks: corpusChunks()}, &fakeIndex{err: context.DeadlineExceeded}, nil)

	results, ok := engine.queryEnsemble(context.Background(), "terminated users", nil, 3)
	if len(results) == 0 {
		t.Error("expected results from the surviving legs")
	}
	if ok {
		t.Error("run with a failed keyword leg should report itself as degraded")
	}
}
