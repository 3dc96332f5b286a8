package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"audit-agent/llmclient"
	"audit-agent/retrieval"
	"audit-agent/web/types"
)

type stubRetriever struct {
	results     []retrieval.ScoredChunk
	strategy    retrieval.Strategy
	gotFilter   retrieval.Filter
	gotQuery    string
	gotLimit    int
	gotOverride retrieval.Strategy
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, filter retrieval.Filter, limit int, override retrieval.Strategy) ([]retrieval.ScoredChunk, retrieval.Strategy) {
	s.gotQuery = query
	s.gotFilter = filter
	s.gotLimit = limit
	s.gotOverride = override
	return s.results, s.strategy
}

type stubCompleter struct {
	answer string
	err    error
}

func (s *stubCompleter) Chat(context.Context, []llmclient.Message, *float64) (string, error) {
	return s.answer, s.err
}

func accessReviewResults() []retrieval.ScoredChunk {
	return []retrieval.ScoredChunk{
		{
			Chunk: retrieval.Chunk{
				ID:   "c1",
				Text: "Two terminated users retained active accounts past their separation date.",
				Metadata: map[string]string{
					"document_id":           "d1",
					"company":               "Acme",
					"document_type":         "access_review",
					"compliance_frameworks": "SOX",
					"quality_level":         "exception",
				},
			},
			Score:    0.8,
			Strategy: retrieval.StrategyHybrid,
		},
		{
			Chunk: retrieval.Chunk{
				ID:   "c2",
				Text: "Privileged access for the finance group was recertified without exception.",
				Metadata: map[string]string{
					"document_id":   "d1",
					"company":       "Acme",
					"document_type": "access_review",
					"quality_level": "pass",
				},
			},
			Score:    0.6,
			Strategy: retrieval.StrategyHybrid,
		},
	}
}

func TestAnswerWithContext(t *testing.T) {
	retriever := &stubRetriever{results: accessReviewResults(), strategy: retrieval.StrategyHybrid}
	cs := NewChatService(retriever, &stubCompleter{answer: "Two terminated users kept active access [1]."}, zap.NewNop())

	resp := cs.Answer(context.Background(), types.ChatRequest{
		Question:   "Were terminated users found with access?",
		DocumentID: "d1",
		Limit:      5,
	})

	if resp.Answer != "Two terminated users kept active access [1]." {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if resp.AnswerHTML == "" {
		t.Error("expected rendered HTML answer")
	}
	if len(resp.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(resp.Sources))
	}
	if resp.Sources[0].ChunkID != "c1" || resp.Sources[0].DocumentID != "d1" {
		t.Errorf("unexpected first source %+v", resp.Sources[0])
	}
	if resp.Confidence <= 0 || resp.Confidence > 1 {
		t.Errorf("confidence %v outside (0, 1]", resp.Confidence)
	}
	if resp.Strategy != string(retrieval.StrategyHybrid) {
		t.Errorf("strategy = %q, want hybrid", resp.Strategy)
	}
	if len(resp.SuggestedQuestions) == 0 {
		t.Error("expected suggested follow-up questions for access review context")
	}

	if got := retriever.gotFilter["document_id"]; len(got) != 1 || got[0] != "d1" {
		t.Errorf("document filter not passed to retriever: %v", retriever.gotFilter)
	}
	if retriever.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", retriever.gotLimit)
	}
}

func TestAnswerNoContext(t *testing.T) {
	retriever := &stubRetriever{strategy: retrieval.StrategySemantic}
	cs := NewChatService(retriever, &stubCompleter{answer: "should not be used"}, zap.NewNop())

	resp := cs.Answer(context.Background(), types.ChatRequest{Question: "anything"})

	if !strings.Contains(resp.Answer, "could not find relevant context") {
		t.Errorf("expected honest no-context answer, got %q", resp.Answer)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("expected no sources, got %v", resp.Sources)
	}
	if resp.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", resp.Confidence)
	}
}

func TestAnswerLLMFailureDegrades(t *testing.T) {
	retriever := &stubRetriever{results: accessReviewResults(), strategy: retrieval.StrategyHybrid}
	cs := NewChatService(retriever, &stubCompleter{err: errors.New("llm down")}, zap.NewNop())

	resp := cs.Answer(context.Background(), types.ChatRequest{Question: "Were terminated users found?"})

	if !strings.Contains(resp.Answer, "terminated users retained active accounts") {
		t.Errorf("degraded answer should quote the top passage, got %q", resp.Answer)
	}
	if len(resp.Sources) != 2 {
		t.Errorf("sources should still be attached on LLM failure, got %d", len(resp.Sources))
	}
}

func TestAnswerStrategyOverridePassthrough(t *testing.T) {
	retriever := &stubRetriever{results: accessReviewResults(), strategy: retrieval.StrategyEnsemble}
	cs := NewChatService(retriever, &stubCompleter{answer: "ok"}, zap.NewNop())

	cs.Answer(context.Background(), types.ChatRequest{Question: "q", Strategy: "ensemble"})
	if retriever.gotOverride != retrieval.StrategyEnsemble {
		t.Errorf("override = %q, want ensemble", retriever.gotOverride)
	}
}

func TestFormatContextNumbersBlocks(t *testing.T) {
	text := formatContext(accessReviewResults())
	if !strings.Contains(text, "[1]") || !strings.Contains(text, "[2]") {
		t.Errorf("context blocks not numbered:\n%s", text)
	}
	if !strings.Contains(text, "company: Acme") {
		t.Errorf("context missing provenance:\n%s", text)
	}
	if !strings.Contains(text, "frameworks: unknown") {
		t.Errorf("missing metadata should render as unknown:\n%s", text)
	}
}
