package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"audit-agent/classify"
	"audit-agent/llmclient"
	"audit-agent/retrieval"
	"audit-agent/web/format"
	"audit-agent/web/types"
)

const systemPrompt = `You are an audit and compliance assistant. Answer the question using only the provided document context. Cite the context block numbers you relied on. If the context does not contain the answer, say so plainly.`

// Retriever is the slice of the retrieval engine the chat service needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, filter retrieval.Filter, limit int, override retrieval.Strategy) ([]retrieval.ScoredChunk, retrieval.Strategy)
}

// ChatCompleter generates an answer from chat messages.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []llmclient.Message, temperature *float64) (string, error)
}

type ChatService struct {
	retriever Retriever
	llm       ChatCompleter
	logger    *zap.Logger
}

func NewChatService(retriever Retriever, llm ChatCompleter, logger *zap.Logger) *ChatService {
	return &ChatService{
		retriever: retriever,
		llm:       llm,
		logger:    logger.Named("chat"),
	}
}

// Answer retrieves context for the question and synthesizes a grounded
// answer. Retrieval or LLM failures degrade to an honest fallback answer
// instead of an error.
func (cs *ChatService) Answer(ctx context.Context, req types.ChatRequest) types.ChatResponse {
	filter := buildFilter(req)

	results, strategy := cs.retriever.Retrieve(ctx, req.Question, filter, req.Limit, retrieval.Strategy(req.Strategy))
	resp := types.ChatResponse{Strategy: string(strategy)}

	if len(results) == 0 {
		resp.Answer = "I could not find relevant context in the uploaded documents for that question. Try rephrasing it or uploading the documents it concerns."
		resp.AnswerHTML = format.RenderHTML(resp.Answer)
		return resp
	}

	answer, err := cs.llm.Chat(ctx, []llmclient.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: formatContext(results) + "\n\nQuestion: " + req.Question},
	}, nil)
	if err != nil {
		cs.logger.Warn("Answer synthesis failed, returning context summary", zap.Error(err))
		answer = "The answer service is currently unavailable. The most relevant passage found was:\n\n" + excerpt(results[0].Chunk.Text, 500)
	}

	resp.Answer = answer
	resp.AnswerHTML = format.RenderHTML(answer)
	resp.Sources = sourceRefs(results)
	resp.Confidence = confidence(results)
	resp.SuggestedQuestions = suggestedQuestions(results)
	return resp
}

func buildFilter(req types.ChatRequest) retrieval.Filter {
	filter := retrieval.Filter{}
	for key, values := range req.Filters {
		filter[key] = append([]string(nil), values...)
	}
	if req.DocumentID != "" {
		filter["document_id"] = []string{req.DocumentID}
	}
	if filter.Empty() {
		return nil
	}
	return filter
}

// formatContext renders retrieved chunks as numbered context blocks with
// their provenance so the model can cite them.
func formatContext(results []retrieval.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, sc := range results {
		meta := sc.Chunk.Metadata
		b.WriteString(fmt.Sprintf("\n[%d] (company: %s, type: %s, frameworks: %s, quality: %s)\n",
			i+1, orUnknown(meta["company"]), orUnknown(meta["document_type"]),
			orUnknown(meta["compliance_frameworks"]), orUnknown(meta["quality_level"])))
		b.WriteString(sc.Chunk.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}

// confidence is the mean retrieval score clamped to [0, 1].
func confidence(results []retrieval.ScoredChunk) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, sc := range results {
		sum += sc.Score
	}
	mean := sum / float64(len(results))
	if mean < 0 {
		return 0
	}
	if mean > 1 {
		return 1
	}
	return mean
}

func sourceRefs(results []retrieval.ScoredChunk) []types.SourceRef {
	refs := make([]types.SourceRef, 0, len(results))
	for _, sc := range results {
		refs = append(refs, types.SourceRef{
			ChunkID:      sc.Chunk.ID,
			DocumentID:   sc.Chunk.Metadata["document_id"],
			Company:      sc.Chunk.Metadata["company"],
			DocumentType: sc.Chunk.Metadata["document_type"],
			Score:        sc.Score,
			Excerpt:      excerpt(sc.Chunk.Text, 240),
		})
	}
	return refs
}

func excerpt(text string, maxChars int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxChars {
		return text
	}
	cut := text[:maxChars]
	if idx := strings.LastIndex(cut, " "); idx > maxChars/2 {
		cut = cut[:idx]
	}
	return cut + "..."
}

var followUpsByType = map[string][]string{
	classify.TypeAccessReview: {
		"Were any terminated users found with active access?",
		"Which privileged accounts were flagged during the review?",
		"What is the remediation status of the access findings?",
	},
	classify.TypeFinancialRec: {
		"Were there any unreconciled variances above the threshold?",
		"Which accounts had aged reconciling items?",
		"Who approved the month-end journal entries?",
	},
	classify.TypeRiskAssess: {
		"Which risks were rated high after mitigation?",
		"What controls address the top-rated risks?",
		"When is the next risk assessment scheduled?",
	},
}

// suggestedQuestions proposes follow-ups based on the document types that
// dominated the retrieved context.
func suggestedQuestions(results []retrieval.ScoredChunk) []string {
	seen := map[string]bool{}
	var questions []string
	for _, sc := range results {
		docType := sc.Chunk.Metadata["document_type"]
		if seen[docType] {
			continue
		}
		seen[docType] = true
		if qs, ok := followUpsByType[docType]; ok {
			questions = append(questions, qs...)
		}
		if len(questions) >= 3 {
			break
		}
	}
	if len(questions) > 3 {
		questions = questions[:3]
	}
	return questions
}
