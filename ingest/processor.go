package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"audit-agent/classify"
	"audit-agent/database"
	apperrors "audit-agent/errors"
	"audit-agent/index"
	"audit-agent/retrieval"
)

// Processor turns uploaded files into classified, embedded, indexed chunks.
type Processor struct {
	store    *database.PostgresStore
	index    *index.BM25Index
	embed    retrieval.EmbeddingFunc
	splitter SentenceSplitter
	logger   *zap.Logger

	maxChars int
	overlap  int
}

func NewProcessor(store *database.PostgresStore, idx *index.BM25Index, embed retrieval.EmbeddingFunc, maxChars, overlap int, logger *zap.Logger) *Processor {
	return &Processor{
		store:    store,
		index:    idx,
		embed:    embed,
		splitter: NewProseSentenceSplitter(),
		logger:   logger.Named("ingest"),
		maxChars: maxChars,
		overlap:  overlap,
	}
}

// ProcessFile extracts text from the file, classifies it, chunks it, embeds
// every chunk and stores the results. Unlike retrieval, ingestion surfaces
// failures so the caller can report a failed upload.
func (p *Processor) ProcessFile(ctx context.Context, path, filename, company string) (database.Document, int, error) {
	text, err := extractText(path)
	if err != nil {
		return database.Document{}, 0, apperrors.WrapErrorf(err, "failed to extract text from %s", filename)
	}
	if strings.TrimSpace(text) == "" {
		return database.Document{}, 0, apperrors.WrapError(apperrors.ErrInvalidInput, "document contains no extractable text")
	}

	result := classify.Classify(text)
	doc := database.Document{
		ID:           uuid.New(),
		Filename:     filename,
		Company:      company,
		DocumentType: result.DocumentType,
		Frameworks:   result.Frameworks,
		QualityLevel: result.QualityLevel,
	}

	chunks := chunkSentences(p.splitter.Split(text), p.maxChars, p.overlap)
	p.logger.Info("Processing document",
		zap.String("filename", filename),
		zap.String("document_type", result.DocumentType),
		zap.Int("chunks", len(chunks)))

	stored := 0
	for i, content := range chunks {
		embedding, err := p.embed(ctx, content)
		if err != nil {
			return database.Document{}, stored, apperrors.WrapErrorf(err, "failed to embed chunk %d of %s", i, filename)
		}

		chunk := retrieval.Chunk{
			ID:        uuid.New().String(),
			Text:      content,
			Embedding: embedding,
			Metadata:  chunkMetadata(doc, result, i),
		}
		if err := p.store.InsertChunk(ctx, chunk, doc.ID); err != nil {
			return database.Document{}, stored, apperrors.WrapError(err, "failed to store chunk")
		}
		p.index.Add(chunk)
		stored++
	}

	if err := p.store.InsertDocument(ctx, doc); err != nil {
		return database.Document{}, stored, apperrors.WrapError(err, "failed to store document record")
	}
	return doc, stored, nil
}

func chunkMetadata(doc database.Document, result classify.Result, chunkIndex int) map[string]string {
	return map[string]string{
		"document_id":           doc.ID.String(),
		"company":               doc.Company,
		"document_type":         doc.DocumentType,
		"compliance_frameworks": strings.Join(result.Frameworks, ","),
		"quality_level":         doc.QualityLevel,
		"control_ids":           strings.Join(result.ControlIDs, ","),
		"chunk_index":           fmt.Sprintf("%d", chunkIndex),
	}
}

// extractText reads the file as PDF when it has a .pdf extension, otherwise
// as plain text.
func extractText(path string) (string, error) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var fullText strings.Builder
	totalPages := r.NumPage()
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		fullText.WriteString(text)
		fullText.WriteString("\n\n")
	}
	return fullText.String(), nil
}
