package types

import "time"

// ChatRequest is a question posed against the document corpus. Strategy and
// Limit are optional overrides; Filters restrict retrieval by metadata key.
type ChatRequest struct {
	Question   string              `json:"question"`
	DocumentID string              `json:"document_id,omitempty"`
	Filters    map[string][]string `json:"filters,omitempty"`
	Strategy   string              `json:"strategy,omitempty"`
	Limit      int                 `json:"limit,omitempty"`
}

// SourceRef points a chat answer back at the chunk that supported it.
type SourceRef struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	Company      string  `json:"company"`
	DocumentType string  `json:"document_type"`
	Score        float64 `json:"score"`
	Excerpt      string  `json:"excerpt"`
}

// ChatResponse carries the synthesized answer plus retrieval provenance.
type ChatResponse struct {
	Answer             string      `json:"answer"`
	AnswerHTML         string      `json:"answer_html"`
	Sources            []SourceRef `json:"sources"`
	Confidence         float64     `json:"confidence"`
	Strategy           string      `json:"strategy"`
	SuggestedQuestions []string    `json:"suggested_questions,omitempty"`
}

// UploadResponse reports the outcome of a document upload.
type UploadResponse struct {
	DocumentID   string    `json:"document_id"`
	Filename     string    `json:"filename"`
	DocumentType string    `json:"document_type"`
	Frameworks   []string  `json:"compliance_frameworks"`
	QualityLevel string    `json:"quality_level"`
	Chunks       int       `json:"chunks"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
