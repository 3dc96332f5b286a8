package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Document struct {
	ID           uuid.UUID
	Filename     string
	Company      string
	DocumentType string
	Frameworks   []string
	QualityLevel string
	UploadedAt   time.Time
}

// InsertDocument records an uploaded document's classification.
func (s *PostgresStore) InsertDocument(ctx context.Context, doc Document) error {
	query := `
        INSERT INTO documents (id, filename, company, document_type, compliance_frameworks, quality_level, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	if _, err := s.DB.ExecContext(ctx, query, doc.ID, doc.Filename, doc.Company,
		doc.DocumentType, pq.Array(doc.Frameworks), doc.QualityLevel); err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// ListDocuments returns all documents, newest first.
func (s *PostgresStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.DB.QueryContext(ctx, `
        SELECT id, filename, company, document_type, compliance_frameworks, quality_level, uploaded_at
        FROM documents ORDER BY uploaded_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Filename, &doc.Company, &doc.DocumentType,
			pq.Array(&doc.Frameworks), &doc.QualityLevel, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and its chunks.
func (s *PostgresStore) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
