package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"audit-agent/retrieval"
)

// InsertChunk stores a chunk with its embedding and metadata.
func (s *PostgresStore) InsertChunk(ctx context.Context, chunk retrieval.Chunk, documentID uuid.UUID) error {
	metaJSON, err := json.Marshal(chunk.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk metadata: %w", err)
	}

	chunkID, err := uuid.Parse(chunk.ID)
	if err != nil {
		chunkID = uuid.New()
	}

	query := `
        INSERT INTO chunks (id, document_id, content, embedding, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (id)
        DO UPDATE SET content = EXCLUDED.content, embedding = EXCLUDED.embedding, metadata = EXCLUDED.metadata
    `
	if _, err := s.DB.ExecContext(ctx, query, chunkID, documentID, chunk.Text,
		pgvector.NewVector(chunk.Embedding), string(metaJSON)); err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// SimilaritySearch returns the chunks nearest to the embedding by cosine
// distance, scored as 1 - distance so higher means closer.
func (s *PostgresStore) SimilaritySearch(ctx context.Context, embedding []float32, filter retrieval.Filter, limit int) ([]retrieval.Hit, error) {
	var builder strings.Builder
	builder.WriteString(`
        SELECT id, content, embedding, metadata, 1 - (embedding <=> $1) AS score
        FROM chunks
    `)
	args := []any{pgvector.NewVector(embedding)}
	args = appendFilterClauses(&builder, args, filter)
	builder.WriteString(fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args)+1))
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run similarity search: %w", err)
	}
	defer rows.Close()

	var hits []retrieval.Hit
	for rows.Next() {
		var (
			chunk retrieval.Chunk
			vec   pgvector.Vector
			meta  []byte
			score float64
		)
		if err := rows.Scan(&chunk.ID, &chunk.Text, &vec, &meta, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunk.Embedding = vec.Slice()
		if err := json.Unmarshal(meta, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk metadata: %w", err)
		}
		hits = append(hits, retrieval.Hit{Chunk: chunk, Score: score})
	}
	return hits, rows.Err()
}

// ListByFilter returns every chunk matching the filter, unranked.
func (s *PostgresStore) ListByFilter(ctx context.Context, filter retrieval.Filter) ([]retrieval.Chunk, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT id, content, embedding, metadata FROM chunks`)
	args := appendFilterClauses(&builder, nil, filter)

	rows, err := s.DB.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks by filter: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

// ListChunkIDsByDocument returns the IDs of a document's chunks, used to
// purge them from the keyword index when the document is deleted.
func (s *PostgresStore) ListChunkIDsByDocument(ctx context.Context, documentID uuid.UUID) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListChunks returns every stored chunk, used to warm the keyword index at
// startup.
func (s *PostgresStore) ListChunks(ctx context.Context) ([]retrieval.Chunk, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, content, embedding, metadata FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	defer rows.Close()
	return scanChunks(rows)
}

func scanChunks(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]retrieval.Chunk, error) {
	var chunks []retrieval.Chunk
	for rows.Next() {
		var (
			chunk retrieval.Chunk
			vec   pgvector.Vector
			meta  []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.Text, &vec, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		chunk.Embedding = vec.Slice()
		if err := json.Unmarshal(meta, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chunk metadata: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

// appendFilterClauses adds WHERE conditions for each filter key. Single
// values match with JSONB containment; multi-valued keys match when the
// comma-separated metadata value shares any element with the allowed set.
func appendFilterClauses(builder *strings.Builder, args []any, filter retrieval.Filter) []any {
	if filter.Empty() {
		return args
	}

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	first := true
	for _, key := range keys {
		values := filter[key]
		var cleaned []string
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v != "" {
				cleaned = append(cleaned, v)
			}
		}
		if len(cleaned) == 0 {
			continue
		}

		if first {
			builder.WriteString(" WHERE ")
			first = false
		} else {
			builder.WriteString(" AND ")
		}

		if len(cleaned) == 1 && !strings.Contains(cleaned[0], ",") {
			contain, _ := json.Marshal(map[string]string{key: cleaned[0]})
			builder.WriteString(fmt.Sprintf(
				"(metadata @> $%d::jsonb OR string_to_array(lower(metadata->>%s), ',') && $%d::text[])",
				len(args)+1, pq.QuoteLiteral(key), len(args)+2))
			args = append(args, string(contain), pq.Array(lowerAll(cleaned)))
		} else {
			builder.WriteString(fmt.Sprintf(
				"string_to_array(lower(metadata->>%s), ',') && $%d::text[]",
				pq.QuoteLiteral(key), len(args)+1))
			args = append(args, pq.Array(lowerAll(cleaned)))
		}
	}
	return args
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
