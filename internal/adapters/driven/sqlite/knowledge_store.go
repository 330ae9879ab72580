// Package sqlite provides a file-backed KnowledgeStore for deployments
// without a PostgreSQL instance.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation
// that requires no CGO. SQLite has no vector extension here, so
// embeddings are stored as little-endian float32 blobs and similarity is
// computed in Go over a full scan. That is fine at the corpus sizes a
// personal knowledge base reaches.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jack-ai/jackal-core/internal/core/domain"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS jack_knowledge (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}',
	embedding  BLOB,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS jack_knowledge_source_chunk_idx
	ON jack_knowledge (json_extract(metadata, '$.source'), json_extract(metadata, '$.chunk'));
`

// KnowledgeStore implements driven.KnowledgeStore on a SQLite file.
type KnowledgeStore struct {
	db *sql.DB
}

// NewKnowledgeStore opens (or creates) the database at path and ensures
// the schema exists.
func NewKnowledgeStore(path string) (*KnowledgeStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// The pure Go driver serialises writers; a single connection avoids
	// SQLITE_BUSY under concurrent use.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &KnowledgeStore{db: db}, nil
}

// Insert stores one chunk. Re-inserting the same (source, chunk) pair
// replaces the previous row.
func (s *KnowledgeStore) Insert(ctx context.Context, content string, metadata domain.Metadata, embedding []float32) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpInsert, Err: err}
	}

	// RETURNING rather than LastInsertId: on the conflict path no insert
	// happens, and the id of the surviving row is the one the caller needs.
	var id int64
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO jack_knowledge (content, metadata, embedding)
		VALUES (?, ?, ?)
		ON CONFLICT (json_extract(metadata, '$.source'), json_extract(metadata, '$.chunk')) DO UPDATE SET
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding
		RETURNING id
	`, content, string(metadataJSON), embeddingToBytes(embedding)).Scan(&id)
	if err != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpInsert, Err: err}
	}
	return id, nil
}

// DeleteAll removes every row and reports how many went away.
func (s *KnowledgeStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jack_knowledge`)
	if err != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpDelete, Err: err}
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpDelete, Err: err}
	}
	return deleted, nil
}

// VectorSearch scans all embedded rows, scores them by cosine similarity
// in Go, and returns those at or above the threshold, best match first.
func (s *KnowledgeStore) VectorSearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*domain.ScoredDocument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding, created_at
		FROM jack_knowledge
		WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}
	defer rows.Close()

	var docs []*domain.ScoredDocument
	for rows.Next() {
		var (
			doc          domain.Document
			metadataJSON string
			blob         []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metadataJSON, &blob, &doc.CreatedAt); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}

		similarity := cosineSimilarity(embedding, bytesToEmbedding(blob))
		if similarity >= threshold {
			docs = append(docs, &domain.ScoredDocument{Document: &doc, Similarity: similarity})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Similarity > docs[j].Similarity
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// KeywordSearch finds documents containing any of the terms,
// case-insensitively, ranked by how many distinct terms match.
func (s *KnowledgeStore) KeywordSearch(ctx context.Context, terms []string, limit int) ([]*domain.Document, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	var (
		conditions []string
		ranks      []string
		args       []any
	)
	for _, term := range terms {
		conditions = append(conditions, "instr(lower(content), ?) > 0")
		ranks = append(ranks, "(CASE WHEN instr(lower(content), ?) > 0 THEN 1 ELSE 0 END)")
		args = append(args, strings.ToLower(term))
	}
	// Condition placeholders bind first, then the rank placeholders.
	for _, term := range terms {
		args = append(args, strings.ToLower(term))
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, content, metadata, created_at
		FROM jack_knowledge
		WHERE %s
		ORDER BY %s DESC, id ASC
		LIMIT ?
	`, strings.Join(conditions, " OR "), strings.Join(ranks, " + "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// List returns all documents, newest first, without embeddings.
func (s *KnowledgeStore) List(ctx context.Context) ([]*domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, created_at
		FROM jack_knowledge
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Count returns the number of stored documents.
func (s *KnowledgeStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jack_knowledge`).Scan(&count)
	if err != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}
	return count, nil
}

// Ping checks the database file is usable.
func (s *KnowledgeStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *KnowledgeStore) Close() error {
	return s.db.Close()
}

func scanDocuments(rows *sql.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		var (
			doc          domain.Document
			metadataJSON string
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metadataJSON, &doc.CreatedAt); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}
	return docs, nil
}

// embeddingToBytes converts a []float32 to a byte slice for storage.
func embeddingToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToEmbedding converts a byte slice back to []float32.
func bytesToEmbedding(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
