package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/jack-ai/jackal-core/internal/core/domain"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.KnowledgeStore = (*KnowledgeStore)(nil)

// KnowledgeStore implements driven.KnowledgeStore using PostgreSQL with
// the pgvector extension. Vector search runs inside the database via the
// match_documents function; keyword search is an ILIKE scan ranked by how
// many of the query terms each row matches.
type KnowledgeStore struct {
	db *DB
}

// NewKnowledgeStore creates a new KnowledgeStore
func NewKnowledgeStore(db *DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

// Insert stores one chunk with its embedding. Re-inserting the same
// (source, chunk) pair overwrites the previous row.
func (s *KnowledgeStore) Insert(ctx context.Context, content string, metadata domain.Metadata, embedding []float32) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}

	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, &domain.StoreError{Op: domain.StoreOpInsert, Err: err}
	}

	query := `
		INSERT INTO jack_knowledge (content, metadata, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT ((metadata->>'source'), (metadata->>'chunk')) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding
		RETURNING id
	`

	var id int64
	err = s.db.QueryRowContext(ctx, query, content, metadataJSON, pgvector.NewVector(embedding)).Scan(&id)
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

// VectorSearch returns documents whose cosine similarity to the query
// embedding meets the threshold, best match first.
func (s *KnowledgeStore) VectorSearch(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*domain.ScoredDocument, error) {
	query := `SELECT id, content, metadata, created_at, similarity FROM match_documents($1, $2, $3)`

	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}
	defer rows.Close()

	var docs []*domain.ScoredDocument
	for rows.Next() {
		var (
			doc          domain.Document
			metadataJSON []byte
			similarity   float64
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metadataJSON, &doc.CreatedAt, &similarity); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}
		docs = append(docs, &domain.ScoredDocument{Document: &doc, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
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
	for i, term := range terms {
		placeholder := fmt.Sprintf("$%d", i+1)
		conditions = append(conditions, fmt.Sprintf("content ILIKE %s", placeholder))
		ranks = append(ranks, fmt.Sprintf("(CASE WHEN content ILIKE %s THEN 1 ELSE 0 END)", placeholder))
		args = append(args, "%"+term+"%")
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT id, content, metadata, created_at
		FROM jack_knowledge
		WHERE %s
		ORDER BY %s DESC, id ASC
		LIMIT $%d
	`, strings.Join(conditions, " OR "), strings.Join(ranks, " + "), len(terms)+1)

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
		ORDER BY created_at DESC, id DESC
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

// Ping checks connectivity.
func (s *KnowledgeStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the underlying database connection.
func (s *KnowledgeStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDocuments(rows rowScanner) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		var (
			doc          domain.Document
			metadataJSON []byte
		)
		if err := rows.Scan(&doc.ID, &doc.Content, &metadataJSON, &doc.CreatedAt); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}
	return docs, nil
}
