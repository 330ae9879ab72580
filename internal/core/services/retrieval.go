package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jack-ai/jackal-core/internal/core/domain"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
	"github.com/jack-ai/jackal-core/internal/core/ports/driving"
)

// Ensure retrievalService implements RetrievalService
var _ driving.RetrievalService = (*retrievalService)(nil)

const (
	// DefaultRetrieveLimit is used when the caller passes limit <= 0.
	DefaultRetrieveLimit = 5

	// DefaultMatchThreshold is deliberately permissive: for a small
	// personal corpus recall matters more than precision.
	DefaultMatchThreshold = 0.21

	// minKeywordLength filters fallback tokens; only words longer than
	// this take part in the keyword search.
	minKeywordLength = 3
)

// retrievalService implements the RetrievalService interface
type retrievalService struct {
	store     driven.KnowledgeStore
	embedder  driven.EmbeddingService
	threshold float64
	logger    *slog.Logger

	// single-entry memo so identical consecutive queries are not
	// re-embedded
	mu            sync.Mutex
	lastQuery     string
	lastEmbedding []float32
}

// NewRetrievalService creates a new RetrievalService. A threshold <= 0
// selects DefaultMatchThreshold.
func NewRetrievalService(
	store driven.KnowledgeStore,
	embedder driven.EmbeddingService,
	threshold float64,
	logger *slog.Logger,
) driving.RetrievalService {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &retrievalService{
		store:     store,
		embedder:  embedder,
		threshold: threshold,
		logger:    logger,
	}
}

// Retrieve embeds the query, runs the vector search, and tops up from the
// keyword fallback when vector recall is weak. Results are deduplicated by
// document id, first occurrence wins, so a document matched by both paths
// keeps its vector rank.
func (s *retrievalService) Retrieve(ctx context.Context, query string, limit int) (*domain.RetrievalResult, error) {
	start := time.Now()

	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	embedding, err := s.queryEmbedding(ctx, query)
	if err != nil {
		return nil, &domain.RetrievalError{Err: err}
	}

	scored, err := s.store.VectorSearch(ctx, embedding, s.threshold, limit)
	if err != nil {
		return nil, &domain.RetrievalError{Err: err}
	}

	docs := make([]*domain.Document, 0, limit)
	for _, sc := range scored {
		docs = append(docs, sc.Document)
	}

	if len(docs) < 2 {
		if keywords := FallbackKeywords(query); len(keywords) > 0 {
			budget := limit - len(docs)
			if budget > 0 {
				fallback, err := s.store.KeywordSearch(ctx, keywords, budget)
				if err != nil {
					// The vector results are still usable; a broken
					// fallback path must not fail the whole retrieval.
					s.logger.Warn("keyword fallback failed",
						"query", query,
						"error", err,
					)
				} else {
					docs = append(docs, fallback...)
				}
			}
		}
	}

	docs = dedupeByID(docs)
	if len(docs) > limit {
		docs = docs[:limit]
	}

	return &domain.RetrievalResult{
		Query:         query,
		Documents:     docs,
		VectorMatches: len(scored),
		Took:          time.Since(start),
	}, nil
}

// queryEmbedding embeds the query, reusing the previous embedding when the
// query is identical to the last one.
func (s *retrievalService) queryEmbedding(ctx context.Context, query string) ([]float32, error) {
	s.mu.Lock()
	if query == s.lastQuery && s.lastEmbedding != nil {
		embedding := s.lastEmbedding
		s.mu.Unlock()
		return embedding, nil
	}
	s.mu.Unlock()

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastQuery = query
	s.lastEmbedding = embedding
	s.mu.Unlock()

	return embedding, nil
}

// FallbackKeywords derives keyword-search terms from a query: lowercase,
// punctuation stripped, split on whitespace, keeping only tokens longer
// than three characters.
func FallbackKeywords(query string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, query)

	var keywords []string
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) > minKeywordLength {
			keywords = append(keywords, tok)
		}
	}
	return keywords
}

// dedupeByID keeps the first occurrence of each document id.
func dedupeByID(docs []*domain.Document) []*domain.Document {
	seen := make(map[int64]struct{}, len(docs))
	out := docs[:0]
	for _, doc := range docs {
		if _, ok := seen[doc.ID]; ok {
			continue
		}
		seen[doc.ID] = struct{}{}
		out = append(out, doc)
	}
	return out
}
