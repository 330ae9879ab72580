package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jack-ai/jackal-core/internal/chunker"
	"github.com/jack-ai/jackal-core/internal/core/domain"
	"github.com/jack-ai/jackal-core/internal/core/ports/driven"
	"github.com/jack-ai/jackal-core/internal/core/ports/driving"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

// loadSampleSize is how many documents a bulk-load report includes.
const loadSampleSize = 3

// ingestService coordinates the write path: read source → chunk → embed →
// store, one chunk at a time. Chunks are processed strictly sequentially
// so a mid-file failure leaves a well-defined prefix of committed chunks.
type ingestService struct {
	store        driven.KnowledgeStore
	embedder     driven.EmbeddingService
	knowledgeDir string
	targetSize   int
	logger       *slog.Logger
}

// IngestConfig holds dependencies for the ingest service.
type IngestConfig struct {
	Store        driven.KnowledgeStore
	Embedder     driven.EmbeddingService
	KnowledgeDir string
	TargetSize   int // chunk target size; 0 selects the chunker default
	Logger       *slog.Logger
}

// NewIngestService creates a new IngestService.
func NewIngestService(cfg IngestConfig) driving.IngestService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	targetSize := cfg.TargetSize
	if targetSize <= 0 {
		targetSize = chunker.DefaultTargetSize
	}
	return &ingestService{
		store:        cfg.Store,
		embedder:     cfg.Embedder,
		knowledgeDir: cfg.KnowledgeDir,
		targetSize:   targetSize,
		logger:       logger,
	}
}

// IngestFile reads the file, splits it into chunks, and stores each chunk
// with its embedding and positional metadata. Failures are logged and
// reported as false rather than raised, so a multi-file load continues.
func (s *ingestService) IngestFile(ctx context.Context, path string, base domain.Metadata) bool {
	text, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to read source file", "file", path, "error", err)
		return false
	}
	return s.ingestText(ctx, path, string(text), base)
}

// ingestText chunks and stores already-read source text. Split out from
// IngestFile so a bulk load reads each file exactly once.
func (s *ingestService) ingestText(ctx context.Context, path, text string, base domain.Metadata) bool {
	if base.FileName == "" {
		base.FileName = filepath.Base(path)
	}

	chunks := chunker.Split(text, s.targetSize)
	total := len(chunks)

	for i, part := range chunks {
		chunk := domain.Chunk{
			Text:        part,
			SourcePath:  path,
			ChunkIndex:  i + 1,
			TotalChunks: total,
		}
		if err := s.storeChunk(ctx, chunk, base); err != nil {
			s.logger.Error("failed to ingest chunk",
				"file", path,
				"chunk", chunk.ChunkIndex,
				"total_chunks", total,
				"error", err,
			)
			return false
		}
	}

	s.logger.Info("ingested file", "file", path, "chunks", total)
	return true
}

// storeChunk embeds one chunk and inserts it. Each call is one embedding
// round trip followed by one insert; errors propagate to IngestFile.
func (s *ingestService) storeChunk(ctx context.Context, chunk domain.Chunk, base domain.Metadata) error {
	embedding, err := s.embedder.EmbedQuery(ctx, chunk.Text)
	if err != nil {
		return err
	}

	_, err = s.store.Insert(ctx, chunk.Text, base.WithChunk(chunk), embedding)
	return err
}

// IngestStructured stores structured data as a single pretty-printed JSON
// document tagged with the category.
func (s *ingestService) IngestStructured(ctx context.Context, data map[string]any, category string) bool {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode structured data", "category", category, "error", err)
		return false
	}

	embedding, err := s.embedder.EmbedQuery(ctx, string(content))
	if err != nil {
		s.logger.Error("failed to embed structured data", "category", category, "error", err)
		return false
	}

	meta := domain.Metadata{Type: "structured", Category: category}
	if _, err := s.store.Insert(ctx, string(content), meta, embedding); err != nil {
		s.logger.Error("failed to store structured data", "category", category, "error", err)
		return false
	}
	return true
}

// BulkLoad ingests every markdown file under the knowledge directory, one
// file to completion before the next. It verifies store connectivity
// first and optionally clears existing documents, then reports per-file
// outcomes plus a small sample of what is stored.
func (s *ingestService) BulkLoad(ctx context.Context, clearExisting bool) (*domain.LoadReport, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, &domain.StoreError{Op: domain.StoreOpQuery, Err: err}
	}

	report := &domain.LoadReport{}

	if clearExisting {
		cleared, err := s.store.DeleteAll(ctx)
		if err != nil {
			// Matches the original behavior: a failed clear is logged
			// and the load proceeds against the uncleared store.
			s.logger.Error("failed to clear existing documents", "error", err)
		} else {
			report.Cleared = cleared
			s.logger.Info("cleared existing documents", "count", cleared)
		}
	}

	entries, err := os.ReadDir(s.knowledgeDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".md") {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, domain.ErrNoSourceFiles
	}

	for _, file := range files {
		path := filepath.Join(s.knowledgeDir, file)

		content, err := os.ReadFile(path)
		if err != nil {
			s.logger.Error("failed to read source file", "file", path, "error", err)
			report.FileResults = append(report.FileResults, domain.FileResult{
				File: file,
			})
			continue
		}

		ok := s.ingestText(ctx, path, string(content), domain.Metadata{
			Category: "personal",
			Type:     "markdown",
		})

		report.FileResults = append(report.FileResults, domain.FileResult{
			File:          file,
			Success:       ok,
			ContentLength: len(content),
		})
	}

	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	report.DocumentsCount = len(docs)
	if len(docs) > loadSampleSize {
		docs = docs[:loadSampleSize]
	}
	report.Documents = docs

	return report, nil
}

// Documents lists all stored documents, newest first.
func (s *ingestService) Documents(ctx context.Context) ([]*domain.Document, error) {
	return s.store.List(ctx)
}
