package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

const embeddingBatchSize = 10 // many embedding APIs limit batch size

// IngestService orchestrates chunk -> embed -> store behind a dedup gate:
// a document name is ingested at most once.
type IngestService struct {
	store    VectorIndex
	chunker  DocumentChunker
	embedder ai.Embedder

	// writeMu serializes all index writes; the store itself does not.
	writeMu sync.Mutex
	// nameLocks holds a per-document-name advisory lock across the
	// exists-then-insert sequence, which is not atomic in the index.
	nameMu    sync.Mutex
	nameLocks map[string]*sync.Mutex
}

// IngestResult reports whether a document was ingested or was already present.
type IngestResult struct {
	DocumentName string `json:"document_name"`
	Ingested     bool   `json:"ingested"`
	ChunkCount   int    `json:"chunk_count"`
}

func NewIngestService(store VectorIndex, ck DocumentChunker, embedder ai.Embedder) *IngestService {
	return &IngestService{
		store:     store,
		chunker:   ck,
		embedder:  embedder,
		nameLocks: make(map[string]*sync.Mutex),
	}
}

func (s *IngestService) lockName(name string) func() {
	s.nameMu.Lock()
	lock, ok := s.nameLocks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.nameLocks[name] = lock
	}
	s.nameMu.Unlock()
	lock.Lock()
	return lock.Unlock
}

// Ingest chunks the document at filePath, prefixes each chunk with its
// provenance header, embeds the chunks in batches, and inserts the records.
// A document name already present in the index is a no-op, not an error.
func (s *IngestService) Ingest(ctx context.Context, documentName, filePath string) (*IngestResult, error) {
	name := strings.TrimSpace(documentName)
	if name == "" || strings.TrimSpace(filePath) == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.lockName(name)
	defer unlock()

	exists, err := s.store.Exists(ctx, map[string]any{"document_name": name})
	if err != nil {
		return nil, fmt.Errorf("dedup check for %q failed: %w", name, err)
	}
	if exists {
		return &IngestResult{DocumentName: name, Ingested: false}, nil
	}

	chunks, err := s.chunker.ChunkFile(name, filePath)
	if err != nil {
		return nil, fmt.Errorf("ingest %q failed: %w", name, err)
	}

	// The provenance header makes retrieved context self-describing to the
	// synthesis step, and is embedded together with the chunk text.
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = fmt.Sprintf("Document Name: %s\nFile Path: %s\n%s", name, filePath, c.Text)
	}

	var embeddings [][]float32
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batched, err := s.embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks of %q failed: %w", name, err)
		}
		embeddings = append(embeddings, batched...)
	}
	if len(embeddings) != len(chunks) {
		return nil, errors.New("embedding count mismatch")
	}

	records := make([]model.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = model.VectorRecord{
			ID:           c.ID,
			DocumentName: c.Metadata.DocumentName,
			FilePath:     c.Metadata.FilePath,
			SourcePage:   c.Metadata.SourcePage,
			Content:      texts[i],
			CreatedAt:    time.Now(),
		}
		records[i].SetEmbedding(embeddings[i])
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.store.Insert(ctx, records); err != nil {
		return nil, fmt.Errorf("ingest %q failed: %w", name, err)
	}

	return &IngestResult{DocumentName: name, Ingested: true, ChunkCount: len(records)}, nil
}

// DeleteDocument removes every vector record of the document (cascade via the
// document_name metadata filter) and returns how many were deleted.
func (s *IngestService) DeleteDocument(ctx context.Context, documentName string) (int64, error) {
	name := strings.TrimSpace(documentName)
	if name == "" {
		return 0, ErrInvalidInput
	}

	unlock := s.lockName(name)
	defer unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	deleted, err := s.store.DeleteWhere(ctx, map[string]any{"document_name": name})
	if err != nil {
		return 0, fmt.Errorf("delete vectors of %q failed: %w", name, err)
	}
	return deleted, nil
}

// ListDocuments returns the sorted names of all ingested documents.
func (s *IngestService) ListDocuments(ctx context.Context) ([]string, error) {
	names, err := s.store.DistinctValues(ctx, "document_name")
	if err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
