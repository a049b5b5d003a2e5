package app

import (
	"context"

	"docuchat/internal/model"
	"docuchat/internal/vectorstore"
)

// VectorIndex is the collection contract the services depend on; satisfied
// by *vectorstore.Store. Writers are not serialized by the index itself —
// the ingestion coordinator holds the write lock.
type VectorIndex interface {
	Exists(ctx context.Context, filter map[string]any) (bool, error)
	Insert(ctx context.Context, records []model.VectorRecord) error
	Search(ctx context.Context, queryText string, k int, filter map[string]any) ([]vectorstore.SearchResult, error)
	DeleteWhere(ctx context.Context, filter map[string]any) (int64, error)
	DistinctValues(ctx context.Context, key string) ([]string, error)
}

// DocumentChunker splits a source document into retrievable chunks;
// satisfied by *chunker.Chunker.
type DocumentChunker interface {
	ChunkFile(documentName, filePath string) ([]model.Chunk, error)
}
