package app

import (
	"context"
	"sync"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/vectorstore"
)

// fakeIndex is an in-memory VectorIndex. Search returns canned results so
// retrieval behavior can be scripted per test.
type fakeIndex struct {
	mu      sync.Mutex
	records []model.VectorRecord

	results   []vectorstore.SearchResult
	lastQuery string
	lastK     int

	existsErr error
	insertErr error
	searchErr error
	deleteErr error
}

func matches(r model.VectorRecord, filter map[string]any) bool {
	for key, value := range filter {
		switch key {
		case "document_name":
			if r.DocumentName != value {
				return false
			}
		case "file_path":
			if r.FilePath != value {
				return false
			}
		case "source_page":
			if r.SourcePage != value {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (f *fakeIndex) Exists(_ context.Context, filter map[string]any) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if matches(r, filter) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeIndex) Insert(_ context.Context, records []model.VectorRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, queryText string, k int, _ map[string]any) ([]vectorstore.SearchResult, error) {
	f.mu.Lock()
	f.lastQuery = queryText
	f.lastK = k
	f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeIndex) DeleteWhere(_ context.Context, filter map[string]any) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []model.VectorRecord
	var deleted int64
	for _, r := range f.records {
		if matches(r, filter) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return deleted, nil
}

func (f *fakeIndex) DistinctValues(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	var values []string
	for _, r := range f.records {
		v := r.DocumentName
		if key == "file_path" {
			v = r.FilePath
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values, nil
}

type fakeChunker struct {
	chunks []model.Chunk
	err    error
}

func (f *fakeChunker) ChunkFile(documentName, filePath string) ([]model.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	chunks := make([]model.Chunk, len(f.chunks))
	for i, c := range f.chunks {
		c.Metadata.DocumentName = documentName
		c.Metadata.FilePath = filePath
		chunks[i] = c
	}
	return chunks, nil
}

// fakeEmbedder returns a constant unit vector and records batch sizes.
type fakeEmbedder struct {
	mu         sync.Mutex
	batchSizes []int
	err        error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.batchSizes = append(f.batchSizes, len(texts))
	f.mu.Unlock()
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, 0, 0}
	}
	return vecs, nil
}

// fakeLLM records every Complete call and answers via fn.
type fakeLLM struct {
	mu    sync.Mutex
	calls [][]ai.ChatMessage
	fn    func(messages []ai.ChatMessage) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(messages)
	}
	return "ok", nil
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
