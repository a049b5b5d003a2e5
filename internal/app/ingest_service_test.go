package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
)

func chunksOfText(texts ...string) []model.Chunk {
	chunks := make([]model.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = model.Chunk{ID: fmt.Sprintf("chunk-%d", i), Text: text, Metadata: model.ChunkMetadata{SourcePage: i + 1}}
	}
	return chunks
}

func TestIngest(t *testing.T) {
	index := &fakeIndex{}
	embedder := &fakeEmbedder{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText("first chunk", "second chunk")}, embedder)

	result, err := svc.Ingest(context.Background(), "report.pdf", "data/documents/report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", result.DocumentName)
	assert.True(t, result.Ingested)
	assert.Equal(t, 2, result.ChunkCount)
	require.Len(t, index.records, 2)

	// Every stored chunk carries its provenance header.
	for _, r := range index.records {
		assert.True(t, strings.HasPrefix(r.Content, "Document Name: report.pdf\nFile Path: data/documents/report.pdf\n"))
		assert.Equal(t, "report.pdf", r.DocumentName)
		assert.Equal(t, "data/documents/report.pdf", r.FilePath)
		assert.NotEmpty(t, r.EmbeddingVector())
	}
	assert.Equal(t, 1, index.records[0].SourcePage)
	assert.Equal(t, 2, index.records[1].SourcePage)
}

func TestIngest_SecondCallIsNoOp(t *testing.T) {
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText("chunk")}, &fakeEmbedder{})

	first, err := svc.Ingest(context.Background(), "report.pdf", "a/report.pdf")
	require.NoError(t, err)
	assert.True(t, first.Ingested)

	second, err := svc.Ingest(context.Background(), "report.pdf", "a/report.pdf")
	require.NoError(t, err)
	assert.False(t, second.Ingested)
	assert.Zero(t, second.ChunkCount)

	assert.Len(t, index.records, 1, "re-ingesting must not duplicate records")
}

func TestIngest_InvalidInput(t *testing.T) {
	svc := NewIngestService(&fakeIndex{}, &fakeChunker{}, &fakeEmbedder{})

	_, err := svc.Ingest(context.Background(), "  ", "a/report.pdf")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Ingest(context.Background(), "report.pdf", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIngest_EmbedsInBatches(t *testing.T) {
	var texts []string
	for i := 0; i < 23; i++ {
		texts = append(texts, fmt.Sprintf("chunk %d", i))
	}
	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText(texts...)}, embedder)

	result, err := svc.Ingest(context.Background(), "big.pdf", "a/big.pdf")
	require.NoError(t, err)

	assert.Equal(t, 23, result.ChunkCount)
	assert.Equal(t, []int{10, 10, 3}, embedder.batchSizes)
}

func TestIngest_ChunkerFailureStoresNothing(t *testing.T) {
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{err: errors.New("no extractable text")}, &fakeEmbedder{})

	_, err := svc.Ingest(context.Background(), "scan.pdf", "a/scan.pdf")
	require.Error(t, err)
	assert.Empty(t, index.records)
}

func TestIngest_EmbedderFailureStoresNothing(t *testing.T) {
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText("chunk")}, &fakeEmbedder{err: errors.New("rate limited")})

	_, err := svc.Ingest(context.Background(), "report.pdf", "a/report.pdf")
	require.Error(t, err)
	assert.Empty(t, index.records)
}

func TestIngest_ConcurrentDistinctDocuments(t *testing.T) {
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText("chunk a", "chunk b")}, &fakeEmbedder{})

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("doc-%d.pdf", i)
			_, errs[i] = svc.Ingest(context.Background(), name, "a/"+name)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "ingest %d", i)
	}
	assert.Len(t, index.records, n*2)

	names, err := svc.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, names, n)
}

func TestIngest_ConcurrentSameDocumentIngestsOnce(t *testing.T) {
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText("chunk")}, &fakeEmbedder{})

	const n = 8
	var wg sync.WaitGroup
	ingested := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.Ingest(context.Background(), "same.pdf", "a/same.pdf")
			if err == nil {
				ingested[i] = result.Ingested
			}
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range ingested {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one caller performs the ingestion")
	assert.Len(t, index.records, 1)
}

func TestDeleteDocument(t *testing.T) {
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText("chunk a", "chunk b")}, &fakeEmbedder{})

	_, err := svc.Ingest(context.Background(), "keep.pdf", "a/keep.pdf")
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), "drop.pdf", "a/drop.pdf")
	require.NoError(t, err)

	deleted, err := svc.DeleteDocument(context.Background(), "drop.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	names, err := svc.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.pdf"}, names)

	// The name is free again after deletion.
	result, err := svc.Ingest(context.Background(), "drop.pdf", "a/drop.pdf")
	require.NoError(t, err)
	assert.True(t, result.Ingested)
}

func TestDeleteDocument_InvalidInput(t *testing.T) {
	svc := NewIngestService(&fakeIndex{}, &fakeChunker{}, &fakeEmbedder{})
	_, err := svc.DeleteDocument(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListDocuments_Sorted(t *testing.T) {
	index := &fakeIndex{}
	svc := NewIngestService(index, &fakeChunker{chunks: chunksOfText("chunk")}, &fakeEmbedder{})

	for _, name := range []string{"zeta.pdf", "alpha.pdf", "mid.pdf"} {
		_, err := svc.Ingest(context.Background(), name, "a/"+name)
		require.NoError(t, err)
	}

	names, err := svc.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha.pdf", "mid.pdf", "zeta.pdf"}, names)
}
