// Package vectorstore persists embedded chunks in a named sqlite-backed
// collection and serves similarity search over them.
package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gorm.io/gorm"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

// filterColumns whitelists the metadata keys callers may filter on.
var filterColumns = map[string]string{
	"document_name": "document_name",
	"file_path":     "file_path",
	"source_page":   "source_page",
}

// distinctColumns whitelists the string-valued keys for DistinctValues.
var distinctColumns = map[string]string{
	"document_name": "document_name",
	"file_path":     "file_path",
}

// SearchResult is one retrieved passage with its provenance and score.
type SearchResult struct {
	Content      string  `json:"content"`
	DocumentName string  `json:"document_name"`
	FilePath     string  `json:"file_path"`
	SourcePage   int     `json:"source_page"`
	Score        float32 `json:"score"`
}

// Store is a durable vector collection. It does not serialize writers
// itself; callers must hold a write lock across insert/delete sequences.
type Store struct {
	db         *gorm.DB
	embedder   ai.Embedder
	collection string
}

func New(db *gorm.DB, embedder ai.Embedder, collection string) *Store {
	return &Store{db: db, embedder: embedder, collection: collection}
}

func (s *Store) scoped(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&model.VectorRecord{}).Where("collection = ?", s.collection)
}

func (s *Store) applyFilter(q *gorm.DB, filter map[string]any) (*gorm.DB, error) {
	for key, value := range filter {
		col, ok := filterColumns[key]
		if !ok {
			return nil, fmt.Errorf("unknown metadata key %q", key)
		}
		q = q.Where(col+" = ?", value)
	}
	return q, nil
}

// Exists reports whether at least one record matches all filter pairs exactly.
func (s *Store) Exists(ctx context.Context, filter map[string]any) (bool, error) {
	q, err := s.applyFilter(s.scoped(ctx), filter)
	if err != nil {
		return false, err
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("count vector records failed: %w", err)
	}
	return count > 0, nil
}

// Insert appends records to the collection. Uniqueness is not enforced here;
// the ingestion coordinator serializes its dedup-check-then-insert sequence.
func (s *Store) Insert(ctx context.Context, records []model.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		records[i].Collection = s.collection
	}
	if err := s.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("insert vector records failed: %w", err)
	}
	return nil
}

// Search embeds queryText and returns up to k records by descending cosine
// similarity, optionally restricted by filter. Ties break on record id so
// the order is deterministic for a fixed collection state.
func (s *Store) Search(ctx context.Context, queryText string, k int, filter map[string]any) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}
	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	q, err := s.applyFilter(s.scoped(ctx), filter)
	if err != nil {
		return nil, err
	}
	var records []model.VectorRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load vector records failed: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	scored := make([]struct {
		record model.VectorRecord
		score  float32
	}, len(records))
	for i := range records {
		scored[i].record = records[i]
		scored[i].score = cosineSimilarity(queryVec, records[i].EmbeddingVector())
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].record.ID < scored[j].record.ID
	})
	if k > len(scored) {
		k = len(scored)
	}
	results := make([]SearchResult, k)
	for i := 0; i < k; i++ {
		results[i] = SearchResult{
			Content:      scored[i].record.Content,
			DocumentName: scored[i].record.DocumentName,
			FilePath:     scored[i].record.FilePath,
			SourcePage:   scored[i].record.SourcePage,
			Score:        scored[i].score,
		}
	}
	return results, nil
}

// DeleteWhere removes all records matching the filter and returns how many
// were deleted. An empty filter is rejected so a document cascade can never
// wipe the whole collection by accident.
func (s *Store) DeleteWhere(ctx context.Context, filter map[string]any) (int64, error) {
	if len(filter) == 0 {
		return 0, fmt.Errorf("delete filter is empty")
	}
	q, err := s.applyFilter(s.scoped(ctx), filter)
	if err != nil {
		return 0, err
	}
	res := q.Delete(&model.VectorRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete vector records failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DistinctValues returns the unique non-empty values of a metadata key.
func (s *Store) DistinctValues(ctx context.Context, key string) ([]string, error) {
	col, ok := distinctColumns[key]
	if !ok {
		return nil, fmt.Errorf("unknown metadata key %q", key)
	}
	var values []string
	err := s.scoped(ctx).Where(col+" <> ''").Distinct(col).Pluck(col, &values).Error
	if err != nil {
		return nil, fmt.Errorf("list distinct %s failed: %w", key, err)
	}
	return values, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
