package model

import (
	"encoding/json"
	"time"
)

// VectorRecord stores one embedded chunk in a named collection.
// Embedding is stored as JSON array of float32 for portability.
type VectorRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Collection   string    `gorm:"size:128;not null;index" json:"collection"`
	DocumentName string    `gorm:"size:256;not null;index" json:"document_name"`
	FilePath     string    `gorm:"size:512" json:"file_path"`
	SourcePage   int       `json:"source_page"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Embedding    string    `gorm:"type:text" json:"-"` // JSON array of float32
	CreatedAt    time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (r *VectorRecord) EmbeddingVector() []float32 {
	if r.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(r.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (r *VectorRecord) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		r.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	r.Embedding = string(b)
}
