package model

// ChunkMetadata is the provenance attached to every chunk of a document.
type ChunkMetadata struct {
	DocumentName string `json:"document_name"`
	FilePath     string `json:"file_path"`
	SourcePage   int    `json:"source_page"`
}

// Chunk is a bounded span of a document's text, the retrievable unit.
// Chunks are immutable and created only during ingestion.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}
