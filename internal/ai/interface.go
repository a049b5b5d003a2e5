package ai

import "context"

// ChatMessage is a single prompt message sent to a language model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder maps text to fixed-length numeric vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// LanguageModel produces a completion for an ordered list of prompt messages.
type LanguageModel interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
