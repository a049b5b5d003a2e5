package model

// SessionTurn is one message in a conversation, either from the user
// or from the assistant.
type SessionTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}
