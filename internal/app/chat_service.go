package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/session"
)

const defaultTopK = 3

const reformulationInstruction = "Given the conversation so far, rewrite the user's latest message as a single self-contained search query. Resolve pronouns and references to earlier turns. Return only the rewritten query; do not answer it."

// ChatService answers a user message from the ingested documents:
// reformulate the query with session history, retrieve the most relevant
// passages, synthesize a grounded answer under the response contract.
type ChatService struct {
	sessions *session.Store
	store    VectorIndex
	llm      ai.LanguageModel
	topK     int
}

func NewChatService(sessions *session.Store, store VectorIndex, llm ai.LanguageModel, topK int) *ChatService {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &ChatService{
		sessions: sessions,
		store:    store,
		llm:      llm,
		topK:     topK,
	}
}

// Answer never fails past this boundary: any internal error is logged with
// its cause and converted to the fixed apology reply. History is appended
// only for successfully answered turns.
func (s *ChatService) Answer(ctx context.Context, sessionID, userMessage string, availableDocuments []string) string {
	message := strings.TrimSpace(userMessage)
	if message == "" {
		return PromptForInput
	}

	history := s.sessions.History(sessionID)

	answer, err := s.respond(ctx, history, message, availableDocuments)
	if err != nil {
		log.Printf("answer failed for session %s: %v", sessionID, err)
		return ApologyReply
	}

	s.sessions.Append(sessionID, "user", message)
	s.sessions.Append(sessionID, "assistant", answer)
	return answer
}

func (s *ChatService) respond(ctx context.Context, history []model.SessionTurn, message string, documents []string) (string, error) {
	intent := ClassifyIntent(message)

	// Deterministic branch: a summary request with several documents
	// available must name one of them.
	if intent == IntentSummary && len(documents) > 1 && ResolveDocument(message, documents) == "" {
		return specifyDocumentReply(documents), nil
	}

	query, err := s.reformulateQuery(ctx, history, message)
	if err != nil {
		return "", err
	}

	passages, err := s.store.Search(ctx, query, s.topK, nil)
	if err != nil {
		return "", fmt.Errorf("retrieve context failed: %w", err)
	}

	// Nothing retrieved means nothing to ground an answer in. Greetings are
	// the exception: the capability reply needs no document context.
	if len(passages) == 0 && intent != IntentGreeting {
		return notAvailableReply(documents), nil
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: buildSystemPrompt(documents, passages, intent),
	})
	for _, turn := range history {
		messages = append(messages, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: message})

	answer, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("synthesize answer failed: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("model returned an empty response")
	}
	return answer, nil
}

// reformulateQuery turns a follow-up message into a self-contained search
// query. With no history the raw message already is one, so no model call
// is spent.
func (s *ChatService) reformulateQuery(ctx context.Context, history []model.SessionTurn, message string) (string, error) {
	if len(history) == 0 {
		return message, nil
	}

	messages := make([]ai.ChatMessage, 0, len(history)+2)
	messages = append(messages, ai.ChatMessage{Role: "system", Content: reformulationInstruction})
	for _, turn := range history {
		messages = append(messages, ai.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: "user", Content: message})

	query, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("reformulate query failed: %w", err)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		query = message
	}
	return query, nil
}
