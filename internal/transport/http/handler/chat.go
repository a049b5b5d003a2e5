package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	chat   *app.ChatService
	ingest *app.IngestService
}

type ChatRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message"`
}

func NewChatHandler(chat *app.ChatService, ingest *app.IngestService) *ChatHandler {
	return &ChatHandler{chat: chat, ingest: ingest}
}

// Send answers a message within a session. The engine itself never fails
// past its boundary, so the only error paths here are request-shaped.
func (h *ChatHandler) Send(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	documents, err := h.ingest.ListDocuments(c.Request.Context())
	if err != nil {
		// The engine can still answer (or apologize) without the list.
		log.Printf("list documents for chat failed: %v", err)
	}

	reply := h.chat.Answer(c.Request.Context(), req.SessionID, req.Message, documents)
	response.OK(c, gin.H{"reply": reply})
}
