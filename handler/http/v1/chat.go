package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"docrag/src/core/retrieval"
)

type generateCompletionRequest struct {
	Messages []retrieval.Message `json:"messages" binding:"required,min=1"`
}

// GenerateCompletion answers the latest user message, conditioned on the
// chunks retrieved for it. The request carries the full conversation; the
// last message must be the user's new query.
func (h *Handler) GenerateCompletion(c *gin.Context) {
	var req generateCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	lastMsg := req.Messages[len(req.Messages)-1]
	if lastMsg.Role != retrieval.RoleUser {
		sendError(c, http.StatusBadRequest, fmt.Errorf("last message must be from user"))
		return
	}

	history := req.Messages[:len(req.Messages)-1]
	answer, err := h.orchestrator.Answer(c.Request.Context(), history, lastMsg.Content)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, retrieval.Message{
		Role:    retrieval.RoleAssistant,
		Content: answer,
	})
}
