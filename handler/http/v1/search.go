package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docrag/src/core/collection"
)

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Items []collection.Item `json:"items"`
}

// Search returns the nearest chunks for a query without generating an
// answer. top_k defaults to the orchestrator's configured value.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}
	if req.TopK <= 0 {
		req.TopK = defaultSearchTopK
	}

	items, err := h.orchestrator.Retrieve(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []collection.Item{}
	}

	sendJSON(c, http.StatusOK, searchResponse{Items: items})
}

const defaultSearchTopK = 5
