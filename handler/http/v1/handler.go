package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docrag/src/core/collection"
	"docrag/src/core/retrieval"
)

type Handler struct {
	documents    DocumentRegistry
	uploads      UploadStore
	jobs         JobQueue
	orchestrator *retrieval.Orchestrator
	store        collection.Store
	checks       []HealthCheck
}

func NewHandler(
	documents DocumentRegistry,
	uploads UploadStore,
	jobs JobQueue,
	orchestrator *retrieval.Orchestrator,
	store collection.Store,
	checks []HealthCheck,
) *Handler {
	return &Handler{
		documents:    documents,
		uploads:      uploads,
		jobs:         jobs,
		orchestrator: orchestrator,
		store:        store,
		checks:       checks,
	}
}

// RegisterRoutes registers all v1 API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	// Document routes
	v1.GET("/documents", h.ListDocuments)
	v1.POST("/documents", h.UploadDocument)

	// Job routes
	v1.GET("/jobs/:id", h.GetJob)

	// Retrieval routes
	v1.POST("/chat/completions", h.GenerateCompletion)
	v1.POST("/search", h.Search)

	// Collection routes
	v1.GET("/collection/stats", h.GetCollectionStats)
	v1.DELETE("/collection", h.ClearCollection)

	// System routes
	v1.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func sendError(c *gin.Context, status int, err error) {
	code := "INTERNAL_ERROR"

	var dimErr *collection.DimensionMismatchError
	var retrievalErr *retrieval.RetrievalError
	var generationErr *retrieval.GenerationError
	switch {
	case errors.As(err, &dimErr):
		code = "DIMENSION_MISMATCH"
		status = http.StatusBadRequest
	case errors.Is(err, collection.ErrDuplicateIdentity):
		code = "DUPLICATE_IDENTITY"
		status = http.StatusConflict
	case errors.As(err, &retrievalErr):
		code = "RETRIEVAL_FAILED"
		status = http.StatusBadGateway
	case errors.As(err, &generationErr):
		code = "GENERATION_FAILED"
		status = http.StatusBadGateway
	case status == http.StatusBadRequest:
		code = "BAD_REQUEST"
	case status == http.StatusNotFound:
		code = "NOT_FOUND"
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
