package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one dependency of the service.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type healthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// CheckHealth probes every registered dependency and reports degraded when
// any of them fails.
func (h *Handler) CheckHealth(c *gin.Context) {
	ctx := c.Request.Context()

	status := healthStatus{
		Status:     "ok",
		Components: make(map[string]string, len(h.checks)),
	}
	for _, check := range h.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "degraded"
			status.Components[check.Name] = err.Error()
			continue
		}
		status.Components[check.Name] = "ok"
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	sendJSON(c, code, status)
}

type collectionStats struct {
	Count int `json:"count"`
}

// GetCollectionStats reports how many chunks the collection holds.
func (h *Handler) GetCollectionStats(c *gin.Context) {
	count, err := h.store.Count(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, collectionStats{Count: count})
}

// ClearCollection removes every chunk so ingestion can start fresh. The
// embedding dimension resets with the contents.
func (h *Handler) ClearCollection(c *gin.Context) {
	if err := h.store.RemoveAll(c.Request.Context()); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.Status(http.StatusNoContent)
}
