package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docrag/src/infrastructure/job"
	"docrag/src/storage/minioctrl"
	"docrag/src/storage/postgres/documentctrl"
)

// DocumentRegistry lists imported documents.
type DocumentRegistry interface {
	List(ctx context.Context, limit, offset int) ([]documentctrl.Document, error)
}

// UploadStore keeps raw uploads until a worker picks them up.
type UploadStore interface {
	EnsureBucketExists(ctx context.Context, bucketName string) error
	PutObject(ctx context.Context, bucketName, objectName string, data []byte) error
}

// JobQueue enqueues background work and reports its progress.
type JobQueue interface {
	EnqueueJob(ctx context.Context, taskType string, payload json.RawMessage) (*job.Job, error)
	GetJob(ctx context.Context, id int) (*job.Job, error)
}

type uploadDocumentResponse struct {
	JobID    int    `json:"job_id"`
	Filename string `json:"filename"`
	MinioURL string `json:"minio_url"`
}

// UploadDocument accepts a multipart file, stores it and enqueues an ingest
// job. The import itself runs on a worker, so the response is 202 with the
// job id to poll.
func (h *Handler) UploadDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("file upload required: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("failed to read file: %w", err))
		return
	}

	ctx := c.Request.Context()
	if err := h.uploads.EnsureBucketExists(ctx, minioctrl.UploadsBucket); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	objectName := fmt.Sprintf("%s-%s", uuid.NewString(), header.Filename)
	if err := h.uploads.PutObject(ctx, minioctrl.UploadsBucket, objectName, data); err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("failed to store upload: %w", err))
		return
	}

	payload, err := json.Marshal(job.IngestPayload{
		Filename: header.Filename,
		MinioURL: fmt.Sprintf("%s/%s", minioctrl.UploadsBucket, objectName),
	})
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	created, err := h.jobs.EnqueueJob(ctx, job.TaskTypeIngest, payload)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusAccepted, uploadDocumentResponse{
		JobID:    created.ID,
		Filename: header.Filename,
		MinioURL: fmt.Sprintf("%s/%s", minioctrl.UploadsBucket, objectName),
	})
}

// ListDocuments returns imported documents, newest first.
func (h *Handler) ListDocuments(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	documents, err := h.documents.List(c.Request.Context(), limit, offset)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, documents)
}

// GetJob reports the status of a background job.
func (h *Handler) GetJob(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		sendError(c, http.StatusBadRequest, fmt.Errorf("invalid job id: %w", err))
		return
	}

	found, err := h.jobs.GetJob(c.Request.Context(), id)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	if found == nil {
		sendError(c, http.StatusNotFound, fmt.Errorf("job not found: %d", id))
		return
	}

	sendJSON(c, http.StatusOK, found)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
