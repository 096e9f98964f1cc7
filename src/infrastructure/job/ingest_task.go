package job

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"docrag/src/core/rag"
	"docrag/src/fsutil"
	"docrag/src/reader"
	"docrag/src/storage/minioctrl"
)

const TaskTypeIngest = "ingest"

type IngestPayload struct {
	Filename string `json:"filename"`
	MinioURL string `json:"minio_url"`
}

// IngestTask downloads an uploaded document from object storage and runs it
// through the ingestion pipeline.
type IngestTask struct {
	minioService *minioctrl.MinioService
	ragService   *rag.Service
	fs           fsutil.FileStore
}

func NewIngestTask(minioService *minioctrl.MinioService, ragService *rag.Service, fs fsutil.FileStore) *IngestTask {
	return &IngestTask{
		minioService: minioService,
		ragService:   ragService,
		fs:           fs,
	}
}

func (task *IngestTask) HandleIngestTask(ctx context.Context, payload json.RawMessage) error {
	var ingestPayload IngestPayload
	if err := json.Unmarshal(payload, &ingestPayload); err != nil {
		return fmt.Errorf("failed to unmarshal ingest payload: %w", err)
	}

	bucket, objectName := task.minioService.GetBucketAndObjectFromURL(ingestPayload.MinioURL)
	if bucket == "" || objectName == "" {
		return fmt.Errorf("invalid minio url: %s", ingestPayload.MinioURL)
	}

	data, err := task.minioService.GetObject(ctx, bucket, objectName)
	if err != nil {
		return fmt.Errorf("failed to get uploaded document: %w", err)
	}

	// The pdf reader needs a seekable file, so stage the object on disk. The
	// original extension is kept for reader selection.
	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(ingestPayload.Filename))
	if err := task.fs.WriteFile(tmpPath, data); err != nil {
		return fmt.Errorf("failed to stage document: %w", err)
	}
	defer task.fs.RemoveAll(tmpPath)

	r := reader.ForPath(ingestPayload.Filename, task.fs)
	if _, err := task.ragService.ImportFile(ctx, r, tmpPath, ingestPayload.Filename, ingestPayload.MinioURL); err != nil {
		return fmt.Errorf("failed to import document: %w", err)
	}

	return nil
}
