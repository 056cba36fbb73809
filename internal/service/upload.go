package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/store"
)

// UploadResult describes a stored upload ready for ingestion by file id.
type UploadResult struct {
	FileID string `json:"fileId"`
	Size   int64  `json:"size"`
}

// Upload stores a video file and returns the id to ingest it with.
func (s *Service) Upload(ctx context.Context, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no video file provided: %w", ErrBadRequest)
	}

	fileID := newFileID()
	err = s.pipeline.Stats().Time(metrics.OpUpload, func() error {
		return store.PutWithRetry(ctx, s.objects, store.UploadKey(fileID), data)
	})
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	s.logger.Info("video uploaded", "fileId", fileID, "bytes", len(data))
	return &UploadResult{FileID: fileID, Size: int64(len(data))}, nil
}

func newFileID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("upload-%d-%s", time.Now().UnixMilli(), suffix)
}
