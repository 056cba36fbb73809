package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lectio/lectio/internal/store"
)

// IngestRequest identifies the video to process. Exactly one of VideoURL or
// FileID must be set.
type IngestRequest struct {
	VideoURL string `json:"videoUrl,omitempty"`
	FileID   string `json:"fileId,omitempty"`
	Title    string `json:"title,omitempty"`
}

func (r IngestRequest) source() (store.Source, error) {
	switch {
	case r.FileID != "":
		return store.Source{Key: store.UploadKey(r.FileID)}, nil
	case r.VideoURL != "":
		return store.Source{URL: r.VideoURL}, nil
	default:
		return store.Source{}, fmt.Errorf("either videoUrl or fileId is required: %w", ErrBadRequest)
	}
}

// Ingest runs the full pipeline synchronously. The run is registered so it
// can be observed and cancelled.
func (s *Service) Ingest(ctx context.Context, req IngestRequest, onProgress ProgressFunc) (*IngestResult, error) {
	src, err := req.source()
	if err != nil {
		return nil, err
	}

	runCtx, run := s.runs.Begin(ctx)

	result, err := s.pipeline.Run(runCtx, src, strings.TrimSpace(req.Title), run.observe(onProgress))
	if err != nil {
		run.Fail(err)
		return nil, err
	}

	run.Complete()
	return result, nil
}

// IngestAsync starts the pipeline in the background and returns the run
// handle immediately. The run outlives the caller's request context.
func (s *Service) IngestAsync(req IngestRequest, onProgress ProgressFunc) (*Run, error) {
	src, err := req.source()
	if err != nil {
		return nil, err
	}

	runCtx, run := s.runs.Begin(context.Background())

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("ingest run panicked", "run", run.ID, "panic", r)
				run.Fail(fmt.Errorf("internal panic: %v", r))
			}
		}()

		result, err := s.pipeline.Run(runCtx, src, strings.TrimSpace(req.Title), run.observe(onProgress))
		if err != nil {
			run.Fail(err)
			return
		}
		s.logger.Info("ingest run complete", "run", run.ID, "lecture", result.LectureID)
		run.Complete()
	}()

	return run, nil
}
