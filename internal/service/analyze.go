package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/models"
)

// ErrBadRequest marks validation failures the caller can fix, as opposed to
// missing lectures (store.ErrNotFound) or internal errors.
var ErrBadRequest = errors.New("bad request")

// Analyze answers a question against an indexed lecture.
func (s *Service) Analyze(ctx context.Context, lectureID, question string) (*models.Analysis, error) {
	lectureID = strings.TrimSpace(lectureID)
	question = strings.TrimSpace(question)
	if lectureID == "" {
		return nil, fmt.Errorf("lectureId is required: %w", ErrBadRequest)
	}
	if question == "" {
		return nil, fmt.Errorf("query is required: %w", ErrBadRequest)
	}

	var analysis *models.Analysis
	err := s.pipeline.Stats().Time(metrics.OpAnalyze, func() error {
		var err error
		analysis, err = s.engine.Analyze(ctx, lectureID, question)
		return err
	})
	return analysis, err
}

// Stats returns a snapshot of operation timings.
func (s *Service) Stats() metrics.Snapshot {
	return s.pipeline.Stats().Snapshot()
}
