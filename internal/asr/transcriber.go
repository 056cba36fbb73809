// Package asr builds time-coded transcripts from lecture audio.
package asr

import (
	"context"

	"github.com/lectio/lectio/internal/models"
)

// Transcriber is the speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*models.TranscriptResult, error)
}

// Placeholder produces a fixed transcript when no speech-to-text provider is
// configured. The result is tagged so downstream consumers can tell it apart
// from real recognition output.
type Placeholder struct{}

var _ Transcriber = Placeholder{}

func (Placeholder) Transcribe(_ context.Context, _ string) (*models.TranscriptResult, error) {
	return &models.TranscriptResult{
		Source:   models.TranscriptSourcePlaceholder,
		Language: "en",
		Duration: 8.5,
		Segments: []models.TranscriptSegment{
			{
				Text:  "Welcome to today's lecture on advanced algorithms.",
				Start: 0,
				End:   3.5,
				Words: []models.TranscriptWord{
					{Word: "Welcome", Start: 0, End: 0.8},
					{Word: "to", Start: 0.8, End: 1.0},
					{Word: "today's", Start: 1.0, End: 1.5},
					{Word: "lecture", Start: 1.5, End: 2.0},
					{Word: "on", Start: 2.0, End: 2.2},
					{Word: "advanced", Start: 2.2, End: 2.8},
					{Word: "algorithms", Start: 2.8, End: 3.5},
				},
			},
			{
				Text:  "Today we'll be covering dynamic programming and graph algorithms.",
				Start: 4.0,
				End:   8.5,
			},
		},
	}, nil
}
