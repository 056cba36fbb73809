package asr

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lectio/lectio/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// Whisper transcribes audio through the OpenAI transcription API with
// segment- and word-level timestamps.
type Whisper struct {
	client *openai.Client
	model  string
}

var _ Transcriber = (*Whisper)(nil)

// NewWhisper creates a Whisper transcriber. Model defaults to whisper-1.
func NewWhisper(apiKey, model string) *Whisper {
	if model == "" {
		model = openai.Whisper1
	}
	return &Whisper{client: openai.NewClient(apiKey), model: model}
}

func (w *Whisper) Transcribe(ctx context.Context, audioPath string) (*models.TranscriptResult, error) {
	req := openai.AudioRequest{
		Model:    w.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
			openai.TranscriptionTimestampGranularityWord,
		},
	}

	// Transient API failures are retried a few times before giving up.
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	var resp openai.AudioResponse
	err := backoff.Retry(func() error {
		var err error
		resp, err = w.client.CreateTranscription(ctx, req)
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, 3), ctx))
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}

	result := &models.TranscriptResult{
		Source:   models.TranscriptSourceWhisper,
		Language: resp.Language,
		Duration: resp.Duration,
	}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, models.TranscriptSegment{
			Text:  seg.Text,
			Start: seg.Start,
			End:   seg.End,
		})
	}

	// Word timestamps come back as one flat list; assign each word to the
	// segment whose span contains its start.
	var words []models.TranscriptWord
	for _, word := range resp.Words {
		words = append(words, models.TranscriptWord{Word: word.Word, Start: word.Start, End: word.End})
	}
	AssignWords(result.Segments, words)

	return result, nil
}

// AssignWords distributes a flat list of timed words over segments by start
// time. Words before the first segment attach to it; words after the last
// segment attach to the last.
func AssignWords(segments []models.TranscriptSegment, words []models.TranscriptWord) {
	if len(segments) == 0 || len(words) == 0 {
		return
	}
	for _, word := range words {
		idx := len(segments) - 1
		for i, seg := range segments {
			if word.Start < seg.End || i == len(segments)-1 {
				idx = i
				break
			}
		}
		segments[idx].Words = append(segments[idx].Words, word)
	}
}
