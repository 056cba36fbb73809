// Package media turns an input video into the artifacts the rest of the
// pipeline consumes: a mono 16kHz WAV for speech recognition and one JPEG
// frame per second for board analysis.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/store"
)

// Extractor runs ffmpeg/ffprobe and persists the resulting artifacts.
type Extractor struct {
	objects     store.ObjectStore
	kv          store.KV
	ffmpegPath  string
	ffprobePath string
	logger      *slog.Logger
}

// NewExtractor creates a media extraction stage. Empty tool paths fall back
// to looking up ffmpeg/ffprobe on PATH.
func NewExtractor(objects store.ObjectStore, kv store.KV, ffmpegPath, ffprobePath string, logger *slog.Logger) *Extractor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Extractor{
		objects:     objects,
		kv:          kv,
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}
}

// Extract downloads the source video, extracts audio and per-second frames,
// probes the video metadata and persists everything under a fresh lecture id.
// All scratch files live in a temp dir that is removed before returning.
func (e *Extractor) Extract(ctx context.Context, src store.Source, title string) (*models.Lecture, error) {
	id := uuid.NewString()
	e.logger.Info("processing video", "lecture", id, "title", title)

	videoPath, err := store.DownloadToTemp(ctx, e.objects, src, ".mp4")
	if err != nil {
		return nil, fmt.Errorf("fetch video: %w", err)
	}
	defer os.Remove(videoPath)

	scratch, err := os.MkdirTemp("", "lectio-media-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	audioPath := filepath.Join(scratch, "audio.wav")
	if err := e.extractAudio(ctx, videoPath, audioPath); err != nil {
		return nil, err
	}

	framesDir := filepath.Join(scratch, "frames")
	if err := os.Mkdir(framesDir, 0o755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}
	if err := e.extractFrames(ctx, videoPath, framesDir); err != nil {
		return nil, err
	}

	duration, width, height, err := e.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	audioKey := store.AudioKey(id)
	framesPrefix := store.FramesPrefix(id)
	if err := e.objects.PutFile(ctx, audioKey, audioPath); err != nil {
		return nil, fmt.Errorf("persist audio: %w", err)
	}
	if err := e.objects.PutDir(ctx, framesPrefix, framesDir); err != nil {
		return nil, fmt.Errorf("persist frames: %w", err)
	}

	if title == "" {
		title = "Untitled Lecture"
	}
	lecture := &models.Lecture{
		ID:           id,
		Title:        title,
		AudioKey:     audioKey,
		FramesPrefix: framesPrefix,
		Duration:     duration,
		Width:        width,
		Height:       height,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.kv.Set(ctx, store.LectureKey(id), lecture); err != nil {
		return nil, fmt.Errorf("persist lecture record: %w", err)
	}

	e.logger.Info("lecture record created", "lecture", id, "duration", duration)
	return lecture, nil
}

// extractAudio produces a mono 16kHz WAV, the format speech recognition
// expects.
func (e *Extractor) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		audioPath,
	}
	return e.runTool(ctx, e.ffmpegPath, args, "extract audio")
}

// extractFrames samples one frame per second. Frames are numbered from zero
// so the frame index equals the second it was sampled at.
func (e *Extractor) extractFrames(ctx context.Context, videoPath, framesDir string) error {
	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", "fps=1",
		"-start_number", "0",
		filepath.Join(framesDir, "frame-%06d.jpg"),
	}
	return e.runTool(ctx, e.ffmpegPath, args, "extract frames")
}

func (e *Extractor) runTool(ctx context.Context, tool string, args []string, action string) error {
	e.logger.Debug("running media tool", "tool", tool, "action", action)
	cmd := exec.CommandContext(ctx, tool, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", action, err, truncateOutput(output))
	}
	return nil
}

func (e *Extractor) probe(ctx context.Context, videoPath string) (duration float64, width, height int, err error) {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	}
	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)
	output, err := cmd.Output()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("probe video: %w", err)
	}
	return parseProbe(output)
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

// parseProbe extracts duration and video dimensions from ffprobe JSON.
// Missing values fall back to 0s / 1920x1080.
func parseProbe(data []byte) (duration float64, width, height int, err error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, 0, 0, fmt.Errorf("parse probe output: %w", err)
	}

	if probe.Format.Duration != "" {
		if _, scanErr := fmt.Sscanf(probe.Format.Duration, "%f", &duration); scanErr != nil {
			duration = 0
		}
	}

	width, height = 1920, 1080
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			if s.Width > 0 {
				width = s.Width
			}
			if s.Height > 0 {
				height = s.Height
			}
			break
		}
	}
	return duration, width, height, nil
}

func truncateOutput(output []byte) string {
	const max = 512
	if len(output) > max {
		output = output[len(output)-max:]
	}
	return string(output)
}
