package board

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/store"
)

// changeThreshold is the SSIM score below which a frame counts as a board
// content change.
const changeThreshold = 0.85

var frameNamePattern = regexp.MustCompile(`frame-(\d+)`)

// Detector walks a lecture's frame sequence and emits BoardEvents.
type Detector struct {
	objects store.ObjectStore
	logger  *slog.Logger
}

// NewDetector creates a board change detector reading frames from objects.
func NewDetector(objects store.ObjectStore, logger *slog.Logger) *Detector {
	return &Detector{objects: objects, logger: logger}
}

// Detect processes frames under framesPrefix in chronological order and
// returns the ordered change events. The first successfully processed frame
// is always recorded as a baseline with score 1.0; later frames are compared
// against the last recorded board state, not the immediately preceding frame,
// so slow drift accumulates until it crosses the threshold. The fold is
// stateful and must not be parallelized.
//
// Per-frame decode or crop failures are logged and the frame skipped; the
// reference state is left unchanged.
func (d *Detector) Detect(ctx context.Context, framesPrefix string) ([]models.BoardEvent, error) {
	frames, err := d.objects.ListPrefix(ctx, framesPrefix)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}

	d.logger.Info("analyzing frames for board changes", "frames", len(frames))

	var prevCrop []uint8
	var events []models.BoardEvent

	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t, ok := frameSeconds(frame.Name)
		if !ok {
			d.logger.Warn("skipping frame with unexpected name", "name", frame.Name)
			continue
		}

		bbox, crop, err := d.processFrame(ctx, frame.Key)
		if err != nil {
			d.logger.Warn("skipping frame", "key", frame.Key, "error", err)
			continue
		}

		if prevCrop == nil {
			// First frame is always the baseline.
			events = append(events, models.BoardEvent{T: t, FrameKey: frame.Key, BBox: bbox, Score: 1.0})
			prevCrop = crop
			continue
		}

		similarity := SSIM(prevCrop, crop)
		if similarity < changeThreshold {
			events = append(events, models.BoardEvent{T: t, FrameKey: frame.Key, BBox: bbox, Score: 1 - similarity})
			prevCrop = crop
			d.logger.Info("board change detected", "t", t, "similarity", similarity)
		}
	}

	d.logger.Info("board change detection complete", "events", len(events))
	return events, nil
}

func (d *Detector) processFrame(ctx context.Context, key string) (models.BBox, []uint8, error) {
	data, err := d.objects.Get(ctx, key)
	if err != nil {
		return models.BBox{}, nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return models.BBox{}, nil, fmt.Errorf("decode frame: %w", err)
	}

	gray := ToGray(img)
	bbox := FindRegion(gray)
	return bbox, NormalizedCrop(gray, bbox), nil
}

// frameSeconds extracts elapsed seconds from a frame filename such as
// "frame-000123.jpg". Frames are extracted at 1 fps starting at zero, so the
// frame number is the timestamp.
func frameSeconds(name string) (int, bool) {
	m := frameNamePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
