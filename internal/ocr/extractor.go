package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lectio/lectio/internal/board"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/store"
)

// Extractor runs OCR over the board region of each change event. Engines are
// created once per stage run, shared through a pool, and released when the
// stage finishes.
type Extractor struct {
	objects store.ObjectStore
	engines []Engine
	logger  *slog.Logger
}

// NewExtractor creates an OCR extraction stage using the given engine pool.
// At least one engine is required; the pool size bounds OCR concurrency.
func NewExtractor(objects store.ObjectStore, engines []Engine, logger *slog.Logger) (*Extractor, error) {
	if len(engines) == 0 {
		return nil, fmt.Errorf("at least one OCR engine required")
	}
	return &Extractor{objects: objects, engines: engines, logger: logger}, nil
}

// Extract recognizes board text for each event. Events are independent, so
// they are distributed over a worker pool bounded by the number of engines;
// results keep event order. Events whose recognition fails or whose text is
// empty after trimming yield no OCRResult.
func (x *Extractor) Extract(ctx context.Context, events []models.BoardEvent) ([]models.OCRResult, error) {
	x.logger.Info("running OCR on board change events", "events", len(events))

	type slot struct {
		result models.OCRResult
		ok     bool
	}
	slots := make([]slot, len(events))

	// One worker per engine: each engine serves a single recognition at a
	// time without cross-worker sharing.
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < len(x.engines); w++ {
		wg.Add(1)
		go func(engine Engine) {
			defer wg.Done()
			for i := range jobs {
				result, err := x.recognizeEvent(ctx, engine, events[i])
				if err != nil {
					x.logger.Warn("OCR failed for event", "t", events[i].T, "error", err)
					continue
				}
				if result != nil {
					slots[i] = slot{result: *result, ok: true}
				}
			}
		}(x.engines[w])
	}

	for i := range events {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	var results []models.OCRResult
	for _, s := range slots {
		if s.ok {
			results = append(results, s.result)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].T < results[j].T })

	x.logger.Info("OCR complete", "extractions", len(results))
	return results, nil
}

// recognizeEvent crops the original-resolution frame to the event bbox,
// prepares it for recognition and runs the engine. Returns nil (no error)
// when the recognized text is empty after trimming.
func (x *Extractor) recognizeEvent(ctx context.Context, engine Engine, event models.BoardEvent) (*models.OCRResult, error) {
	data, err := x.objects.Get(ctx, event.FrameKey)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}

	prepared, err := PrepareRegion(img, event.BBox)
	if err != nil {
		return nil, err
	}

	recognized, err := engine.Recognize(ctx, prepared)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(recognized.Text)
	if text == "" {
		return nil, nil
	}

	return &models.OCRResult{
		T:          event.T,
		Text:       text,
		Words:      recognized.Words,
		Confidence: recognized.Confidence,
	}, nil
}

// PrepareRegion crops the frame to bbox, converts to greyscale, stretches
// contrast to the full range and encodes the result as PNG for the engine.
func PrepareRegion(img image.Image, bbox models.BBox) ([]byte, error) {
	gray := board.ToGray(img)
	rect := image.Rect(bbox[0], bbox[1], bbox[0]+bbox[2], bbox[1]+bbox[3])
	cropped := gray.SubImage(rect).(*image.Gray)

	normalized := StretchContrast(cropped)

	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, fmt.Errorf("encode region: %w", err)
	}
	return buf.Bytes(), nil
}

// StretchContrast linearly rescales greyscale values so the darkest pixel
// maps to 0 and the brightest to 255. A flat image is returned unchanged.
func StretchContrast(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	lo, hi := uint8(255), uint8(0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := src.GrayAt(x, y).Y
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}

	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if hi <= lo {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, src.GrayAt(x, y))
			}
		}
		return out
	}

	scale := 255.0 / float64(hi-lo)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(src.GrayAt(x, y).Y-lo) * scale
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(v + 0.5)})
		}
	}
	return out
}

// Close releases all engines in the pool.
func (x *Extractor) Close() error {
	var firstErr error
	for _, engine := range x.engines {
		if err := engine.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
