package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Whitelist restricts recognition to letters, digits and common
// math/punctuation symbols, which cuts down on garbage reads from
// handwriting and glare.
const Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.,!?()[]{}=-+*/'\"@#$%^&_|\\~ \n"

// TesseractEngine wraps a gosseract client configured for board snapshots:
// restricted character whitelist, single-uniform-block page segmentation, and
// preserved inter-word spacing.
type TesseractEngine struct {
	client *gosseract.Client
}

var _ Engine = (*TesseractEngine)(nil)

// NewTesseract creates a configured Tesseract engine for the given language.
func NewTesseract(language string) (*TesseractEngine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetWhitelist(Whitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	if err := client.SetVariable("preserve_interword_spaces", "1"); err != nil {
		client.Close()
		return nil, fmt.Errorf("set preserve_interword_spaces: %w", err)
	}

	return &TesseractEngine{client: client}, nil
}

func (e *TesseractEngine) Recognize(ctx context.Context, png []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	text, err := e.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	result := &Result{Text: text}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err == nil {
		var confidenceSum float64
		for _, box := range boxes {
			result.Words = append(result.Words, box.Word)
			confidenceSum += box.Confidence
		}
		if len(boxes) > 0 {
			result.Confidence = confidenceSum / float64(len(boxes))
		}
	}

	return result, nil
}

func (e *TesseractEngine) Close() error {
	return e.client.Close()
}
