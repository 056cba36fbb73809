// Package ocr extracts text from detected board regions.
package ocr

import "context"

// Result is the raw output of one recognition call.
type Result struct {
	Text       string
	Words      []string
	Confidence float64
}

// Engine is the OCR collaborator. Implementations are not required to be
// safe for concurrent use; the extractor checks engines out of a pool so
// each instance only ever serves one recognition at a time.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (*Result, error)
	Close() error
}
