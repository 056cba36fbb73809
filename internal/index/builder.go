package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/store"
)

// Builder turns transcript segments and OCR results into documents and an
// inverted keyword index, persisted in the key-value store.
type Builder struct {
	kv     store.KV
	logger *slog.Logger
}

// NewBuilder creates an index builder writing to kv.
func NewBuilder(kv store.KV, logger *slog.Logger) *Builder {
	return &Builder{kv: kv, logger: logger}
}

// Build creates one document per transcript segment and per non-empty OCR
// result, persists each document under its id, and persists the keyword index
// and document count for the lecture. The index is assembled as a plain value
// and written once.
func (b *Builder) Build(
	ctx context.Context,
	lectureID string,
	transcript *models.TranscriptResult,
	boardOCR []models.OCRResult,
) ([]models.Document, models.KeywordIndex, error) {
	docs := Documents(lectureID, transcript, boardOCR)

	b.logger.Info("indexing documents", "lecture_id", lectureID, "documents", len(docs))

	keywordIndex := make(models.KeywordIndex)
	for _, doc := range docs {
		if err := b.kv.Set(ctx, store.DocKey(doc.ID), doc); err != nil {
			return nil, nil, fmt.Errorf("persist document %s: %w", doc.ID, err)
		}

		timestamp := doc.Meta.Timestamp()
		for _, keyword := range Keywords(doc.Text) {
			keywordIndex[keyword] = append(keywordIndex[keyword], timestamp)
		}
	}

	if err := b.kv.Set(ctx, store.KeywordsKey(lectureID), keywordIndex); err != nil {
		return nil, nil, fmt.Errorf("persist keyword index: %w", err)
	}
	if err := b.kv.Set(ctx, store.DocCountKey(lectureID), len(docs)); err != nil {
		return nil, nil, fmt.Errorf("persist document count: %w", err)
	}

	b.logger.Info("index built", "lecture_id", lectureID, "documents", len(docs), "keywords", len(keywordIndex))
	return docs, keywordIndex, nil
}

// Documents builds the flat document set for a lecture. Ids are
// deterministic: {lectureId}-seg-{i} for transcript segments and
// {lectureId}-board-{i} for OCR results.
func Documents(lectureID string, transcript *models.TranscriptResult, boardOCR []models.OCRResult) []models.Document {
	var docs []models.Document

	if transcript != nil {
		for i, segment := range transcript.Segments {
			docs = append(docs, models.Document{
				ID:   fmt.Sprintf("%s-seg-%d", lectureID, i),
				Text: segment.Text,
				Meta: models.DocumentMeta{
					Type:   models.DocTypeASR,
					TStart: models.Float(segment.Start),
					TEnd:   models.Float(segment.End),
				},
			})
		}
	}

	for i, ocr := range boardOCR {
		if ocr.Text == "" {
			continue
		}
		docs = append(docs, models.Document{
			ID:   fmt.Sprintf("%s-board-%d", lectureID, i),
			Text: ocr.Text,
			Meta: models.DocumentMeta{
				Type: models.DocTypeBoard,
				T:    models.Float(float64(ocr.T)),
			},
		})
	}

	return docs
}
