package index

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTranscript() *models.TranscriptResult {
	return &models.TranscriptResult{
		Source: models.TranscriptSourceWhisper,
		Segments: []models.TranscriptSegment{
			{Text: "Welcome to the lecture on dynamic programming.", Start: 0, End: 3.5},
			{Text: "Dynamic programming uses memoization.", Start: 4, End: 8},
		},
	}
}

func TestDocuments(t *testing.T) {
	ocr := []models.OCRResult{
		{T: 5, Text: "f(n) = f(n-1) + f(n-2)", Words: []string{"f(n)"}},
		{T: 9, Text: ""},
	}

	docs := Documents("lec1", testTranscript(), ocr)
	require.Len(t, docs, 3, "empty OCR text must be dropped")

	assert.Equal(t, "lec1-seg-0", docs[0].ID)
	assert.Equal(t, models.DocTypeASR, docs[0].Meta.Type)
	assert.Equal(t, 0.0, *docs[0].Meta.TStart)
	assert.Equal(t, 3.5, *docs[0].Meta.TEnd)

	assert.Equal(t, "lec1-board-0", docs[2].ID)
	assert.Equal(t, models.DocTypeBoard, docs[2].Meta.Type)
	assert.Equal(t, 5.0, *docs[2].Meta.T)
}

func TestBuildPersistsDocsIndexAndCount(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemKV()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ocr := []models.OCRResult{{T: 5, Text: "memoization table"}}
	docs, keywordIndex, err := NewBuilder(kv, logger).Build(ctx, "lec1", testTranscript(), ocr)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Documents persisted individually.
	var doc models.Document
	found, err := kv.Get(ctx, store.DocKey("lec1-seg-1"), &doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Dynamic programming uses memoization.", doc.Text)

	// Keyword postings carry representative timestamps; duplicates allowed.
	assert.Equal(t, []float64{0, 4}, keywordIndex["dynamic"])
	assert.Equal(t, []float64{4, 5}, keywordIndex["memoization"])

	var stored models.KeywordIndex
	found, err = kv.Get(ctx, store.KeywordsKey("lec1"), &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, keywordIndex, stored)

	var count int
	found, err = kv.Get(ctx, store.DocCountKey("lec1"), &count)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, count)
}

func TestBuildNoStopwordsInIndex(t *testing.T) {
	kv := store.NewMemKV()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, keywordIndex, err := NewBuilder(kv, logger).Build(context.Background(), "lec1", testTranscript(), nil)
	require.NoError(t, err)

	for _, stop := range []string{"the", "this", "that"} {
		_, ok := keywordIndex[stop]
		assert.False(t, ok, "stopword %q must not be indexed", stop)
	}
}
