package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/lectio/lectio/internal/index"
	"github.com/lectio/lectio/internal/llm"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnswerer struct {
	question string
	context  string
	answer   *llm.Answer
	err      error
}

func (f *fakeAnswerer) Answer(_ context.Context, question, lectureContext string) (*llm.Answer, error) {
	f.question = question
	f.context = lectureContext
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &llm.Answer{Answer: "ok"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedLecture indexes a small lecture into kv and returns its id.
func seedLecture(t *testing.T, kv store.KV) string {
	t.Helper()
	ctx := context.Background()
	const id = "lec1"

	require.NoError(t, kv.Set(ctx, store.LectureKey(id), &models.Lecture{ID: id, Title: "Algorithms"}))

	transcript := &models.TranscriptResult{
		Source: models.TranscriptSourceWhisper,
		Segments: []models.TranscriptSegment{
			{Text: "Welcome to the lecture.", Start: 0, End: 3},
			{Text: "dynamic programming", Start: 4, End: 8},
			{Text: "Graph algorithms use adjacency lists.", Start: 10, End: 15},
		},
	}
	ocr := []models.OCRResult{
		{T: 5, Text: "dp[i] = dp[i-1] + dp[i-2] dynamic"},
	}

	_, _, err := index.NewBuilder(kv, discardLogger()).Build(ctx, id, transcript, ocr)
	require.NoError(t, err)
	return id
}

func TestAnalyzeNotFound(t *testing.T) {
	engine := NewEngine(store.NewMemKV(), &fakeAnswerer{}, discardLogger())

	_, err := engine.Analyze(context.Background(), "missing", "anything")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalyzeFindsIndexedSegment(t *testing.T) {
	kv := store.NewMemKV()
	id := seedLecture(t, kv)
	answerer := &fakeAnswerer{answer: &llm.Answer{
		Answer:     "DP builds solutions bottom-up.",
		Flashcards: []models.Flashcard{{Question: "Q", Answer: "A"}},
		Summary:    "summary",
	}}

	analysis, err := NewEngine(kv, answerer, discardLogger()).Analyze(context.Background(), id, "dynamic programming")
	require.NoError(t, err)

	assert.Equal(t, "DP builds solutions bottom-up.", analysis.Answer)
	assert.Len(t, analysis.Flashcards, 1)
	assert.Equal(t, "summary", analysis.Summary)

	// The segment spanning [4,8] must be cited.
	var found bool
	for _, link := range analysis.Links {
		if link.T == 4 && link.Type == models.DocTypeASR {
			found = true
		}
	}
	assert.True(t, found, "expected a link to the segment starting at t=4, got %+v", analysis.Links)

	// Links come back in ascending time order.
	for i := 1; i < len(analysis.Links); i++ {
		assert.GreaterOrEqual(t, analysis.Links[i].T, analysis.Links[i-1].T)
	}

	// The model receives timestamped context lines.
	assert.Contains(t, answerer.context, "[00:04] (asr) dynamic programming")
	assert.Equal(t, "dynamic programming", answerer.question)
}

func TestAnalyzeNoMatches(t *testing.T) {
	kv := store.NewMemKV()
	id := seedLecture(t, kv)
	answerer := &fakeAnswerer{}

	analysis, err := NewEngine(kv, answerer, discardLogger()).Analyze(context.Background(), id, "quantum entanglement")
	require.NoError(t, err)
	assert.Empty(t, analysis.Links)
	assert.Equal(t, "", answerer.context)
}

func TestAnalyzeAnswererFailurePropagates(t *testing.T) {
	kv := store.NewMemKV()
	id := seedLecture(t, kv)

	_, err := NewEngine(kv, &fakeAnswerer{err: errors.New("provider down")}, discardLogger()).Analyze(context.Background(), id, "dynamic programming")
	assert.ErrorContains(t, err, "provider down")
}

func TestBuildLinksTruncation(t *testing.T) {
	long := strings.Repeat("x", 150)
	// An accented rune straddles the 100th byte; truncation must not split it.
	accented := strings.Repeat("x", 99) + "éé" + strings.Repeat("x", 50)
	docs := []models.Document{
		{Text: long, Meta: models.DocumentMeta{Type: models.DocTypeBoard, T: models.Float(5)}},
		{Text: "short", Meta: models.DocumentMeta{Type: models.DocTypeASR, TStart: models.Float(10), TEnd: models.Float(12)}},
		{Text: accented, Meta: models.DocumentMeta{Type: models.DocTypeBoard, T: models.Float(20)}},
	}

	links := buildLinks(docs)
	require.Len(t, links, 3)
	assert.Len(t, links[0].Text, 103)
	assert.True(t, strings.HasSuffix(links[0].Text, "..."))
	assert.Equal(t, "short", links[1].Text)
	assert.Equal(t, "00:10", links[1].Timecode)

	assert.True(t, utf8.ValidString(links[2].Text))
	assert.Equal(t, linkTextMax+3, utf8.RuneCountInString(links[2].Text))
	assert.True(t, strings.HasSuffix(links[2].Text, "é..."))
}

func TestBuildLinksCap(t *testing.T) {
	var docs []models.Document
	for i := 0; i < 15; i++ {
		docs = append(docs, models.Document{
			Text: "doc",
			Meta: models.DocumentMeta{Type: models.DocTypeBoard, T: models.Float(float64(i))},
		})
	}
	assert.Len(t, buildLinks(docs), maxLinks)
}

func TestSearchRelevantTopCutoff(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemKV()
	const id = "lec2"
	require.NoError(t, kv.Set(ctx, store.LectureKey(id), &models.Lecture{ID: id}))

	// Twelve segments all mentioning the same keyword at distinct times.
	var segments []models.TranscriptSegment
	for i := 0; i < 12; i++ {
		start := float64(i * 10)
		segments = append(segments, models.TranscriptSegment{
			Text:  "recursion explained again",
			Start: start,
			End:   start + 5,
		})
	}
	transcript := &models.TranscriptResult{Source: models.TranscriptSourceWhisper, Segments: segments}
	_, _, err := index.NewBuilder(kv, discardLogger()).Build(ctx, id, transcript, nil)
	require.NoError(t, err)

	analysis, err := NewEngine(kv, &fakeAnswerer{}, discardLogger()).Analyze(ctx, id, "recursion")
	require.NoError(t, err)
	assert.Len(t, analysis.Links, topDocuments)
}
