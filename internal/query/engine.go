// Package query answers free-text questions against an indexed lecture,
// grounding every answer in timestamped citations.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lectio/lectio/internal/index"
	"github.com/lectio/lectio/internal/llm"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/store"
)

const (
	topDocuments = 8
	maxLinks     = 10
	linkTextMax  = 100
)

// Engine retrieves relevant documents for a question and delegates answer
// generation to the language model collaborator.
type Engine struct {
	kv       store.KV
	answerer llm.Answerer
	logger   *slog.Logger
}

func NewEngine(kv store.KV, answerer llm.Answerer, logger *slog.Logger) *Engine {
	return &Engine{kv: kv, answerer: answerer, logger: logger}
}

// Analyze answers the question against the lecture's index. Returns
// store.ErrNotFound when the lecture does not exist.
func (e *Engine) Analyze(ctx context.Context, lectureID, question string) (*models.Analysis, error) {
	e.logger.Info("analyzing query", "lecture", lectureID, "query", question)

	var lecture models.Lecture
	found, err := e.kv.Get(ctx, store.LectureKey(lectureID), &lecture)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("lecture %s: %w", lectureID, store.ErrNotFound)
	}

	relevant, err := e.searchRelevant(ctx, lectureID, question)
	if err != nil {
		return nil, err
	}

	lectureContext := buildContext(relevant)

	answer, err := e.answerer.Answer(ctx, question, lectureContext)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &models.Analysis{
		Answer:     answer.Answer,
		Links:      buildLinks(relevant),
		Flashcards: answer.Flashcards,
		Summary:    answer.Summary,
	}, nil
}

// searchRelevant scores all lecture documents against the query keywords and
// returns the top ones re-sorted by timestamp.
func (e *Engine) searchRelevant(ctx context.Context, lectureID, question string) ([]models.Document, error) {
	var keywordIndex models.KeywordIndex
	if _, err := e.kv.Get(ctx, store.KeywordsKey(lectureID), &keywordIndex); err != nil {
		return nil, fmt.Errorf("load keyword index: %w", err)
	}

	docs, err := e.loadDocuments(ctx, lectureID)
	if err != nil {
		return nil, err
	}

	// Every posting timestamp of every query keyword adds one point to each
	// document whose metadata covers that timestamp.
	scores := make([]int, len(docs))
	for _, keyword := range index.QueryKeywords(question) {
		for _, timestamp := range keywordIndex[keyword] {
			for i, doc := range docs {
				if doc.Meta.Matches(timestamp) {
					scores[i]++
				}
			}
		}
	}

	type scored struct {
		doc   models.Document
		score int
	}
	var hits []scored
	for i, doc := range docs {
		if scores[i] > 0 {
			hits = append(hits, scored{doc: doc, score: scores[i]})
		}
	}

	// Top documents by score, ties kept in encounter order, then back into
	// chronological order for presentation.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > topDocuments {
		hits = hits[:topDocuments]
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].doc.Meta.Timestamp() < hits[j].doc.Meta.Timestamp()
	})

	relevant := make([]models.Document, len(hits))
	for i, h := range hits {
		relevant[i] = h.doc
	}
	return relevant, nil
}

// loadDocuments fetches all persisted documents of the lecture in their
// deterministic id order: seg-i then board-i for each index.
func (e *Engine) loadDocuments(ctx context.Context, lectureID string) ([]models.Document, error) {
	var docCount int
	if _, err := e.kv.Get(ctx, store.DocCountKey(lectureID), &docCount); err != nil {
		return nil, fmt.Errorf("load doc count: %w", err)
	}

	var docs []models.Document
	for i := 0; i < docCount; i++ {
		for _, id := range []string{
			fmt.Sprintf("%s-seg-%d", lectureID, i),
			fmt.Sprintf("%s-board-%d", lectureID, i),
		} {
			var doc models.Document
			found, err := e.kv.Get(ctx, store.DocKey(id), &doc)
			if err != nil {
				return nil, fmt.Errorf("load document %s: %w", id, err)
			}
			if found {
				docs = append(docs, doc)
			}
		}
	}
	return docs, nil
}

// buildContext renders the retained documents as timestamped lines for the
// language model.
func buildContext(docs []models.Document) string {
	lines := make([]string, len(docs))
	for i, doc := range docs {
		timecode := models.ToTimecode(doc.Meta.Timestamp())
		lines[i] = fmt.Sprintf("[%s] (%s) %s", timecode, doc.Meta.Type, doc.Text)
	}
	return strings.Join(lines, "\n")
}

// buildLinks turns the retained documents into jump links, capped and with
// truncated preview text.
func buildLinks(docs []models.Document) []models.Link {
	var links []models.Link
	for _, doc := range docs {
		if len(links) == maxLinks {
			break
		}
		text := doc.Text
		if runes := []rune(text); len(runes) > linkTextMax {
			text = string(runes[:linkTextMax]) + "..."
		}
		t := doc.Meta.Timestamp()
		links = append(links, models.Link{
			T:        t,
			Timecode: models.ToTimecode(t),
			Text:     text,
			Type:     doc.Meta.Type,
		})
	}
	return links
}
