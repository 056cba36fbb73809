// Package models defines the data structures shared across the Lectio pipeline.
package models

import "time"

// Lecture is the root record for one processed video. It is created once by
// the media extraction stage and never mutated afterwards; downstream stages
// reference it by ID.
type Lecture struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	AudioKey     string    `json:"audioKey"`
	FramesPrefix string    `json:"framesPrefix"`
	Duration     float64   `json:"duration"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TranscriptWord is a single word with timing information.
type TranscriptWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// TranscriptSegment is a time-coded span of recognized speech. Segments are
// ordered by Start; gaps between segments are allowed.
type TranscriptSegment struct {
	Text  string           `json:"text"`
	Start float64          `json:"start"`
	End   float64          `json:"end"`
	Words []TranscriptWord `json:"words,omitempty"`
}

// Transcript sources.
const (
	// TranscriptSourcePlaceholder marks a transcript that was generated
	// without a speech-to-text provider. It keeps the pipeline runnable in
	// degraded mode and must never be confused with real recognition output.
	TranscriptSourcePlaceholder = "placeholder"
	TranscriptSourceWhisper     = "whisper"
)

// TranscriptResult is the output of the transcript building stage.
type TranscriptResult struct {
	Segments []TranscriptSegment `json:"segments"`
	Language string              `json:"language,omitempty"`
	Duration float64             `json:"duration,omitempty"`
	Source   string              `json:"source"`
}

// Placeholder reports whether this transcript is degraded-mode filler.
func (t *TranscriptResult) Placeholder() bool {
	return t.Source == TranscriptSourcePlaceholder
}

// BBox is an axis-aligned bounding box [x, y, width, height] in source-frame
// pixel coordinates.
type BBox [4]int

// BoardEvent records a detected change of board content at second T.
// The first event of a lecture is always the baseline with Score 1.0.
type BoardEvent struct {
	T        int     `json:"t"`
	FrameKey string  `json:"frameKey"`
	BBox     BBox    `json:"bbox"`
	Score    float64 `json:"score"`
}

// OCRResult is the recognized board text for one BoardEvent.
type OCRResult struct {
	T          int      `json:"t"`
	Text       string   `json:"text"`
	Words      []string `json:"words"`
	Confidence float64  `json:"confidence,omitempty"`
}

// Document types.
const (
	DocTypeASR   = "asr"
	DocTypeBoard = "board"
)

// DocumentMeta carries the timestamp metadata of a document. ASR documents
// have a TStart/TEnd range, board documents a point timestamp T.
type DocumentMeta struct {
	Type   string   `json:"type"`
	T      *float64 `json:"t,omitempty"`
	TStart *float64 `json:"tStart,omitempty"`
	TEnd   *float64 `json:"tEnd,omitempty"`
}

// Document is one indexed unit of text, either a transcript segment or an
// OCR'd board snapshot.
type Document struct {
	ID   string       `json:"id"`
	Text string       `json:"text"`
	Meta DocumentMeta `json:"meta"`
}

// Timestamp returns the representative timestamp of the document: the point
// timestamp for board documents, the segment start for ASR documents.
func (m DocumentMeta) Timestamp() float64 {
	if m.T != nil {
		return *m.T
	}
	if m.TStart != nil {
		return *m.TStart
	}
	return 0
}

// Matches reports whether the document covers the given timestamp. Point
// documents match within 2 seconds, range documents match inclusively.
func (m DocumentMeta) Matches(ts float64) bool {
	if m.T != nil {
		d := *m.T - ts
		if d < 0 {
			d = -d
		}
		return d < 2
	}
	if m.TStart != nil && m.TEnd != nil {
		return ts >= *m.TStart && ts <= *m.TEnd
	}
	return false
}

// KeywordIndex maps a normalized keyword to the timestamps at which it
// occurred. Postings are appended in document order and intentionally not
// deduplicated.
type KeywordIndex map[string][]float64

// Flashcard is a question/answer pair generated from lecture content.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Link points back to the moment in the video that supports an answer.
type Link struct {
	T        float64 `json:"t"`
	Timecode string  `json:"timecode"`
	Text     string  `json:"text"`
	Type     string  `json:"type"`
}

// Analysis is the result of answering a question against a lecture.
type Analysis struct {
	Answer     string      `json:"answer"`
	Links      []Link      `json:"links"`
	Flashcards []Flashcard `json:"flashcards,omitempty"`
	Summary    string      `json:"summary,omitempty"`
}

// Float returns a pointer to v. Convenience for building DocumentMeta.
func Float(v float64) *float64 { return &v }
