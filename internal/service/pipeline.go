// Package service provides the business logic of the Lectio pipeline and
// its operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lectio/lectio/internal/asr"
	"github.com/lectio/lectio/internal/board"
	"github.com/lectio/lectio/internal/index"
	"github.com/lectio/lectio/internal/metrics"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/ocr"
	"github.com/lectio/lectio/internal/store"
)

// Pipeline stages in execution order.
const (
	StageMedia      = "media"
	StageTranscript = "transcript"
	StageBoard      = "board"
	StageOCR        = "ocr"
	StageIndex      = "index"
	StageDone       = "done"
)

var stageOrder = []string{StageMedia, StageTranscript, StageBoard, StageOCR, StageIndex, StageDone}

// Progress reports pipeline advancement to interested observers. RunID is
// filled in by the run registry, LectureID once the media stage assigned it.
type Progress struct {
	RunID     string `json:"runId,omitempty"`
	LectureID string `json:"lectureId,omitempty"`
	Stage     string `json:"stage"`
	Step      int    `json:"step"`
	Total     int    `json:"total"`
	Message   string `json:"message"`
}

// ProgressFunc receives progress events. May be nil.
type ProgressFunc func(Progress)

// MediaExtractor is the first pipeline stage: video in, persisted audio and
// frames plus a lecture record out.
type MediaExtractor interface {
	Extract(ctx context.Context, src store.Source, title string) (*models.Lecture, error)
}

// EngineFactory creates one OCR engine. The pipeline calls it once per OCR
// worker at the start of the OCR stage and releases the engines at its end.
type EngineFactory func() (ocr.Engine, error)

// Pipeline runs the full processing chain for one video. Every stage
// persists its output before the next stage starts and reads only persisted
// artifacts, so stages can be re-run independently.
type Pipeline struct {
	objects       store.ObjectStore
	kv            store.KV
	media         MediaExtractor
	transcriber   asr.Transcriber
	engineFactory EngineFactory
	ocrWorkers    int
	stats         *metrics.Collector
	logger        *slog.Logger
}

func NewPipeline(
	objects store.ObjectStore,
	kv store.KV,
	media MediaExtractor,
	transcriber asr.Transcriber,
	engineFactory EngineFactory,
	ocrWorkers int,
	logger *slog.Logger,
) *Pipeline {
	if ocrWorkers <= 0 {
		ocrWorkers = 1
	}
	return &Pipeline{
		objects:       objects,
		kv:            kv,
		media:         media,
		transcriber:   transcriber,
		engineFactory: engineFactory,
		ocrWorkers:    ocrWorkers,
		stats:         metrics.NewCollector(),
		logger:        logger,
	}
}

// Stats exposes the stage timing collector.
func (p *Pipeline) Stats() *metrics.Collector {
	return p.stats
}

// IngestResult summarizes one completed pipeline run.
type IngestResult struct {
	LectureID   string          `json:"lectureId"`
	Segments    int             `json:"segments"`
	BoardEvents int             `json:"boardEvents"`
	OCRTexts    int             `json:"ocrTexts"`
	Lecture     *models.Lecture `json:"lecture"`
}

// Run processes one video end to end.
func (p *Pipeline) Run(ctx context.Context, src store.Source, title string, onProgress ProgressFunc) (*IngestResult, error) {
	report := func(lectureID, stage, message string) {
		if onProgress == nil {
			return
		}
		step := 0
		for i, s := range stageOrder {
			if s == stage {
				step = i
				break
			}
		}
		onProgress(Progress{
			LectureID: lectureID,
			Stage:     stage,
			Step:      step,
			Total:     len(stageOrder) - 1,
			Message:   message,
		})
	}

	report("", StageMedia, "extracting audio and frames")
	var lecture *models.Lecture
	err := p.stats.Time(metrics.OpMedia, func() error {
		var err error
		lecture, err = p.media.Extract(ctx, src, title)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("media extraction: %w", err)
	}

	result := &IngestResult{LectureID: lecture.ID, Lecture: lecture}

	report(lecture.ID, StageTranscript, "building transcript")
	if err := p.stats.Time(metrics.OpTranscript, func() error {
		var err error
		result.Segments, err = p.buildTranscript(ctx, lecture)
		return err
	}); err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}

	report(lecture.ID, StageBoard, "detecting board changes")
	if err := p.stats.Time(metrics.OpBoard, func() error {
		var err error
		result.BoardEvents, err = p.detectBoardChanges(ctx, lecture)
		return err
	}); err != nil {
		return nil, fmt.Errorf("board detection: %w", err)
	}

	report(lecture.ID, StageOCR, "recognizing board text")
	if err := p.stats.Time(metrics.OpOCR, func() error {
		var err error
		result.OCRTexts, err = p.runOCR(ctx, lecture)
		return err
	}); err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	report(lecture.ID, StageIndex, "building search index")
	if err := p.stats.Time(metrics.OpIndex, func() error {
		return p.buildIndex(ctx, lecture)
	}); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}

	report(lecture.ID, StageDone, "lecture ready")
	return result, nil
}

func (p *Pipeline) buildTranscript(ctx context.Context, lecture *models.Lecture) (int, error) {
	audioPath, err := store.DownloadToTemp(ctx, p.objects, store.Source{Key: lecture.AudioKey}, ".wav")
	if err != nil {
		return 0, fmt.Errorf("fetch audio: %w", err)
	}
	defer os.Remove(audioPath)

	transcript, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return 0, err
	}
	if transcript.Placeholder() {
		p.logger.Warn("no speech-to-text provider configured, using placeholder transcript", "lecture", lecture.ID)
	}

	if err := store.PutJSON(ctx, p.objects, store.TranscriptKey(lecture.ID), transcript); err != nil {
		return 0, err
	}
	return len(transcript.Segments), nil
}

func (p *Pipeline) detectBoardChanges(ctx context.Context, lecture *models.Lecture) (int, error) {
	events, err := board.NewDetector(p.objects, p.logger).Detect(ctx, lecture.FramesPrefix)
	if err != nil {
		return 0, err
	}
	if err := store.PutJSON(ctx, p.objects, store.BoardEventsKey(lecture.ID), events); err != nil {
		return 0, err
	}
	return len(events), nil
}

func (p *Pipeline) runOCR(ctx context.Context, lecture *models.Lecture) (int, error) {
	var events []models.BoardEvent
	if err := store.GetJSON(ctx, p.objects, store.BoardEventsKey(lecture.ID), &events); err != nil {
		return 0, fmt.Errorf("load board events: %w", err)
	}

	engines, err := p.createEngines()
	if err != nil {
		return 0, err
	}

	extractor, err := ocr.NewExtractor(p.objects, engines, p.logger)
	if err != nil {
		closeEngines(engines)
		return 0, err
	}
	defer extractor.Close()

	results, err := extractor.Extract(ctx, events)
	if err != nil {
		return 0, err
	}
	if results == nil {
		results = []models.OCRResult{}
	}
	if err := store.PutJSON(ctx, p.objects, store.BoardOCRKey(lecture.ID), results); err != nil {
		return 0, err
	}
	return len(results), nil
}

func (p *Pipeline) createEngines() ([]ocr.Engine, error) {
	engines := make([]ocr.Engine, 0, p.ocrWorkers)
	for i := 0; i < p.ocrWorkers; i++ {
		engine, err := p.engineFactory()
		if err != nil {
			closeEngines(engines)
			return nil, fmt.Errorf("create OCR engine: %w", err)
		}
		engines = append(engines, engine)
	}
	return engines, nil
}

func closeEngines(engines []ocr.Engine) {
	for _, e := range engines {
		e.Close()
	}
}

func (p *Pipeline) buildIndex(ctx context.Context, lecture *models.Lecture) error {
	var transcript models.TranscriptResult
	if err := store.GetJSON(ctx, p.objects, store.TranscriptKey(lecture.ID), &transcript); err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}
	var ocrResults []models.OCRResult
	if err := store.GetJSON(ctx, p.objects, store.BoardOCRKey(lecture.ID), &ocrResults); err != nil {
		return fmt.Errorf("load board OCR: %w", err)
	}

	_, _, err := index.NewBuilder(p.kv, p.logger).Build(ctx, lecture.ID, &transcript, ocrResults)
	return err
}
