package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lectio/lectio/internal/asr"
	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/llm"
	"github.com/lectio/lectio/internal/media"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/ocr"
	"github.com/lectio/lectio/internal/query"
	"github.com/lectio/lectio/internal/store"
)

// Service bundles the pipeline and query operations behind one facade used
// by both the CLI and the HTTP server.
type Service struct {
	objects  store.ObjectStore
	kv       store.KV
	pipeline *Pipeline
	engine   *query.Engine
	runs     *RunManager
	logger   *slog.Logger

	closers []func() error
}

// New wires all collaborators according to configuration.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Service, error) {
	objects, err := newObjectStore(cfg)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	kv, closer, err := newKV(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	var transcriber asr.Transcriber
	if cfg.OpenAIAPIKey != "" {
		transcriber = asr.NewWhisper(cfg.OpenAIAPIKey, cfg.WhisperModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set, transcripts will be placeholders")
		transcriber = asr.Placeholder{}
	}

	engineFactory := func() (ocr.Engine, error) {
		return ocr.NewTesseract(cfg.OCRLanguage)
	}

	var answerer llm.Answerer
	if cfg.LLMProvider == config.ProviderNone {
		logger.Warn("no LLM provider configured, answers will be generated offline")
		answerer = llm.Offline{}
	} else {
		model, err := llm.NewModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create LLM: %w", err)
		}
		answerer = model
	}

	extractor := media.NewExtractor(objects, kv, cfg.FFmpegPath, cfg.FFprobePath, logger)
	pipeline := NewPipeline(objects, kv, extractor, transcriber, engineFactory, cfg.OCRWorkers, logger)

	return &Service{
		objects:  objects,
		kv:       kv,
		pipeline: pipeline,
		engine:   query.NewEngine(kv, answerer, logger),
		runs:     NewRunManager(),
		logger:   logger,
		closers:  closers,
	}, nil
}

// NewWith assembles a service from explicit collaborators.
func NewWith(objects store.ObjectStore, kv store.KV, pipeline *Pipeline, engine *query.Engine, logger *slog.Logger) *Service {
	return &Service{
		objects:  objects,
		kv:       kv,
		pipeline: pipeline,
		engine:   engine,
		runs:     NewRunManager(),
		logger:   logger,
	}
}

func newObjectStore(cfg config.Config) (store.ObjectStore, error) {
	switch cfg.StoreBackend {
	case config.StoreFS:
		return store.NewFSStore(cfg.DataDir)
	case config.StoreS3:
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("LECTIO_S3_BUCKET required for s3 store")
		}
		return store.NewS3Store(context.Background(), cfg.S3Bucket)
	default:
		return nil, fmt.Errorf("unsupported object store backend: %s", cfg.StoreBackend)
	}
}

func newKV(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.KV, func() error, error) {
	switch cfg.KVBackend {
	case config.KVMemory:
		return store.NewMemKV(), nil, nil
	case config.KVSurreal:
		kv, err := store.NewSurrealKV(ctx, store.SurrealConfig{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect surrealdb: %w", err)
		}
		return kv, func() error { return kv.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported kv backend: %s", cfg.KVBackend)
	}
}

// Runs exposes the run registry.
func (s *Service) Runs() *RunManager {
	return s.runs
}

// GetLecture loads a lecture record. Returns store.ErrNotFound if missing.
func (s *Service) GetLecture(ctx context.Context, lectureID string) (*models.Lecture, error) {
	var lecture models.Lecture
	found, err := s.kv.Get(ctx, store.LectureKey(lectureID), &lecture)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("lecture %s: %w", lectureID, store.ErrNotFound)
	}
	return &lecture, nil
}

// Close releases backend connections.
func (s *Service) Close() error {
	var firstErr error
	for _, closer := range s.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
