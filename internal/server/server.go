// Package server exposes the pipeline over HTTP with a websocket progress
// feed.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lectio/lectio/internal/service"
	"github.com/lectio/lectio/internal/store"
)

// maxUploadBytes caps multipart uploads at 2 GiB.
const maxUploadBytes = 2 << 30

// Server routes HTTP requests to the service layer.
type Server struct {
	svc      *service.Service
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func New(svc *service.Service, logger *slog.Logger) *Server {
	return &Server{
		svc:    svc,
		hub:    NewHub(),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/ingest", s.handleIngest)
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/lectures/{id}", s.handleGetLecture)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("DELETE /api/runs/{id}", s.handleCancelRun)
	mux.HandleFunc("GET /ws/ingest/{id}", s.handleProgressFeed)

	return LoggingMiddleware(s.logger)(mux)
}

// HTTPServer wraps the handler in a server with sane timeouts. The write
// timeout is long because analyze calls wait on the language model.
func (s *Server) HTTPServer(port string) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("video")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "no video file provided")
		return
	}
	defer file.Close()

	result, err := s.svc.Upload(r.Context(), file)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type ingestRequest struct {
	service.IngestRequest
	Async bool `json:"async,omitempty"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Async {
		run, err := s.svc.IngestAsync(req.IngestRequest, s.hub.Publish)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, run.Snapshot())
		return
	}

	result, err := s.svc.Ingest(r.Context(), req.IngestRequest, s.hub.Publish)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type analyzeRequest struct {
	LectureID string `json:"lectureId"`
	Query     string `json:"query"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	analysis, err := s.svc.Analyze(r.Context(), req.LectureID, req.Query)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleGetLecture(w http.ResponseWriter, r *http.Request) {
	lecture, err := s.svc.GetLecture(r.Context(), r.PathValue("id"))
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lecture)
}

func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	runs := s.svc.Runs().List()
	snapshots := make([]service.Run, len(runs))
	for i, run := range runs {
		snapshots[i] = run.Snapshot()
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run := s.svc.Runs().Get(r.PathValue("id"))
	if run == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Runs().Cancel(r.PathValue("id")) {
		s.writeError(w, http.StatusNotFound, "no cancellable run found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// handleProgressFeed streams progress events for a run (or lecture) id over
// a websocket. Use "*" to follow everything.
func (s *Server) handleProgressFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe(r.PathValue("id"))
	defer s.hub.Unsubscribe(sub)

	// Read pump: drain the connection so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case p, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := conn.WriteJSON(p); err != nil {
				return
			}
		}
	}
}

// mapError translates service errors onto status codes: validation failures
// are 400s, missing lectures 404s, everything else 500s.
func (s *Server) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBadRequest):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
