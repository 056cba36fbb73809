package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Run tracks one in-flight or finished pipeline execution.
type Run struct {
	ID          string    `json:"id"`
	LectureID   string    `json:"lectureId,omitempty"`
	Stage       string    `json:"stage"`
	Status      RunStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitzero"`

	mu     sync.RWMutex
	cancel context.CancelFunc
}

// RunManager tracks pipeline runs and allows cancelling them.
type RunManager struct {
	runs map[string]*Run
	mu   sync.RWMutex
}

func NewRunManager() *RunManager {
	return &RunManager{runs: make(map[string]*Run)}
}

// Begin registers a new run and returns a context the pipeline should run
// under. Cancelling the run cancels that context.
func (m *RunManager) Begin(ctx context.Context) (context.Context, *Run) {
	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		ID:        uuid.NewString()[:8],
		Stage:     StageMedia,
		Status:    RunStatusRunning,
		StartedAt: time.Now(),
		cancel:    cancel,
	}

	m.mu.Lock()
	m.runs[run.ID] = run
	m.mu.Unlock()

	return runCtx, run
}

// Get retrieves a run by its id or by the lecture id it produced.
func (m *RunManager) Get(id string) *Run {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if run, ok := m.runs[id]; ok {
		return run
	}
	for _, run := range m.runs {
		if run.lectureID() == id {
			return run
		}
	}
	return nil
}

// List returns all runs, most recent first.
func (m *RunManager) List() []*Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	slices.SortFunc(runs, func(a, b *Run) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	return runs
}

// Cancel aborts a running pipeline. Returns false if no matching run exists
// or it already finished.
func (m *RunManager) Cancel(id string) bool {
	run := m.Get(id)
	if run == nil {
		return false
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	if run.Status != RunStatusRunning {
		return false
	}
	run.Status = RunStatusCancelled
	run.CompletedAt = time.Now()
	run.cancel()
	return true
}

// SetLecture records the lecture id once the media stage has assigned it.
func (r *Run) SetLecture(lectureID string) {
	r.mu.Lock()
	r.LectureID = lectureID
	r.mu.Unlock()
}

// SetStage records the stage the pipeline is currently in.
func (r *Run) SetStage(stage string) {
	r.mu.Lock()
	r.Stage = stage
	r.mu.Unlock()
}

// Complete marks the run as finished.
func (r *Run) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status != RunStatusRunning {
		return
	}
	r.Status = RunStatusCompleted
	r.Stage = StageDone
	r.CompletedAt = time.Now()
	r.cancel()
}

// Fail marks the run as failed. A run that was cancelled stays cancelled.
func (r *Run) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status != RunStatusRunning {
		return
	}
	r.Status = RunStatusFailed
	r.Error = err.Error()
	r.CompletedAt = time.Now()
	r.cancel()
}

// Snapshot returns a copy of the run state safe to serialize.
func (r *Run) Snapshot() Run {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Run{
		ID:          r.ID,
		LectureID:   r.LectureID,
		Stage:       r.Stage,
		Status:      r.Status,
		Error:       r.Error,
		StartedAt:   r.StartedAt,
		CompletedAt: r.CompletedAt,
	}
}

// observe wraps a progress callback so events update the run state and
// carry the run id.
func (r *Run) observe(next ProgressFunc) ProgressFunc {
	return func(p Progress) {
		if p.LectureID != "" {
			r.SetLecture(p.LectureID)
		}
		r.SetStage(p.Stage)
		p.RunID = r.ID
		if next != nil {
			next(p)
		}
	}
}

func (r *Run) lectureID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.LectureID
}
