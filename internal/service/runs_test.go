package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunManagerCancel(t *testing.T) {
	m := NewRunManager()
	runCtx, run := m.Begin(context.Background())

	run.SetLecture("lec-42")

	require.True(t, m.Cancel("lec-42"), "cancel by lecture id")
	assert.ErrorIs(t, runCtx.Err(), context.Canceled)
	assert.Equal(t, RunStatusCancelled, run.Snapshot().Status)

	// Second cancel is a no-op.
	assert.False(t, m.Cancel(run.ID))

	// A cancelled run does not flip to failed when the pipeline returns.
	run.Fail(errors.New("context canceled"))
	assert.Equal(t, RunStatusCancelled, run.Snapshot().Status)
}

func TestRunManagerComplete(t *testing.T) {
	m := NewRunManager()
	_, run := m.Begin(context.Background())

	run.SetStage(StageIndex)
	run.Complete()

	snapshot := run.Snapshot()
	assert.Equal(t, RunStatusCompleted, snapshot.Status)
	assert.Equal(t, StageDone, snapshot.Stage)
	assert.False(t, snapshot.CompletedAt.IsZero())

	assert.False(t, m.Cancel(run.ID), "finished runs cannot be cancelled")
}

func TestRunManagerFail(t *testing.T) {
	m := NewRunManager()
	_, run := m.Begin(context.Background())

	run.Fail(errors.New("ffmpeg exploded"))

	snapshot := run.Snapshot()
	assert.Equal(t, RunStatusFailed, snapshot.Status)
	assert.Equal(t, "ffmpeg exploded", snapshot.Error)
}

func TestRunManagerGetAndList(t *testing.T) {
	m := NewRunManager()
	_, a := m.Begin(context.Background())
	_, b := m.Begin(context.Background())

	assert.Same(t, a, m.Get(a.ID))
	assert.Same(t, b, m.Get(b.ID))
	assert.Nil(t, m.Get("missing"))

	assert.Len(t, m.List(), 2)
}
