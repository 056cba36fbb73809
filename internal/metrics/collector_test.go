package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTiming(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpBoard, 100*time.Millisecond)
	c.RecordTiming(OpBoard, 300*time.Millisecond)

	snap := c.Snapshot()
	op, ok := snap.Operations[OpBoard]
	require.True(t, ok)
	assert.Equal(t, int64(2), op.Count)
	assert.Equal(t, int64(400), op.TotalTimeMs)
	assert.Equal(t, 200.0, op.AvgTimeMs)
	assert.Equal(t, int64(100), op.MinTimeMs)
	assert.Equal(t, int64(300), op.MaxTimeMs)
}

func TestTimePropagatesError(t *testing.T) {
	c := NewCollector()
	sentinel := errors.New("stage failed")

	err := c.Time(OpOCR, func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.Operations[OpOCR].Count, "failed operations still count")
}

func TestSnapshotOmitsUnusedOps(t *testing.T) {
	c := NewCollector()
	c.RecordTiming(OpAnalyze, time.Millisecond)

	snap := c.Snapshot()
	assert.Len(t, snap.Operations, 1)
	_, ok := snap.Operations[OpMedia]
	assert.False(t, ok)
}
