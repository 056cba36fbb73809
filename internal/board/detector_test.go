package board

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"testing"

	"github.com/lectio/lectio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// frameJPEG renders a white frame with black "writing" in the given
// rectangle and encodes it as JPEG. Identical inputs produce identical bytes.
func frameJPEG(t *testing.T, writing image.Rectangle) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 320, 240))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for y := writing.Min.Y; y < writing.Max.Y; y++ {
		for x := writing.Min.X; x < writing.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func putFrame(t *testing.T, objects store.ObjectStore, prefix string, second int, data []byte) {
	t.Helper()
	key := fmt.Sprintf("%sframe-%06d.jpg", prefix, second)
	require.NoError(t, objects.Put(context.Background(), key, data))
}

func TestDetectEmitsBaselineAndChange(t *testing.T) {
	ctx := context.Background()
	objects := store.NewMemStore()
	prefix := "lectures/abc/frames/"

	sparse := frameJPEG(t, image.Rect(30, 30, 110, 80))
	dense := frameJPEG(t, image.Rect(30, 30, 230, 210))

	// Ten seconds of video, board content changes at second 5.
	for i := 0; i < 5; i++ {
		putFrame(t, objects, prefix, i, sparse)
	}
	for i := 5; i < 10; i++ {
		putFrame(t, objects, prefix, i, dense)
	}

	events, err := NewDetector(objects, discardLogger()).Detect(ctx, prefix)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, 0, events[0].T)
	assert.Equal(t, 1.0, events[0].Score)
	assert.Equal(t, 5, events[1].T)
	assert.Greater(t, events[1].Score, 0.15)
}

func TestDetectIdenticalFramesOnlyBaseline(t *testing.T) {
	ctx := context.Background()
	objects := store.NewMemStore()
	prefix := "lectures/abc/frames/"

	frame := frameJPEG(t, image.Rect(30, 30, 110, 80))
	putFrame(t, objects, prefix, 0, frame)
	putFrame(t, objects, prefix, 1, frame)

	events, err := NewDetector(objects, discardLogger()).Detect(ctx, prefix)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1.0, events[0].Score)
}

func TestDetectEventsStrictlyOrdered(t *testing.T) {
	ctx := context.Background()
	objects := store.NewMemStore()
	prefix := "lectures/abc/frames/"

	rects := []image.Rectangle{
		image.Rect(30, 30, 60, 60),
		image.Rect(30, 30, 150, 150),
		image.Rect(30, 30, 230, 210),
		image.Rect(100, 100, 140, 140),
	}
	for i, r := range rects {
		putFrame(t, objects, prefix, i, frameJPEG(t, r))
	}

	events, err := NewDetector(objects, discardLogger()).Detect(ctx, prefix)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	for i := 1; i < len(events); i++ {
		assert.Greater(t, events[i].T, events[i-1].T, "events must be ordered by t")
	}
}

func TestDetectSkipsCorruptFrames(t *testing.T) {
	ctx := context.Background()
	objects := store.NewMemStore()
	prefix := "lectures/abc/frames/"

	putFrame(t, objects, prefix, 0, frameJPEG(t, image.Rect(30, 30, 110, 80)))
	putFrame(t, objects, prefix, 1, []byte("not a jpeg"))
	putFrame(t, objects, prefix, 2, frameJPEG(t, image.Rect(30, 30, 230, 210)))

	events, err := NewDetector(objects, discardLogger()).Detect(ctx, prefix)
	require.NoError(t, err)

	// Corrupt frame skipped, baseline + change survive.
	require.Len(t, events, 2)
	assert.Equal(t, 0, events[0].T)
	assert.Equal(t, 2, events[1].T)
}

func TestDetectNoFrames(t *testing.T) {
	events, err := NewDetector(store.NewMemStore(), discardLogger()).Detect(context.Background(), "lectures/none/frames/")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	objects := store.NewMemStore()
	prefix := "lectures/abc/frames/"
	putFrame(t, objects, prefix, 0, frameJPEG(t, image.Rect(30, 30, 110, 80)))

	_, err := NewDetector(objects, discardLogger()).Detect(ctx, prefix)
	assert.ErrorIs(t, err, context.Canceled)
}
