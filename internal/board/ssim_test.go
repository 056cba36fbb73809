package board

import (
	"math"
	"testing"
)

// patternBuffer builds a deterministic non-degenerate buffer.
func patternBuffer(n int, seed uint8) []uint8 {
	buf := make([]uint8, n)
	for i := range buf {
		buf[i] = uint8(i*7+int(seed)*13) % 251
	}
	return buf
}

func TestSSIMIdentity(t *testing.T) {
	x := patternBuffer(4096, 1)
	got := SSIM(x, x)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("SSIM(x, x) = %v, want 1", got)
	}
}

func TestSSIMSymmetry(t *testing.T) {
	a := patternBuffer(4096, 1)
	b := patternBuffer(4096, 5)
	if ab, ba := SSIM(a, b), SSIM(b, a); math.Abs(ab-ba) > 1e-12 {
		t.Errorf("SSIM not symmetric: %v vs %v", ab, ba)
	}
}

func TestSSIMDissimilarBuffers(t *testing.T) {
	white := make([]uint8, 4096)
	black := make([]uint8, 4096)
	for i := range white {
		white[i] = 255
	}
	got := SSIM(white, black)
	if got > 0.5 {
		t.Errorf("SSIM(white, black) = %v, want well below 1", got)
	}
}

func TestSSIMLengthMismatch(t *testing.T) {
	if got := SSIM(make([]uint8, 10), make([]uint8, 11)); got != 0 {
		t.Errorf("SSIM on mismatched lengths = %v, want 0", got)
	}
	if got := SSIM(nil, nil); got != 0 {
		t.Errorf("SSIM on empty buffers = %v, want 0", got)
	}
}
