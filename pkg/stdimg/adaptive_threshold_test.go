package stdimg

import (
	"errors"
	"image"
	"testing"
)

func TestAdaptiveThresholdGradient(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	// horizontal gradient
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			i := src.PixOffset(x, y)
			v := uint8(x * 32)
			src.Pix[i+0] = v
			src.Pix[i+1] = v
			src.Pix[i+2] = v
			src.Pix[i+3] = 255
		}
	}
	out, err := AdaptiveThreshold(src, 3, 0)
	if err != nil {
		t.Fatalf("threshold: %v", err)
	}
	seen0, seen255 := false, false
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			switch r := out.Pix[out.PixOffset(x, y)]; r {
			case 0:
				seen0 = true
			case 255:
				seen255 = true
			default:
				t.Fatalf("unexpected value: %d", r)
			}
		}
	}
	if !seen0 || !seen255 {
		t.Fatalf("expected both black and white pixels; seen0=%v seen255=%v", seen0, seen255)
	}
}

func TestAdaptiveThresholdRejectsEvenBlock(t *testing.T) {
	src := NewFilled(4, 4, black)
	if _, err := AdaptiveThreshold(src, 4, 0); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("expected ErrOperationUnavailable, got %v", err)
	}
}
