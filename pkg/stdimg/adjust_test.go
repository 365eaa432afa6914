package stdimg

import (
	"errors"
	"image/color"
	"testing"
)

func TestSepiaFull(t *testing.T) {
	src := NewFilled(1, 1, color.NRGBA{120, 200, 80, 255})
	out, err := Sepia(src, 1)
	if err != nil {
		t.Fatalf("sepia: %v", err)
	}
	r, g, b := 120.0, 200.0, 80.0
	want := color.NRGBA{
		R: clampFloatToUint8(min(0.393*r+0.769*g+0.189*b, 255)),
		G: clampFloatToUint8(min(0.349*r+0.686*g+0.168*b, 255)),
		B: clampFloatToUint8(min(0.272*r+0.534*g+0.131*b, 255)),
		A: 255,
	}
	if got := at(out, 0, 0); got != want {
		t.Fatalf("unexpected sepia pixel: got %v want %v", got, want)
	}
}

func TestSepiaZeroKeepsImage(t *testing.T) {
	src := NewFilled(2, 1, blue)
	out, err := Sepia(src, 0)
	if err != nil {
		t.Fatalf("sepia: %v", err)
	}
	if at(out, 1, 0) != blue {
		t.Fatalf("0%% sepia changed the pixel to %v", at(out, 1, 0))
	}
	if _, err := Sepia(src, 1.5); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("expected error for amount > 1, got %v", err)
	}
}

func TestSepiaCommandPercent(t *testing.T) {
	src := NewFilled(2, 2, color.NRGBA{100, 100, 100, 255})
	half, err := ApplyCommand(src, "sepia", []string{"50"})
	if err != nil {
		t.Fatalf("sepia 50: %v", err)
	}
	full, err := ApplyCommand(src, "sepia", nil)
	if err != nil {
		t.Fatalf("sepia: %v", err)
	}
	// blue channel of sepia is darker than the input, half way sits between
	h, f := at(half, 0, 0).B, at(full, 0, 0).B
	if !(f < h && h < 100) {
		t.Fatalf("expected full < half < 100 on blue, got %d %d", f, h)
	}
}

func TestPosterizeTwoLevels(t *testing.T) {
	src := NewFilled(3, 1, color.NRGBA{0, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{100, 100, 100, 255})
	src.SetNRGBA(2, 0, color.NRGBA{200, 200, 200, 255})
	out, err := Posterize(src, 2)
	if err != nil {
		t.Fatalf("posterize: %v", err)
	}
	for x, want := range []uint8{0, 0, 255} {
		if c := at(out, x, 0); c.R != want || c.G != want || c.B != want {
			t.Fatalf("pixel %d: got %v want %d", x, c, want)
		}
	}
	if _, err := Posterize(src, 1); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("expected error for one level, got %v", err)
	}
}

func TestMedianRemovesImpulse(t *testing.T) {
	grey := color.NRGBA{100, 100, 100, 255}
	src := NewFilled(5, 5, grey)
	src.SetNRGBA(2, 2, color.NRGBA{255, 255, 255, 255})
	out, err := Median(src, 1)
	if err != nil {
		t.Fatalf("median: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("output bounds mismatch")
	}
	if c := at(out, 2, 2); c != grey {
		t.Fatalf("expected impulse removed, got %v", c)
	}
}

func TestSharpenAndGammaKeepSize(t *testing.T) {
	src := NewFilled(6, 4, color.NRGBA{80, 80, 80, 255})
	s, err := Sharpen(src, 1)
	if err != nil {
		t.Fatalf("sharpen: %v", err)
	}
	if s.Bounds() != src.Bounds() || !near(at(s, 3, 2), at(src, 3, 2), 1) {
		t.Fatalf("sharpening a flat image should change nothing")
	}
	g, err := Gamma(src, 2)
	if err != nil {
		t.Fatalf("gamma: %v", err)
	}
	if at(g, 0, 0).R <= 80 {
		t.Fatalf("gamma 2 should brighten, got %v", at(g, 0, 0))
	}
	if _, err := ApplyCommand(src, "gamma", nil); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("gamma without a value should be unavailable, got %v", err)
	}
}
