package codec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// exifSegment builds an APP1 block holding only an IFD0 orientation tag.
func exifSegment(o uint16) []byte {
	tiff := []byte{
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08,
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, byte(o >> 8), byte(o), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	n := len(payload) + 2
	return append([]byte{0xFF, 0xE1, byte(n >> 8), byte(n)}, payload...)
}

func TestOrientationParsed(t *testing.T) {
	data := append([]byte{0xFF, 0xD8}, exifSegment(6)...)
	data = append(data, 0xFF, 0xDA)
	o, err := orientation(data)
	if err != nil {
		t.Fatalf("orientation: %v", err)
	}
	if o != 6 {
		t.Fatalf("expected 6, got %d", o)
	}
	if _, err := orientation([]byte{0x89, 'P', 'N', 'G'}); err == nil {
		t.Fatalf("expected error for non-jpeg data")
	}
}

func TestDecodeAppliesOrientation(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(8, 4, color.NRGBA{200, 10, 10, 255}), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	raw := buf.Bytes()
	data := append([]byte{}, raw[:2]...)
	data = append(data, exifSegment(6)...)
	data = append(data, raw[2:]...)

	img, format, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg, got %q", format)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 8 {
		t.Fatalf("expected rotated 4x8, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if len(fallbacks) > 0 {
		t.Skip("fallback decoders registered")
	}
	_, _, err := DecodeBytes([]byte("definitely not an image"))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestSaveLoadPNGResizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "canvas.png")
	if err := Save(path, solid(20, 10, color.NRGBA{0, 0, 255, 255})); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path, 40, 30)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 40, 30) {
		t.Fatalf("unexpected bounds %v", got.Bounds())
	}
	c := got.NRGBAAt(20, 15)
	if c.B < 250 || c.R > 5 || c.A != 255 {
		t.Fatalf("unexpected colour %v", c)
	}
}

func TestLoadFlattensTransparency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clear.png")
	if err := Save(path, solid(5, 5, color.NRGBA{})); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path, 5, 5)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c := got.NRGBAAt(2, 2); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("expected white, got %v", c)
	}
}

func TestSaveFormats(t *testing.T) {
	dir := t.TempDir()
	img := solid(16, 12, color.NRGBA{10, 200, 10, 255})
	for _, name := range []string{"a.jpg", "a.gif", "a.bmp", "a.tiff", "a.unknown"} {
		path := filepath.Join(dir, name)
		if err := Save(path, img); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		back, err := Decode(path)
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if b := back.Bounds(); b.Dx() != 16 || b.Dy() != 12 {
			t.Fatalf("%s: unexpected size %v", name, b)
		}
	}
}

func TestSavePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canvas.pdf")
	if err := Save(path, solid(30, 20, color.NRGBA{255, 0, 0, 255})); err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"x.PNG": "png", "x.jpeg": "jpeg", "x.JPG": "jpeg", "x.tif": "tiff",
		"x.pdf": "pdf", "x": "png",
	}
	for in, want := range cases {
		if got := Format(in); got != want {
			t.Fatalf("Format(%q) = %q, want %q", in, got, want)
		}
	}
}
