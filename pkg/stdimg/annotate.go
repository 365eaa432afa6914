package stdimg

import (
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

// faceLoader parses each font file once. Faces are built per size.
type faceLoader struct {
	mu    sync.Mutex
	ttf   map[string]*truetype.Font
	otf   map[string]*opentype.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	path string
	size float64
}

var fonts = &faceLoader{
	ttf:   map[string]*truetype.Font{},
	otf:   map[string]*opentype.Font{},
	faces: map[faceKey]font.Face{},
}

// Face returns a face for path at size points. An empty path selects the
// bundled Go Regular font. A path that cannot be read or parsed is an error.
func (l *faceLoader) Face(path string, size float64) (font.Face, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := faceKey{path, size}
	if f, ok := l.faces[k]; ok {
		return f, nil
	}
	face, err := l.load(path, size)
	if err != nil {
		return nil, err
	}
	l.faces[k] = face
	return face, nil
}

func (l *faceLoader) load(path string, size float64) (font.Face, error) {
	opts := &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}
	if path == "" {
		f, ok := l.ttf[""]
		if !ok {
			var err error
			if f, err = truetype.Parse(goregular.TTF); err != nil {
				return nil, fmt.Errorf("builtin font: %w", err)
			}
			l.ttf[""] = f
		}
		return truetype.NewFace(f, opts), nil
	}
	if f, ok := l.ttf[path]; ok {
		return truetype.NewFace(f, opts), nil
	}
	if f, ok := l.otf[path]; ok {
		return opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	if f, err := truetype.Parse(data); err == nil {
		l.ttf[path] = f
		return truetype.NewFace(f, opts), nil
	}
	// freetype only understands TrueType outlines; CFF based OpenType goes here.
	of, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	l.otf[path] = of
	return opentype.NewFace(of, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
}

// StampText draws style.Text with its baseline starting at `at`.
func StampText(src *image.NRGBA, at image.Point, style tool.TextStyle) (*image.NRGBA, error) {
	if src == nil {
		return nil, unavailable("no canvas")
	}
	if style.Text == "" {
		return nil, unavailable("empty text")
	}
	size := style.Size
	if size <= 0 {
		size = tool.DefaultFontSize
	}
	face, err := fonts.Face(style.FontPath, size)
	if err != nil {
		return nil, wrapUnavailable("text", err)
	}
	out := CloneNRGBA(src)
	dc := gg.NewContextForRGBA(rgbaView(out))
	dc.SetFontFace(face)
	dc.SetColor(opaqueColor(style.Color))
	dc.DrawString(style.Text, float64(at.X), float64(at.Y))
	return out, nil
}
