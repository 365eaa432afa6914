package stdimg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

var (
	black = color.NRGBA{0, 0, 0, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func at(img *image.NRGBA, x, y int) color.NRGBA {
	i := img.PixOffset(x, y)
	return color.NRGBA{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

func near(a, b color.NRGBA, tol int) bool {
	d := func(x, y uint8) bool {
		v := int(x) - int(y)
		return v <= tol && v >= -tol
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}

func saveArtifact(t *testing.T, name string, img image.Image) {
	t.Helper()
	if os.Getenv("TPAINT_SAVE_TEST_OUTPUT") != "1" {
		return
	}
	f, err := os.Create(name)
	if err != nil {
		t.Logf("artifact %s: %v", name, err)
		return
	}
	defer f.Close()
	png.Encode(f, img)
}

func TestDrawLineLeavesSourceAlone(t *testing.T) {
	src := NewFilled(20, 10, white)
	before := CloneNRGBA(src)
	out, err := DrawLine(src, image.Pt(2, 5), image.Pt(17, 5), black, 3)
	if err != nil {
		t.Fatalf("draw line: %v", err)
	}
	if !bytes.Equal(src.Pix, before.Pix) {
		t.Fatalf("source modified")
	}
	if c := at(out, 10, 5); c != black {
		t.Fatalf("line center = %v", c)
	}
	if c := at(out, 10, 0); c != white {
		t.Fatalf("far pixel = %v", c)
	}
	if _, err := DrawLine(src, image.Pt(0, 0), image.Pt(1, 1), black, 0); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("zero width: %v", err)
	}
}

func TestFloodFillFollowsGradient(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 10, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 10; x++ {
			v := uint8(x * 4)
			if x >= 5 {
				v = 200
			}
			i := src.PixOffset(x, y)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = v, v, v, 255
		}
	}
	out, err := FloodFill(src, image.Pt(0, 1), red, tool.FillLoDiff, tool.FillUpDiff)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 10; x++ {
			c := at(out, x, y)
			if x < 5 && c != red {
				t.Fatalf("expected red at %d,%d got %v", x, y, c)
			}
			if x >= 5 && c == red {
				t.Fatalf("fill leaked to %d,%d", x, y)
			}
		}
	}
}

func TestFloodFillSeedOutside(t *testing.T) {
	src := NewFilled(4, 4, white)
	_, err := FloodFill(src, image.Pt(9, 9), red, tool.FillLoDiff, tool.FillUpDiff)
	if !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("want ErrOperationUnavailable, got %v", err)
	}
}

func TestZoomOutLeavesWhiteMargin(t *testing.T) {
	src := NewFilled(20, 20, red)
	out, err := ZoomAt(src, image.Pt(10, 10), 0.5)
	if err != nil {
		t.Fatalf("zoom: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("size changed: %v", out.Bounds())
	}
	if c := at(out, 3, 3); !near(c, red, 5) {
		t.Fatalf("scaled area = %v", c)
	}
	if c := at(out, 15, 15); c != white {
		t.Fatalf("margin = %v", c)
	}
	if _, err := ZoomAt(src, image.Pt(1, 1), 0); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("zero factor: %v", err)
	}
}

func TestZoomInKeepsSize(t *testing.T) {
	src := NewFilled(30, 20, blue)
	out, err := ZoomAt(src, image.Pt(29, 19), tool.ZoomIn)
	if err != nil {
		t.Fatalf("zoom: %v", err)
	}
	if out.Bounds().Dx() != 30 || out.Bounds().Dy() != 20 {
		t.Fatalf("size = %v", out.Bounds())
	}
}

func TestRotateKeepsSizeAndFillsWhite(t *testing.T) {
	src := NewFilled(40, 40, red)
	out, err := Rotate(src, 45)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if out.Bounds() != image.Rect(0, 0, 40, 40) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if c := at(out, 0, 0); !near(c, white, 10) {
		t.Fatalf("corner = %v", c)
	}
	if c := at(out, 20, 20); !near(c, red, 10) {
		t.Fatalf("center = %v", c)
	}
	saveArtifact(t, "rotate_test_out.png", out)
}

func TestStampShapes(t *testing.T) {
	src := NewFilled(10, 10, white)
	out, err := StampShape(src, tool.Rectangle, image.Rect(2, 2, 8, 8), red)
	if err != nil {
		t.Fatalf("rectangle: %v", err)
	}
	if at(out, 5, 5) != red || at(out, 9, 9) != white {
		t.Fatalf("rectangle fill wrong")
	}
	out, err = StampShape(src, tool.Circle, image.Rect(0, 0, 10, 10), red)
	if err != nil {
		t.Fatalf("circle: %v", err)
	}
	if at(out, 5, 5) != red || at(out, 0, 0) != white {
		t.Fatalf("circle fill wrong")
	}
	out, err = StampShape(src, tool.Triangle, image.Rect(0, 0, 10, 10), red)
	if err != nil {
		t.Fatalf("triangle: %v", err)
	}
	if at(out, 5, 7) != red || at(out, 0, 1) != white {
		t.Fatalf("triangle fill wrong")
	}
	if _, err := StampShape(src, tool.Rectangle, image.Rect(3, 3, 3, 9), red); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("zero-size box: %v", err)
	}
}

func TestStampText(t *testing.T) {
	src := NewFilled(120, 40, white)
	out, err := StampText(src, image.Pt(5, 30), tool.TextStyle{Text: "Hello", Size: 20, Color: black})
	if err != nil {
		t.Fatalf("text: %v", err)
	}
	if bytes.Equal(out.Pix, src.Pix) {
		t.Fatalf("text left canvas unchanged")
	}
	saveArtifact(t, "text_test_out.png", out)

	_, err = StampText(src, image.Pt(5, 30), tool.TextStyle{Text: "x", Size: 20, FontPath: "/nonexistent/font.ttf"})
	if !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("missing font: %v", err)
	}
}

func TestStampTextWithFontFile(t *testing.T) {
	fontPath := os.Getenv("TPAINT_TEST_FONT")
	if fontPath == "" {
		t.Skip("TPAINT_TEST_FONT not set")
	}
	src := NewFilled(120, 40, white)
	if _, err := StampText(src, image.Pt(5, 30), tool.TextStyle{Text: "Hello", Size: 18, FontPath: fontPath, Color: black}); err != nil {
		t.Fatalf("text with %s: %v", fontPath, err)
	}
}

func TestLensKeepsCenterPixel(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 21, 21))
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			i := src.PixOffset(x, y)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = uint8(x*12), uint8(y*12), 0, 255
		}
	}
	for _, k := range []tool.LensKind{tool.Convex, tool.Concave} {
		out, err := LensDistort(src, image.Pt(7, 9), k)
		if err != nil {
			t.Fatalf("lens %v: %v", k, err)
		}
		if at(out, 7, 9) != at(src, 7, 9) {
			t.Fatalf("%v moved the centre pixel", k)
		}
		if bytes.Equal(out.Pix, src.Pix) {
			t.Fatalf("%v had no effect", k)
		}
	}
	if _, err := LensDistort(src, image.Pt(-1, 3), tool.Convex); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("outside centre: %v", err)
	}
}

func TestAdaptiveThresholdUniform(t *testing.T) {
	src := NewFilled(16, 16, color.NRGBA{128, 128, 128, 255})
	out, err := AdaptiveThreshold(src, DefaultThresholdBlock, DefaultThresholdOffset)
	if err != nil {
		t.Fatalf("threshold: %v", err)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatalf("uniform image should threshold to white")
		}
	}
	if _, err := AdaptiveThreshold(src, 10, 0); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("even block: %v", err)
	}
}

func TestAdaptiveThresholdDarkDot(t *testing.T) {
	src := NewFilled(21, 21, white)
	i := src.PixOffset(10, 10)
	src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 0, 0, 0
	out, err := AdaptiveThreshold(src, 11, 10)
	if err != nil {
		t.Fatalf("threshold: %v", err)
	}
	if at(out, 10, 10) != black || at(out, 0, 0) != white {
		t.Fatalf("dot not isolated")
	}
}

func TestAutoCorrectStretchesContrast(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			v := uint8(100 + x%2*20)
			i := src.PixOffset(x, y)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3] = v, v, v, 255
		}
	}
	out, err := AutoCorrect(src)
	if err != nil {
		t.Fatalf("auto correct: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("size = %v", out.Bounds())
	}
	_, before := LumaStats(src)
	_, after := LumaStats(out)
	if after <= before {
		t.Fatalf("contrast did not increase: %v -> %v", before, after)
	}
}

func TestEqualizeMapsExtremes(t *testing.T) {
	src := NewFilled(2, 1, color.NRGBA{50, 50, 50, 255})
	i := src.PixOffset(1, 0)
	src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 60, 60, 60
	out := Equalize(src)
	if at(out, 0, 0).R != 0 || at(out, 1, 0).R != 255 {
		t.Fatalf("equalize = %v %v", at(out, 0, 0), at(out, 1, 0))
	}
}

func TestBackProjectKeepsMatchingColour(t *testing.T) {
	src := NewFilled(40, 20, blue)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			i := src.PixOffset(x, y)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 255, 0, 0
		}
	}
	out, err := BackProject(src, 2, 2, 10, 10)
	if err != nil {
		t.Fatalf("back project: %v", err)
	}
	if at(out, 5, 10) != red {
		t.Fatalf("region colour lost: %v", at(out, 5, 10))
	}
	if at(out, 35, 10) != black {
		t.Fatalf("other colour kept: %v", at(out, 35, 10))
	}
	if _, err := BackProject(src, 5, 5, 0, 4); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("empty roi: %v", err)
	}
}

func TestSeamlessCloneTakesBoundaryColour(t *testing.T) {
	dst := NewFilled(100, 100, color.NRGBA{100, 100, 100, 255})
	src := NewFilled(30, 30, color.NRGBA{200, 200, 200, 255})
	out, err := SeamlessClone(dst, src, image.Pt(50, 50))
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if c := at(out, 50, 50); !near(c, color.NRGBA{100, 100, 100, 255}, 1) {
		t.Fatalf("flat clone should blend away, got %v", c)
	}
	if _, err := SeamlessClone(dst, src, image.Pt(500, 500)); !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("off-canvas clone: %v", err)
	}
}

func TestSeamlessCloneKeepsGradients(t *testing.T) {
	dst := NewFilled(60, 60, white)
	src := NewFilled(20, 20, color.NRGBA{200, 200, 200, 255})
	// dark square in the middle of src
	for y := 8; y < 12; y++ {
		for x := 8; x < 12; x++ {
			i := src.PixOffset(x, y)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 40, 40, 40
		}
	}
	out, err := SeamlessClone(dst, src, image.Pt(30, 30))
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	inside := at(out, 30, 30)
	around := at(out, 24, 24)
	if int(around.R)-int(inside.R) < 100 {
		t.Fatalf("detail lost: inside %v around %v", inside, around)
	}
}

func TestHomographyIdentity(t *testing.T) {
	pts := [4][2]float64{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	h, err := Homography(pts, pts)
	if err != nil {
		t.Fatalf("homography: %v", err)
	}
	want := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	for i := range want {
		if d := h[i] - want[i]; d > 1e-9 || d < -1e-9 {
			t.Fatalf("h = %v", h)
		}
	}
}

func TestPerspectiveCorrectRectangle(t *testing.T) {
	src := NewFilled(200, 150, white)
	for y := 30; y < 120; y++ {
		for x := 40; x < 160; x++ {
			i := src.PixOffset(x, y)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 0, 0, 0
		}
	}
	q, ok := FindQuad(src)
	if !ok {
		t.Fatalf("no quad found")
	}
	if q[0].X > 45 || q[0].Y > 35 || q[2].X < 155 || q[2].Y < 115 {
		t.Fatalf("quad = %v", q)
	}
	out, err := PerspectiveCorrect(src)
	if err != nil {
		t.Fatalf("perspective: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("size = %v", out.Bounds())
	}
	if c := at(out, 100, 75); c.R > 50 {
		t.Fatalf("rectified centre = %v", c)
	}
	saveArtifact(t, "perspective_test_out.png", out)
}

func TestPerspectiveWithoutOutline(t *testing.T) {
	_, err := PerspectiveCorrect(NewFilled(50, 50, white))
	if !errors.Is(err, ErrOperationUnavailable) {
		t.Fatalf("want ErrOperationUnavailable, got %v", err)
	}
}

func TestBlurRegionOnlyTouchesRegion(t *testing.T) {
	src := NewFilled(40, 40, white)
	for y := 0; y < 40; y++ {
		for x := 20; x < 40; x++ {
			i := src.PixOffset(x, y)
			src.Pix[i], src.Pix[i+1], src.Pix[i+2] = 0, 0, 0
		}
	}
	out, err := BlurRegion(src, 10, 10, 20, 20)
	if err != nil {
		t.Fatalf("blur: %v", err)
	}
	if c := at(out, 20, 20); c.R == 0 || c.R == 255 {
		t.Fatalf("edge inside region not blurred: %v", c)
	}
	if at(out, 19, 5) != white || at(out, 20, 5) != black {
		t.Fatalf("pixels outside region changed")
	}
}

func TestInvertAndGrayscale(t *testing.T) {
	src := NewFilled(3, 3, color.NRGBA{10, 200, 30, 255})
	inv, err := Invert(src)
	if err != nil {
		t.Fatalf("invert: %v", err)
	}
	if at(inv, 1, 1) != (color.NRGBA{245, 55, 225, 255}) {
		t.Fatalf("invert = %v", at(inv, 1, 1))
	}
	g, err := Grayscale(src)
	if err != nil {
		t.Fatalf("grayscale: %v", err)
	}
	c := at(g, 1, 1)
	if c.R != c.G || c.G != c.B {
		t.Fatalf("grayscale not neutral: %v", c)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"red":       red,
		"#00f":      blue,
		"#ffffff":   white,
		"0, 0 ,255": blue,
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %v, %v", in, got, err)
		}
	}
	for _, bad := range []string{"", "#12", "1,2", "300,0,0", "mauve-ish"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) should fail", bad)
		}
	}
	if FormatColor(red) != "#ff0000" {
		t.Fatalf("FormatColor = %s", FormatColor(red))
	}
}
