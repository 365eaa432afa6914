package editor

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/Fepozopo/tpaint/pkg/history"
	"github.com/Fepozopo/tpaint/pkg/tool"
)

type recorder struct {
	shows int
	last  *image.NRGBA
}

func (r *recorder) Show(c *image.NRGBA) {
	r.shows++
	r.last = c
}

func newTestEditor(t *testing.T) (*Editor, *recorder) {
	t.Helper()
	rec := &recorder{}
	e := New(Options{Width: 60, Height: 40, Display: rec})
	return e, rec
}

func stroke(t *testing.T, e *Editor, pts ...image.Point) {
	t.Helper()
	c := e.Controller()
	if err := c.OnPress(pts[0], tool.Primary); err != nil {
		t.Fatalf("press: %v", err)
	}
	for _, p := range pts[1:] {
		if err := c.OnMove(p); err != nil {
			t.Fatalf("move: %v", err)
		}
	}
	if err := c.OnRelease(pts[len(pts)-1]); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestNewEditorBlankCanvas(t *testing.T) {
	e, _ := newTestEditor(t)
	if e.Canvas().Bounds() != image.Rect(0, 0, 60, 40) {
		t.Fatalf("unexpected bounds %v", e.Canvas().Bounds())
	}
	if c := e.Canvas().NRGBAAt(10, 10); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("expected white canvas, got %v", c)
	}
	if e.History().Len() != 1 || e.History().CanUndo() {
		t.Fatalf("expected a single history entry")
	}
}

func TestStrokeUndoRedo(t *testing.T) {
	e, rec := newTestEditor(t)
	before := append([]byte(nil), e.Canvas().Pix...)
	stroke(t, e, image.Pt(5, 20), image.Pt(30, 20), image.Pt(55, 20))
	after := append([]byte(nil), e.Canvas().Pix...)

	if e.History().Len() != 2 {
		t.Fatalf("expected one commit for the stroke, got %d entries", e.History().Len())
	}
	if bytes.Equal(before, after) {
		t.Fatalf("stroke did not change the canvas")
	}
	if rec.last != e.Canvas() {
		t.Fatalf("display was not given the live canvas")
	}

	shows := rec.shows
	if !e.Undo() {
		t.Fatalf("undo reported no change")
	}
	if !bytes.Equal(e.Canvas().Pix, before) {
		t.Fatalf("undo did not restore the blank canvas")
	}
	if rec.shows != shows+1 {
		t.Fatalf("undo should refresh the display once")
	}
	if e.Undo() {
		t.Fatalf("undo at the oldest entry should be a no-op")
	}
	if !e.Redo() {
		t.Fatalf("redo reported no change")
	}
	if !bytes.Equal(e.Canvas().Pix, after) {
		t.Fatalf("redo did not restore the stroke byte-for-byte")
	}
	if e.Redo() {
		t.Fatalf("redo at the newest entry should be a no-op")
	}
}

func TestUndoDropsStrokeInProgress(t *testing.T) {
	e, _ := newTestEditor(t)
	stroke(t, e, image.Pt(5, 5), image.Pt(20, 5))
	c := e.Controller()
	if err := c.OnPress(image.Pt(5, 30), tool.Primary); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := c.OnMove(image.Pt(40, 30)); err != nil {
		t.Fatalf("move: %v", err)
	}
	e.Undo()
	if c.Stroking() {
		t.Fatalf("undo should end the stroke in progress")
	}
	if e.History().Len() != 2 || e.History().Cursor() != 0 {
		t.Fatalf("unexpected history %d/%d", e.History().Cursor(), e.History().Len())
	}
}

func TestModeSwitchMidStrokeRestoresCurrentEntry(t *testing.T) {
	e, rec := newTestEditor(t)
	c := e.Controller()
	if err := c.OnPress(image.Pt(5, 20), tool.Primary); err != nil {
		t.Fatalf("press: %v", err)
	}
	if err := c.OnMove(image.Pt(40, 20)); err != nil {
		t.Fatalf("move: %v", err)
	}
	if px := e.Canvas().NRGBAAt(20, 20); px.R > 10 {
		t.Fatalf("expected a live segment, got %v", px)
	}
	c.SetMode(tool.Zoom)
	cur, err := e.History().Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !bytes.Equal(e.Canvas().Pix, cur.Canvas().Pix) {
		t.Fatalf("live canvas differs from the current entry after switching tools")
	}
	if rec.last != e.Canvas() {
		t.Fatalf("display not refreshed with the restored canvas")
	}
	c.SetMode(tool.Rotate)
	if err := c.Rotate(true); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 60; x++ {
			if px := e.Canvas().NRGBAAt(x, y); px.R < 128 {
				t.Fatalf("stroke pixel %v at %d,%d ended up in %q", px, x, y, e.History().Labels()[1])
			}
		}
	}
}

func TestApplyCommitsAndFailsCleanly(t *testing.T) {
	e, _ := newTestEditor(t)
	if err := e.Apply("invert", nil); err != nil {
		t.Fatalf("invert: %v", err)
	}
	if c := e.Canvas().NRGBAAt(1, 1); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Fatalf("expected black after invert, got %v", c)
	}
	if labels := e.History().Labels(); labels[len(labels)-1] != "invert" {
		t.Fatalf("unexpected labels %v", labels)
	}

	n := e.History().Len()
	before := e.Canvas()
	if err := e.Apply("blur", []string{"100", "100", "10", "10"}); !errors.Is(err, tool.ErrOperationUnavailable) {
		t.Fatalf("expected ErrOperationUnavailable, got %v", err)
	}
	if err := e.Apply("nosuch", nil); err == nil {
		t.Fatalf("expected error for unknown command")
	}
	if e.History().Len() != n || e.Canvas() != before {
		t.Fatalf("failed commands must not change the editor")
	}
}

func TestCommitAfterUndoDiscardsRedo(t *testing.T) {
	e, _ := newTestEditor(t)
	if err := e.Apply("invert", nil); err != nil {
		t.Fatalf("invert: %v", err)
	}
	if err := e.Apply("grayscale", nil); err != nil {
		t.Fatalf("grayscale: %v", err)
	}
	e.Undo()
	if err := e.Apply("invert", nil); err != nil {
		t.Fatalf("invert: %v", err)
	}
	if e.Redo() {
		t.Fatalf("redo branch should be gone")
	}
	want := []string{"new", "invert", "invert"}
	got := e.History().Labels()
	if len(got) != len(want) {
		t.Fatalf("labels %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("labels %v, want %v", got, want)
		}
	}
}

func TestNewCanvasResetsHistory(t *testing.T) {
	e, _ := newTestEditor(t)
	stroke(t, e, image.Pt(1, 1), image.Pt(30, 30))
	e.NewCanvas()
	if e.History().Len() != 1 || e.History().CanUndo() || e.History().CanRedo() {
		t.Fatalf("new canvas should leave a single entry")
	}
	if c := e.Canvas().NRGBAAt(15, 15); c != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("expected white, got %v", c)
	}
}

func TestSaveThenLoad(t *testing.T) {
	e, _ := newTestEditor(t)
	e.Controller().SetMode(tool.Fill)
	e.Controller().SetColor(color.NRGBA{R: 255})
	if err := e.Controller().OnPress(image.Pt(3, 3), tool.Primary); err != nil {
		t.Fatalf("fill: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.png")
	if err := e.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	other, _ := newTestEditor(t)
	stroke(t, other, image.Pt(0, 0), image.Pt(10, 10))
	if err := other.Load(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if other.Path() != path {
		t.Fatalf("path not recorded")
	}
	if other.History().Len() != 1 {
		t.Fatalf("load should reset history, got %d entries", other.History().Len())
	}
	if c := other.Canvas().NRGBAAt(30, 20); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Fatalf("expected red, got %v", c)
	}
	if err := other.Load(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if other.History().Len() != 1 {
		t.Fatalf("failed load must keep history")
	}
}

func TestEmptyHistoryPanics(t *testing.T) {
	e := &Editor{hist: &history.History{}}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on empty history")
		}
	}()
	e.Undo()
}
