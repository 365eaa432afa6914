// Package editor ties the live canvas, its history and the tool controller
// together. Front ends drive an Editor and render through a Display.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/Fepozopo/tpaint/pkg/codec"
	"github.com/Fepozopo/tpaint/pkg/history"
	"github.com/Fepozopo/tpaint/pkg/stdimg"
	"github.com/Fepozopo/tpaint/pkg/tool"
	"github.com/rs/zerolog/log"
)

// Default canvas size.
const (
	DefaultWidth  = 900
	DefaultHeight = 700
)

// Display renders the live canvas. It is called after every change,
// including the uncommitted segments of a stroke in progress.
type Display interface {
	Show(canvas *image.NRGBA)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(canvas *image.NRGBA)

func (f DisplayFunc) Show(canvas *image.NRGBA) { f(canvas) }

// Options configure a new Editor. Zero values select the defaults.
type Options struct {
	Width, Height int
	Settings      tool.Settings
	Ops           tool.Operations
	Display       Display
}

// Editor implements tool.Document.
type Editor struct {
	canvas  *image.NRGBA
	hist    *history.History
	ctl     *tool.Controller
	display Display

	width, height int
	path          string
}

// New returns an editor holding a blank white canvas as its only history
// entry.
func New(opts Options) *Editor {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Ops == nil {
		opts.Ops = stdimg.Engine{}
	}
	if opts.Settings == (tool.Settings{}) {
		opts.Settings = tool.DefaultSettings()
	}
	e := &Editor{width: opts.Width, height: opts.Height, display: opts.Display}
	e.canvas = blank(e.width, e.height)
	e.hist = history.New(e.canvas, "new")
	e.ctl = tool.New(opts.Ops, e, opts.Settings)
	return e
}

func blank(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// SetDisplay replaces the display sink and shows the current canvas on it.
func (e *Editor) SetDisplay(d Display) {
	e.display = d
	e.show()
}

func (e *Editor) show() {
	if e.display != nil {
		e.display.Show(e.canvas)
	}
}

// Controller returns the tool controller bound to this editor.
func (e *Editor) Controller() *tool.Controller { return e.ctl }

// History exposes the timeline for inspection.
func (e *Editor) History() *history.History { return e.hist }

// Size returns the configured canvas size used for new and opened images.
func (e *Editor) Size() (int, int) { return e.width, e.height }

// Path is the file the canvas was last opened from or saved to.
func (e *Editor) Path() string { return e.path }

// Canvas returns the live canvas. Callers must not modify it.
func (e *Editor) Canvas() *image.NRGBA { return e.canvas }

// Replace shows c without recording it.
func (e *Editor) Replace(c *image.NRGBA) {
	e.canvas = c
	e.show()
}

// Commit shows c and records it as a new history entry.
func (e *Editor) Commit(c *image.NRGBA, label string) {
	e.canvas = c
	entry := e.hist.Commit(c, label)
	log.Debug().Str("label", label).Str("id", entry.ID.String()).Int("entries", e.hist.Len()).Msg("commit")
	e.show()
}

// Undo steps back one entry and reports whether anything changed.
func (e *Editor) Undo() bool {
	return e.step(e.hist.Undo, "undo")
}

// Redo steps forward one entry and reports whether anything changed.
func (e *Editor) Redo() bool {
	return e.step(e.hist.Redo, "redo")
}

func (e *Editor) step(move func() (history.Entry, error), what string) bool {
	entry, err := move()
	switch {
	case errors.Is(err, history.ErrEmptyHistory):
		panic("editor: " + what + " on empty history")
	case err != nil:
		log.Debug().Err(err).Msg(what)
		return false
	}
	// a half-drawn stroke or pending anchor belongs to the state we left
	e.ctl.SetMode(e.ctl.Mode())
	e.canvas = entry.Canvas()
	e.show()
	return true
}

// Apply runs a named filter command on the canvas and commits the result.
// The canvas is unchanged when it fails.
func (e *Editor) Apply(name string, args []string) error {
	if e.ctl.Stroking() {
		e.ctl.SetMode(e.ctl.Mode())
	}
	out, err := stdimg.ApplyCommand(stdimg.CloneNRGBA(e.canvas), name, args)
	if err != nil {
		return err
	}
	spec, _ := stdimg.FindCommand(name)
	e.Commit(out, spec.Name)
	return nil
}

// NewCanvas discards the history and starts over with a blank canvas.
func (e *Editor) NewCanvas() {
	e.reset(blank(e.width, e.height), "new")
	e.path = ""
}

// Load replaces the canvas with the image at path, fitted to the canvas size,
// and discards the history.
func (e *Editor) Load(path string) error {
	img, err := codec.Load(path, e.width, e.height)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	e.reset(img, "open")
	e.path = path
	return nil
}

func (e *Editor) reset(c *image.NRGBA, label string) {
	e.ctl.SetMode(e.ctl.Mode())
	e.canvas = c
	e.hist.Reset(c, label)
	e.show()
}

// Save writes the current canvas to path.
func (e *Editor) Save(path string) error {
	if err := codec.Save(path, e.canvas); err != nil {
		return err
	}
	e.path = path
	return nil
}

// Info describes the canvas and its history.
func (e *Editor) Info() string {
	return fmt.Sprintf("%s, History: %d/%d, Tool: %s",
		codec.Info(e.canvas), e.hist.Cursor()+1, e.hist.Len(), e.ctl.Mode())
}
