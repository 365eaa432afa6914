package tool

import (
	"errors"
	"image"
	"image/color"
)

var (
	// ErrOperationUnavailable marks any failure of a canvas operation. The
	// canvas and history are unchanged when it is returned.
	ErrOperationUnavailable = errors.New("operation unavailable")
	// ErrWrongMode is returned when a mode-specific request arrives while a
	// different mode is active.
	ErrWrongMode = errors.New("not available in the current tool mode")
)

// TextStyle carries the text settings used for a single stamp.
type TextStyle struct {
	Text     string
	FontPath string
	Size     float64
	Color    color.NRGBA
}

// Operations produce a new canvas from src. On error src must be left as it
// was and the error should wrap ErrOperationUnavailable.
type Operations interface {
	DrawLine(src *image.NRGBA, from, to image.Point, c color.NRGBA, width int) (*image.NRGBA, error)
	FloodFill(src *image.NRGBA, seed image.Point, c color.NRGBA, lo, up [3]uint8) (*image.NRGBA, error)
	ZoomAt(src *image.NRGBA, center image.Point, factor float64) (*image.NRGBA, error)
	Rotate(src *image.NRGBA, degrees float64) (*image.NRGBA, error)
	StampShape(src *image.NRGBA, kind ShapeKind, box image.Rectangle, c color.NRGBA) (*image.NRGBA, error)
	StampText(src *image.NRGBA, at image.Point, style TextStyle) (*image.NRGBA, error)
	LensDistort(src *image.NRGBA, center image.Point, kind LensKind) (*image.NRGBA, error)
}

// Document is the owner of the live canvas.
type Document interface {
	// Canvas returns the live canvas. The controller never writes to it
	// directly; it hands it to Operations and passes the result back.
	Canvas() *image.NRGBA
	// Replace swaps the live canvas without touching history.
	Replace(c *image.NRGBA)
	// Commit swaps the live canvas and records it in history.
	Commit(c *image.NRGBA, label string)
}
