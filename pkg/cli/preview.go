package cli

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Inline terminal preview of the canvas.
//
// Backends, in the order they are tried when Backend is "auto":
//   - inline: iTerm2 OSC 1337 file sequence (iTerm2, WezTerm, Warp, VSCode ...)
//   - kitty: kitty graphics protocol, base64 PNG in 4096-byte chunks
//   - sixel: PNG piped through img2sixel
//   - chafa: block-symbol rendering for any terminal
//
// A named backend is tried first and the detected ones follow it. "none"
// disables the preview.

// ErrNoPreview is returned when no backend could render the canvas.
var ErrNoPreview = errors.New("no terminal preview backend available")

// character cell size assumed when sizing previews
const (
	cellW = 8
	cellH = 16

	minCols, maxCols = 6, 80
	minRows, maxRows = 3, 40

	kittyChunk = 4096
)

// Preview renders canvases to a terminal. It implements editor.Display.
type Preview struct {
	Backend string
	Out     io.Writer
	Getenv  func(string) string
	// LookPath finds external renderers; exec.LookPath when nil.
	LookPath func(string) (string, error)
}

// NewPreview returns a preview writing to stdout.
func NewPreview(backend string) *Preview {
	return &Preview{Backend: strings.ToLower(backend), Out: os.Stdout, Getenv: os.Getenv, LookPath: exec.LookPath}
}

// Show renders canvas and logs failures; a missing preview is not an error
// for the editor.
func (p *Preview) Show(canvas *image.NRGBA) {
	if err := p.Render(canvas); err != nil {
		log.Debug().Err(err).Msg("preview")
	}
}

// Render encodes img as PNG and sends it through the first backend that works.
func (p *Preview) Render(img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	order := p.order()
	if len(order) == 0 {
		return ErrNoPreview
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode failed: %w", err)
	}
	size := fitCells(img.Bounds().Dx(), img.Bounds().Dy())
	var errs []error
	for _, name := range order {
		err := p.send(name, buf.Bytes(), size)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).Str("backend", name).Msg("preview backend failed")
		errs = append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return errors.Join(append([]error{ErrNoPreview}, errs...)...)
}

func (p *Preview) getenv(k string) string {
	if p.Getenv == nil {
		return os.Getenv(k)
	}
	return p.Getenv(k)
}

func (p *Preview) have(bin string) bool {
	look := p.LookPath
	if look == nil {
		look = exec.LookPath
	}
	_, err := look(bin)
	return err == nil
}

// order returns the backends to try, the configured one first.
func (p *Preview) order() []string {
	var out []string
	add := func(name string) {
		for _, n := range out {
			if n == name {
				return
			}
		}
		out = append(out, name)
	}
	switch p.Backend {
	case "none", "off":
		return nil
	case "kitty", "inline", "sixel", "chafa":
		add(p.Backend)
	case "iterm", "wezterm":
		add("inline")
	}
	if p.inlineCapable() {
		add("inline")
	}
	if p.kitty() {
		add("kitty")
	}
	if p.sixelCapable() && p.have("img2sixel") {
		add("sixel")
	}
	if p.have("chafa") {
		add("chafa")
	}
	return out
}

func (p *Preview) kitty() bool {
	if p.getenv("KITTY_WINDOW_ID") != "" || p.getenv("KONSOLE_VERSION") != "" {
		return true
	}
	term := strings.ToLower(p.getenv("TERM"))
	return strings.Contains(term, "kitty") || strings.Contains(term, "ghostty")
}

func (p *Preview) inlineCapable() bool {
	switch p.getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby", "Bobcat":
		return true
	}
	if p.getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(p.getenv("TERM"))
	for _, s := range []string{"wezterm", "warp", "tabby", "vscode"} {
		if strings.Contains(term, s) {
			return true
		}
	}
	return false
}

func (p *Preview) sixelCapable() bool {
	if p.getenv("SIXEL_PREVIEW") == "1" || p.getenv("WT_SESSION") != "" {
		return true
	}
	term := strings.ToLower(p.getenv("TERM"))
	return strings.Contains(term, "foot") || strings.Contains(term, "mlterm")
}

type cells struct {
	Cols, Rows int
}

func (c cells) pixels() (int, int) { return c.Cols * cellW, c.Rows * cellH }

// fitCells maps pixel dimensions to a character-cell box, keeping the aspect
// ratio and never scaling up.
func fitCells(w, h int) cells {
	if w <= 0 || h <= 0 {
		return cells{minCols, minRows}
	}
	scale := math.Min(1, math.Min(float64(maxCols*cellW)/float64(w), float64(maxRows*cellH)/float64(h)))
	cols := int(math.Round(float64(w) * scale / cellW))
	rows := int(math.Round(float64(h) * scale / cellH))
	return cells{
		Cols: max(minCols, min(maxCols, cols)),
		Rows: max(minRows, min(maxRows, rows)),
	}
}

// trailing newlines so the prompt lands under the image
func padLines(rows int) string {
	switch {
	case rows <= 2:
		return "\n"
	case rows <= 6:
		return "\n\n"
	case rows <= 20:
		return "\n\n\n"
	}
	return "\n\n\n\n"
}

func (p *Preview) out() io.Writer {
	if p.Out == nil {
		return os.Stdout
	}
	return p.Out
}

func (p *Preview) send(name string, blob []byte, size cells) error {
	switch name {
	case "inline":
		return p.sendInline(blob, size)
	case "kitty":
		return p.sendKitty(blob, size)
	case "sixel":
		return p.pipe(blob, size.Rows, "img2sixel", "-")
	case "chafa":
		if !p.have("chafa") {
			return fmt.Errorf("chafa not found in PATH")
		}
		return p.pipe(blob, size.Rows, "chafa", "--fill=block", "--symbols=block", "-s", fmt.Sprintf("%dx%d", size.Cols, size.Rows), "-")
	}
	return fmt.Errorf("unknown preview backend %q", name)
}

func (p *Preview) sendInline(blob []byte, size cells) error {
	pw, ph := size.pixels()
	seq := fmt.Sprintf("\x1b]1337;File=name=canvas.png;inline=1;size=%d;width=%dpx;height=%dpx:%s\a",
		len(blob), pw, ph, base64.StdEncoding.EncodeToString(blob))
	_, err := io.WriteString(p.out(), seq+padLines(0))
	return err
}

// sendKitty transmits a PNG with a=T (transmit and display), q=2 (no
// replies) and a c x r cell placement on the first chunk.
func (p *Preview) sendKitty(blob []byte, size cells) error {
	enc := base64.StdEncoding.EncodeToString(blob)
	var b strings.Builder
	for pos := 0; pos < len(enc); pos += kittyChunk {
		end := min(pos+kittyChunk, len(enc))
		more := 0
		if end < len(enc) {
			more = 1
		}
		if pos == 0 {
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%d;", size.Cols, size.Rows, more)
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;", more)
		}
		b.WriteString(enc[pos:end])
		b.WriteString("\x1b\\")
	}
	b.WriteString(padLines(size.Rows))
	_, err := io.WriteString(p.out(), b.String())
	return err
}

// pipe feeds the PNG to an external renderer that writes to the terminal.
func (p *Preview) pipe(blob []byte, rows int, bin string, args ...string) error {
	if bin == "chafa" && p.getenv("NO_CHAFA") == "1" {
		return fmt.Errorf("chafa disabled via NO_CHAFA=1")
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(blob)
	cmd.Stdout = p.out()
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return err
	}
	_, err := io.WriteString(p.out(), padLines(rows))
	return err
}
