// Package cli is the terminal front end: a line-oriented REPL that feeds
// pointer events and commands to an editor and previews the canvas inline.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Fepozopo/tpaint/pkg/config"
	"github.com/Fepozopo/tpaint/pkg/editor"
	"github.com/Fepozopo/tpaint/pkg/stdimg"
	"github.com/Fepozopo/tpaint/pkg/tool"
)

const helpText = `Commands available:
  t [tool]          - select tool (brush eraser fill zoom text rotate shape lens)
  p x y [l|r|m]     - press a pointer button at x,y (default left)
  m x y             - move the pointer to x,y
  r x y             - release the pointer at x,y
  d x1 y1 x2 y2 ... - drag: press, move through the points, release
  / [name args...]  - select and apply a filter command
  c color           - brush colour (name, #rrggbb or r,g,b)
  b size            - brush size
  x [text]          - text settings
  k kind            - shape kind (rectangle circle triangle)
  w / e             - rotate 45 degrees counter-clockwise / clockwise
  z / y             - undo / redo
  n                 - new blank canvas
  o [path]          - open an image
  s [path]          - save the canvas
  i                 - canvas info
  u                 - check for updates
  h                 - show this help message
  q                 - quit`

// errQuit ends the REPL loop.
var errQuit = errors.New("quit")

// REPL reads commands line by line and drives an editor.
type REPL struct {
	ed      *editor.Editor
	cfg     config.Config
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	preview *Preview

	// pickers return "" or an error when unavailable
	pickCommand func() (string, error)
	pickFile    func() (string, error)
}

// NewREPL wires a REPL to ed. preview may be nil.
func NewREPL(ed *editor.Editor, cfg config.Config, in io.Reader, out, errOut io.Writer, preview *Preview) *REPL {
	r := &REPL{
		ed:      ed,
		cfg:     cfg,
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		preview: preview,
	}
	if preview != nil {
		r.pickCommand = func() (string, error) { return SelectCommandWithFzf(stdimg.Commands) }
		r.pickFile = func() (string, error) { return SelectFileWithFzf(".", preview) }
	}
	return r
}

// RunCLI starts the terminal editor, optionally opening path first.
func RunCLI(cfg config.Config, path string) error {
	preview := NewPreview(cfg.PreviewBackend)
	ed := editor.New(editor.Options{
		Width:    cfg.CanvasWidth,
		Height:   cfg.CanvasHeight,
		Settings: SettingsFromConfig(cfg),
	})
	if path != "" {
		if err := ed.Load(path); err != nil {
			return err
		}
	}
	r := NewREPL(ed, cfg, os.Stdin, os.Stdout, os.Stderr, preview)
	fmt.Fprintln(r.out, "Terminal Paint")
	fmt.Fprintln(r.out, helpText)
	ed.SetDisplay(preview)
	return r.Loop()
}

// SettingsFromConfig builds the initial tool settings.
func SettingsFromConfig(cfg config.Config) tool.Settings {
	s := tool.DefaultSettings()
	if c, err := stdimg.ParseColor(cfg.BrushColor); err == nil {
		s.Color = c
	} else if cfg.BrushColor != "" {
		log.Warn().Err(err).Msg("ignoring brush colour")
	}
	if cfg.BrushSize > 0 {
		s.BrushSize = cfg.BrushSize
	}
	if cfg.FontSize > 0 {
		s.FontSize = cfg.FontSize
	}
	s.FontPath = cfg.FontPath
	return s
}

// Loop runs until q or end of input.
func (r *REPL) Loop() error {
	for {
		fmt.Fprint(r.out, "> ")
		line, err := r.in.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			if xerr := r.Exec(line); errors.Is(xerr, errQuit) {
				fmt.Fprintln(r.out, "Exiting...")
				return nil
			} else if xerr != nil {
				fmt.Fprintf(r.errOut, "error: %v\n", xerr)
			}
			fmt.Fprintln(r.out, StatusLine(r.ed))
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}

// Exec runs one command line.
func (r *REPL) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]
	ctl := r.ed.Controller()
	switch cmd {
	case "t":
		name := strings.Join(args, "")
		if name == "" {
			var err error
			if name, err = r.prompt("Tool (brush eraser fill zoom text rotate shape lens): "); err != nil {
				return err
			}
		}
		m, err := tool.ParseMode(name)
		if err != nil {
			return err
		}
		ctl.SetMode(m)
	case "p":
		pt, err := point(args)
		if err != nil {
			return err
		}
		b := tool.Primary
		if len(args) > 2 {
			if b, err = button(args[2]); err != nil {
				return err
			}
		}
		return ctl.OnPress(pt, b)
	case "m":
		pt, err := point(args)
		if err != nil {
			return err
		}
		return ctl.OnMove(pt)
	case "r":
		pt, err := point(args)
		if err != nil {
			return err
		}
		return ctl.OnRelease(pt)
	case "d":
		return r.drag(args)
	case "/":
		return r.filter(args)
	case "c":
		v := strings.Join(args, "")
		if v == "" {
			var err error
			if v, err = r.prompt("Colour: "); err != nil {
				return err
			}
		}
		c, err := stdimg.ParseColor(v)
		if err != nil {
			return err
		}
		ctl.SetColor(c)
	case "b":
		n, err := r.intArg(args, "Brush size: ")
		if err != nil {
			return err
		}
		ctl.SetBrushSize(n)
	case "x":
		return r.textSettings(args)
	case "k":
		v := strings.Join(args, "")
		if v == "" {
			var err error
			if v, err = r.prompt("Shape (rectangle circle triangle): "); err != nil {
				return err
			}
		}
		k, err := tool.ParseShapeKind(v)
		if err != nil {
			return err
		}
		ctl.SetShape(k)
	case "w", "e":
		if err := ctl.Rotate(cmd == "e"); err != nil {
			if errors.Is(err, tool.ErrWrongMode) {
				return fmt.Errorf("%w (select it with: t rotate)", err)
			}
			return err
		}
	case "z":
		if !r.ed.Undo() {
			fmt.Fprintln(r.out, "nothing to undo")
		}
	case "y":
		if !r.ed.Redo() {
			fmt.Fprintln(r.out, "nothing to redo")
		}
	case "n":
		r.ed.NewCanvas()
	case "o":
		path, err := r.pathArg(args, "Enter path to image to open (or '/' for fzf): ", true)
		if err != nil || path == "" {
			return err
		}
		if err := r.ed.Load(path); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Opened %s\n", path)
	case "s":
		def := r.ed.Path()
		label := "Enter output filename: "
		if def != "" {
			label = fmt.Sprintf("Enter output filename [%s]: ", def)
		}
		path, err := r.pathArg(args, label, false)
		if err != nil {
			return err
		}
		if path == "" {
			path = def
		}
		if path == "" {
			return fmt.Errorf("no filename provided")
		}
		if err := r.ed.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Saved to %s\n", path)
	case "i":
		fmt.Fprintln(r.out, r.ed.Info())
	case "u":
		return CheckForUpdates(r.cfg.UpdateRepo, r.out, func(q string) bool {
			a, err := r.prompt(q)
			return err == nil && yes(a)
		})
	case "h":
		fmt.Fprintln(r.out, helpText)
	case "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (h for help)", cmd)
	}
	return nil
}

func (r *REPL) drag(args []string) error {
	if len(args) < 2 || len(args)%2 != 0 {
		return fmt.Errorf("usage: d x1 y1 [x2 y2 ...]")
	}
	pts := make([]image.Point, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		pt, err := point(args[i : i+2])
		if err != nil {
			return err
		}
		pts = append(pts, pt)
	}
	ctl := r.ed.Controller()
	if err := ctl.OnPress(pts[0], tool.Primary); err != nil {
		return err
	}
	for _, pt := range pts[1:] {
		if err := ctl.OnMove(pt); err != nil {
			return err
		}
	}
	return ctl.OnRelease(pts[len(pts)-1])
}

func (r *REPL) filter(args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	} else {
		var err error
		if name, err = r.chooseCommand(); err != nil || name == "" {
			return err
		}
	}
	spec, ok := stdimg.FindCommand(name)
	if !ok {
		return fmt.Errorf("unknown command: %s (available: %s)", name, strings.Join(stdimg.CommandNames(), " "))
	}
	if len(args) == 0 && len(spec.Args) > 0 {
		fmt.Fprintln(r.out, "\n"+Tooltip(spec)+"\n")
		args = make([]string, len(spec.Args))
		for i, a := range spec.Args {
			label := fmt.Sprintf("%s (%s): ", a.Name, a.Type)
			var err error
			if a.Type == "path" {
				args[i], err = r.pathArg(nil, fmt.Sprintf("%s (%s) [enter image path or '/' to use fzf]: ", a.Name, a.Type), true)
			} else {
				args[i], err = r.prompt(label)
			}
			if err != nil {
				return err
			}
		}
	}
	norm, err := NormalizeArgs(spec, args)
	if err != nil {
		return fmt.Errorf("input validation error: %w", err)
	}
	if err := r.ed.Apply(spec.Name, norm); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Applied %s (%s)\n", spec.Name, stdimg.Backend(spec.Name))
	return nil
}

// chooseCommand tries fzf, then falls back to a numbered list.
func (r *REPL) chooseCommand() (string, error) {
	if r.pickCommand != nil {
		if name, err := r.pickCommand(); err == nil && name != "" {
			return name, nil
		}
	}
	fmt.Fprintln(r.out, "Command selection (fallback):")
	for i, c := range stdimg.Commands {
		fmt.Fprintf(r.out, "  %d) %s - %s\n", i+1, c.Name, c.Description)
	}
	sel, err := r.prompt("Enter number or command name (leave empty to cancel): ")
	if err != nil || sel == "" {
		return "", err
	}
	if idx, perr := strconv.Atoi(sel); perr == nil {
		if idx < 1 || idx > len(stdimg.Commands) {
			return "", fmt.Errorf("invalid selection %d", idx)
		}
		return stdimg.Commands[idx-1].Name, nil
	}
	var matches []string
	for _, c := range stdimg.Commands {
		if strings.EqualFold(c.Name, sel) {
			return c.Name, nil
		}
		if strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(sel)) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("unknown command: %s", sel)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("ambiguous selection, candidates: %s", strings.Join(matches, ", "))
}

func (r *REPL) textSettings(args []string) error {
	ctl := r.ed.Controller()
	if len(args) > 0 {
		ctl.SetText(strings.Join(args, " "))
		return nil
	}
	s := ctl.Settings()
	text, err := r.prompt(fmt.Sprintf("Text [%s]: ", s.Text))
	if err != nil {
		return err
	}
	if text != "" {
		ctl.SetText(text)
	}
	size, err := r.prompt(fmt.Sprintf("Font size [%.0f]: ", s.FontSize))
	if err != nil {
		return err
	}
	if size != "" {
		v, err := strconv.ParseFloat(size, 64)
		if err != nil {
			return fmt.Errorf("invalid font size %q", size)
		}
		ctl.SetFontSize(v)
	}
	font, err := r.pathArg(nil, "Font file (empty keeps current, '-' for built-in, '/' for fzf): ", false)
	if err != nil {
		return err
	}
	switch font {
	case "":
	case "-":
		ctl.SetFontPath("")
	default:
		ctl.SetFontPath(font)
	}
	return nil
}

// prompt prints label and reads one trimmed line.
func (r *REPL) prompt(label string) (string, error) {
	fmt.Fprint(r.out, label)
	line, err := r.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// pathArg takes a path from args or asks for one. A lone "/" opens the fzf
// file picker when it is available.
func (r *REPL) pathArg(args []string, label string, pick bool) (string, error) {
	var in string
	if len(args) > 0 {
		in = strings.Join(args, " ")
	} else {
		var err error
		if in, err = r.prompt(label); err != nil {
			return "", err
		}
	}
	if in == "/" {
		if pick && r.pickFile != nil {
			if sel, err := r.pickFile(); err == nil && sel != "" {
				fmt.Fprintf(r.out, " [fzf] %s\n", sel)
				return sel, nil
			}
		}
		return r.prompt(label)
	}
	return in, nil
}

func (r *REPL) intArg(args []string, label string) (int, error) {
	v := strings.Join(args, "")
	if v == "" {
		var err error
		if v, err = r.prompt(label); err != nil {
			return 0, err
		}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", v)
	}
	return n, nil
}

func point(args []string) (image.Point, error) {
	if len(args) < 2 {
		return image.Point{}, fmt.Errorf("expected x y")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return image.Point{}, fmt.Errorf("invalid y %q", args[1])
	}
	return image.Pt(x, y), nil
}

func button(s string) (tool.Button, error) {
	switch strings.ToLower(s) {
	case "l", "left", "1":
		return tool.Primary, nil
	case "r", "right", "2":
		return tool.Secondary, nil
	case "m", "middle", "3":
		return tool.Tertiary, nil
	}
	return tool.Primary, fmt.Errorf("unknown button %q", s)
}
