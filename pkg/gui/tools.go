package gui

import (
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Fepozopo/tpaint/pkg/tool"
)

var palette = []color.NRGBA{
	{0, 0, 0, 255},
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 0, 255},
	{255, 255, 255, 255},
}

type colorSwatch struct {
	widget.BaseWidget
	Color    color.NRGBA
	OnTapped func(color.NRGBA)
}

func newColorSwatch(c color.NRGBA, tapped func(color.NRGBA)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// toolbar wires the tool controls to the controller. refresh runs after any
// setting changes so the status bar follows.
type toolbar struct {
	ctl     *tool.Controller
	win     fyne.Window
	refresh func()
	onError func(error)

	mode    *widget.Select
	current *canvas.Rectangle
}

func newToolbar(ctl *tool.Controller, win fyne.Window, refresh func(), onError func(error)) *toolbar {
	return &toolbar{ctl: ctl, win: win, refresh: refresh, onError: onError}
}

func (t *toolbar) setColor(c color.NRGBA) {
	t.ctl.SetColor(c)
	t.current.FillColor = c
	t.current.Refresh()
	t.refresh()
}

// setMode changes the tool and keeps the selector in step when the change
// came from a shortcut or menu.
func (t *toolbar) setMode(m tool.Mode) {
	if t.mode.Selected != m.String() {
		t.mode.SetSelected(m.String())
		return
	}
	t.ctl.SetMode(m)
	t.refresh()
}

// sync follows mode changes the controller made on its own, such as the
// return from text mode after a stamp.
func (t *toolbar) sync() {
	if t.mode != nil && t.mode.Selected != t.ctl.Mode().String() {
		t.mode.SetSelected(t.ctl.Mode().String())
	}
}

func (t *toolbar) build() fyne.CanvasObject {
	names := make([]string, len(tool.Modes))
	for i, m := range tool.Modes {
		names[i] = m.String()
	}
	t.mode = widget.NewSelect(names, func(s string) {
		if m, err := tool.ParseMode(s); err == nil {
			t.ctl.SetMode(m)
			t.refresh()
		}
	})
	t.mode.SetSelected(t.ctl.Mode().String())

	settings := t.ctl.Settings()

	t.current = canvas.NewRectangle(settings.Color)
	t.current.SetMinSize(fyne.NewSize(24, 24))
	colorBox := container.NewHBox()
	for _, c := range palette {
		colorBox.Add(newColorSwatch(c, t.setColor))
	}
	pick := widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), func() {
		d := dialog.NewColorPicker("Brush colour", "", func(c color.Color) {
			t.setColor(color.NRGBAModel.Convert(c).(color.NRGBA))
		}, t.win)
		d.Advanced = true
		d.Show()
	})

	brush := widget.NewSlider(tool.MinBrush, tool.MaxBrush)
	brush.SetValue(float64(settings.BrushSize))
	brush.OnChanged = func(v float64) {
		t.ctl.SetBrushSize(int(v))
		t.refresh()
	}
	brushBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), brush)

	shape := widget.NewSelect([]string{
		tool.Rectangle.String(), tool.Circle.String(), tool.Triangle.String(),
	}, func(s string) {
		if k, err := tool.ParseShapeKind(s); err == nil {
			t.ctl.SetShape(k)
			t.refresh()
		}
	})
	shape.SetSelected(settings.Shape.String())

	text := widget.NewEntry()
	text.SetText(settings.Text)
	text.OnChanged = func(s string) {
		t.ctl.SetText(s)
	}
	textBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 35)), text)

	fontSize := widget.NewSlider(tool.MinFontSize, tool.MaxFontSize)
	fontSize.SetValue(settings.FontSize)
	fontSize.OnChanged = func(v float64) {
		t.ctl.SetFontSize(v)
		t.refresh()
	}
	fontBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(100, 35)), fontSize)

	rotate := widget.NewToolbar(
		widget.NewToolbarAction(theme.MediaReplayIcon(), func() { t.rotate(false) }),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() { t.rotate(true) }),
	)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		t.mode,
		rotate,
		widget.NewSeparator(),
		t.current,
		colorBox,
		pick,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		brushBox,
		widget.NewSeparator(),
		shape,
		widget.NewLabel("Text:"),
		textBox,
		fontBox,
		layout.NewSpacer(),
	)
}

func (t *toolbar) rotate(clockwise bool) {
	if t.ctl.Mode() != tool.Rotate {
		t.setMode(tool.Rotate)
	}
	if err := t.ctl.Rotate(clockwise); err != nil {
		t.onError(err)
	}
	t.refresh()
}

// statusText summarises the editor for the bottom bar.
func statusText(mode tool.Mode, s tool.Settings, cursor, entries int, anchor bool) string {
	parts := []string{"Tool: " + mode.String()}
	switch mode {
	case tool.Brush:
		parts = append(parts, "Size: "+strconv.Itoa(s.BrushSize))
	case tool.Shape:
		p := "Shape: " + s.Shape.String()
		if anchor {
			p += " (anchor set)"
		}
		parts = append(parts, p)
	case tool.Text:
		parts = append(parts, "Text: "+s.Text)
	}
	parts = append(parts, "History: "+strconv.Itoa(cursor+1)+"/"+strconv.Itoa(entries))
	return strings.Join(parts, "  |  ")
}
