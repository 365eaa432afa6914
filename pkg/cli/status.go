package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Fepozopo/tpaint/pkg/editor"
	"github.com/Fepozopo/tpaint/pkg/stdimg"
	"github.com/Fepozopo/tpaint/pkg/tool"
)

var (
	modeStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1)
	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C1C6B2")).
			Background(lipgloss.Color("#353533")).
			Padding(0, 1)
	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#6124DF")).
			Padding(0, 1)
)

// StatusLine summarises the editor state on one line.
func StatusLine(ed *editor.Editor) string {
	ctl := ed.Controller()
	s := ctl.Settings()
	swatch := lipgloss.NewStyle().
		Background(lipgloss.Color(stdimg.FormatColor(s.Color))).
		Render("  ")

	fields := []string{
		modeStyle.Render(ctl.Mode().String()),
		swatch,
		fieldStyle.Render(stdimg.FormatColor(s.Color)),
		fieldStyle.Render(fmt.Sprintf("size %d", s.BrushSize)),
	}
	switch ctl.Mode() {
	case tool.Shape:
		label := s.Shape.String()
		if p, ok := ctl.Anchor(); ok {
			label += fmt.Sprintf(" from %d,%d", p.X, p.Y)
		}
		fields = append(fields, fieldStyle.Render(label))
	case tool.Text:
		fields = append(fields, fieldStyle.Render(fmt.Sprintf("%q %.0fpt", s.Text, s.FontSize)))
	case tool.Brush, tool.Eraser:
		if ctl.Stroking() {
			fields = append(fields, fieldStyle.Render("stroking"))
		}
	}
	h := ed.History()
	fields = append(fields, historyStyle.Render(fmt.Sprintf("%d/%d", h.Cursor()+1, h.Len())))
	return lipgloss.JoinHorizontal(lipgloss.Top, fields...)
}
