// Package gui is the desktop front end: a fyne window around the editor with a
// tool bar, a filter menu and the usual file and edit shortcuts.
package gui

import (
	"bytes"
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog/log"

	"github.com/Fepozopo/tpaint/pkg/cli"
	"github.com/Fepozopo/tpaint/pkg/config"
	"github.com/Fepozopo/tpaint/pkg/editor"
	"github.com/Fepozopo/tpaint/pkg/stdimg"
)

type window struct {
	cfg    config.Config
	ed     *editor.Editor
	win    fyne.Window
	board  *CanvasWidget
	tools  *toolbar
	status *widget.Label
}

// RunGUI opens the editor window and blocks until it is closed.
func RunGUI(cfg config.Config, path string) error {
	ed := editor.New(editor.Options{
		Width:    cfg.CanvasWidth,
		Height:   cfg.CanvasHeight,
		Settings: cli.SettingsFromConfig(cfg),
	})
	if path != "" {
		if err := ed.Load(path); err != nil {
			return err
		}
	}

	a := app.New()
	w := &window{cfg: cfg, ed: ed, win: a.NewWindow("tpaint")}
	w.win.Resize(fyne.NewSize(float32(cfg.CanvasWidth)+40, float32(cfg.CanvasHeight)+120))

	w.board = NewCanvasWidget(ed)
	w.board.OnError = w.showError
	w.board.OnChange = w.refresh
	w.status = widget.NewLabel("")
	w.tools = newToolbar(ed.Controller(), w.win, w.refresh, w.showError)

	content := container.NewBorder(w.tools.build(), w.status, nil, nil, w.board)
	w.win.SetContent(content)
	w.win.SetMainMenu(w.menu())
	w.shortcuts()
	w.refresh()

	log.Info().Int("width", cfg.CanvasWidth).Int("height", cfg.CanvasHeight).Msg("gui started")
	w.win.ShowAndRun()
	return nil
}

func (w *window) refresh() {
	w.tools.sync()
	ctl := w.ed.Controller()
	_, anchored := ctl.Anchor()
	h := w.ed.History()
	w.status.SetText(statusText(ctl.Mode(), ctl.Settings(), h.Cursor(), h.Len(), anchored))
	title := "tpaint"
	if p := w.ed.Path(); p != "" {
		title += " - " + p
	}
	w.win.SetTitle(title)
}

func (w *window) showError(err error) {
	if err != nil {
		dialog.ShowError(err, w.win)
	}
}

func (w *window) menu() *fyne.MainMenu {
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("New", w.newCanvas),
		fyne.NewMenuItem("Open...", w.open),
		fyne.NewMenuItem("Save As...", w.saveAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Image Info", func() {
			dialog.ShowInformation("Image Info", w.ed.Info(), w.win)
		}),
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", w.undo),
		fyne.NewMenuItem("Redo", w.redo),
	)
	var filters []*fyne.MenuItem
	for _, c := range stdimg.Commands {
		filters = append(filters, fyne.NewMenuItem(c.Name, func() { w.filter(c) }))
	}
	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("Check for Updates", w.checkUpdates),
	)
	return fyne.NewMainMenu(file, edit, fyne.NewMenu("Filters", filters...), help)
}

func (w *window) shortcuts() {
	bind := func(key fyne.KeyName, fn func()) {
		w.win.Canvas().AddShortcut(&desktop.CustomShortcut{
			KeyName:  key,
			Modifier: fyne.KeyModifierShortcutDefault,
		}, func(fyne.Shortcut) { fn() })
	}
	bind(fyne.KeyZ, w.undo)
	bind(fyne.KeyY, w.redo)
	bind(fyne.KeyN, w.newCanvas)
	bind(fyne.KeyO, w.open)
	bind(fyne.KeyS, w.saveAs)
}

func (w *window) undo() {
	w.ed.Undo()
	w.refresh()
}

func (w *window) redo() {
	w.ed.Redo()
	w.refresh()
}

func (w *window) newCanvas() {
	w.ed.NewCanvas()
	w.refresh()
}

func (w *window) open() {
	dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil || r == nil {
			w.showError(err)
			return
		}
		path := r.URI().Path()
		r.Close()
		w.showError(w.ed.Load(path))
		w.refresh()
	}, w.win)
}

func (w *window) saveAs() {
	dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			w.showError(err)
			return
		}
		path := wc.URI().Path()
		wc.Close()
		if err := w.ed.Save(path); err != nil {
			w.showError(err)
			return
		}
		log.Info().Str("path", path).Msg("saved")
		w.refresh()
	}, w.win)
}

// filter applies c directly or asks for its arguments first.
func (w *window) filter(c stdimg.CommandSpec) {
	if len(c.Args) == 0 {
		w.apply(c, nil)
		return
	}
	entries := make([]*widget.Entry, len(c.Args))
	items := make([]*widget.FormItem, len(c.Args))
	for i, a := range c.Args {
		e := widget.NewEntry()
		e.SetPlaceHolder(a.Default)
		entries[i] = e
		items[i] = widget.NewFormItem(a.Name, e)
		items[i].HintText = a.Description
	}
	dialog.ShowForm(c.Usage, "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		raw := make([]string, len(entries))
		for i, e := range entries {
			raw[i] = e.Text
		}
		args, err := cli.NormalizeArgs(c, raw)
		if err != nil {
			w.showError(err)
			return
		}
		w.apply(c, args)
	}, w.win)
}

func (w *window) apply(c stdimg.CommandSpec, args []string) {
	if err := w.ed.Apply(c.Name, args); err != nil {
		w.showError(fmt.Errorf("%s: %w", c.Name, err))
	} else {
		log.Debug().Str("command", c.Name).Str("backend", stdimg.Backend(c.Name)).Strs("args", args).Msg("applied")
	}
	w.refresh()
}

// checkUpdates talks to GitHub off the UI goroutine and hops back for every
// dialog.
func (w *window) checkUpdates() {
	go func() {
		var out bytes.Buffer
		confirm := func(prompt string) bool {
			answer := make(chan bool, 1)
			fyne.Do(func() {
				dialog.ShowConfirm("Update", strings.TrimSuffix(prompt, " (y/N): "), func(ok bool) { answer <- ok }, w.win)
			})
			return <-answer
		}
		err := cli.CheckForUpdates(w.cfg.UpdateRepo, &out, confirm)
		fyne.Do(func() {
			if err != nil {
				w.showError(err)
				return
			}
			dialog.ShowInformation("Update", out.String(), w.win)
		})
	}()
}
