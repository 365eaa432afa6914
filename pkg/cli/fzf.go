package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Fepozopo/tpaint/pkg/stdimg"
)

// fzf pickers. Both need fzf on PATH; callers fall back to typed input when
// they fail.

// imageGlobs are offered by the file picker.
var imageGlobs = []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.tif", "*.tiff", "*.webp"}

// SelectCommandWithFzf lists the filter commands in fzf and returns the name
// of the chosen one.
func SelectCommandWithFzf(commands []stdimg.CommandSpec) (string, error) {
	var b strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Description)
	}
	cmd := exec.Command("fzf", "--prompt=Filter> ", "--height=40%", "--border")
	cmd.Stdin = strings.NewReader(b.String())
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("error running fzf: %w", err)
	}
	name, _, _ := strings.Cut(strings.TrimSpace(out.String()), ":")
	if name = strings.TrimSpace(name); name == "" {
		return "", fmt.Errorf("no command selected")
	}
	return name, nil
}

// previewCommand picks the fzf --preview renderer for the current terminal.
func (p *Preview) previewCommand() string {
	const chafa = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	switch {
	case p.kitty():
		return `printf "\x1b_Ga=d\x1b\\"; kitty +kitten icat --silent {} 2>/dev/null || ` + chafa
	case p.inlineCapable():
		return "imgcat {} 2>/dev/null || " + chafa
	case p.sixelCapable():
		return "img2sixel {} 2>/dev/null || " + chafa
	}
	return chafa
}

// SelectFileWithFzf runs find piped into fzf under startDir and returns the
// chosen image path.
func SelectFileWithFzf(startDir string, p *Preview) (string, error) {
	names := make([]string, len(imageGlobs))
	for i, g := range imageGlobs {
		names[i] = "-iname '" + g + "'"
	}
	script := fmt.Sprintf(
		`find %s -type f \( %s \) | fzf --height 100%% --border --prompt='Files> ' --ansi --preview=%q --preview-window='right:60%%'`,
		strconv.Quote(startDir), strings.Join(names, " -o "), p.previewCommand())
	cmd := exec.Command("bash", "-c", script)
	cmd.Stderr = os.Stderr
	var out bytes.Buffer
	cmd.Stdout = &out
	err := cmd.Run()
	if p.kitty() {
		// drop images the kitty previewer left behind
		fmt.Fprint(p.out(), "\x1b_Ga=d\x1b\\")
	}
	if err != nil {
		return "", fmt.Errorf("error running fzf for files: %w", err)
	}
	sel := strings.TrimSpace(out.String())
	if sel == "" {
		return "", fmt.Errorf("no file selected")
	}
	return sel, nil
}
