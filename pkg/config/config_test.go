package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CANVAS_WIDTH", "CANVAS_HEIGHT", "BRUSH_SIZE", "BRUSH_COLOR",
		"FONT_PATH", "FONT_SIZE", "LOG_LEVEL", "PREVIEW_BACKEND", "UPDATE_REPO", "SAVE_TEST_OUTPUT"} {
		t.Setenv(EnvPrefix+k, "")
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "custom.yaml")
	data := "canvas_width: 320\ncanvas_height: 240\nbrush_color: red\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvPrefix+"CANVAS_HEIGHT", "200")
	t.Setenv(EnvPrefix+"FONT_SIZE", "32.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CanvasWidth != 320 || cfg.CanvasHeight != 200 {
		t.Fatalf("unexpected size %dx%d", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.BrushColor != "red" || cfg.LogLevel != "debug" || cfg.FontSize != 32.5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	if err := os.WriteFile(".env", []byte("TPAINT_BRUSH_SIZE=9\nTPAINT_UPDATE_REPO=me/fork\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvPrefix+"BRUSH_SIZE", "3")
	// godotenv sets keys that are unset; make sure the repo key is restored
	t.Cleanup(func() { os.Unsetenv(EnvPrefix + "UPDATE_REPO") })
	os.Unsetenv(EnvPrefix + "UPDATE_REPO")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BrushSize != 3 {
		t.Fatalf("environment should win over .env, got %d", cfg.BrushSize)
	}
	if cfg.UpdateRepo != "me/fork" {
		t.Fatalf("expected .env value, got %q", cfg.UpdateRepo)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	if _, err := Load("missing.yaml"); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}
	t.Setenv(EnvPrefix+"CANVAS_WIDTH", "wide")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for non-numeric width")
	}
	t.Setenv(EnvPrefix+"CANVAS_WIDTH", "0")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

// chdir stands in for testing.T.Chdir (Go 1.24+): it switches to dir and
// restores the previous working directory when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("chdir back: %v", err)
		}
	})
}
