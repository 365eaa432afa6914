// Package config resolves tpaint settings.
//
// Values are layered: built-in defaults, then an optional YAML file, then a
// .env file in the working directory, then TPAINT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when no explicit config path is given.
const DefaultFile = "tpaint.yaml"

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "TPAINT_"

// Config holds the resolved settings.
type Config struct {
	CanvasWidth    int     `yaml:"canvas_width"`
	CanvasHeight   int     `yaml:"canvas_height"`
	BrushSize      int     `yaml:"brush_size"`
	BrushColor     string  `yaml:"brush_color"`
	FontPath       string  `yaml:"font_path"`
	FontSize       float64 `yaml:"font_size"`
	LogLevel       string  `yaml:"log_level"`
	PreviewBackend string  `yaml:"preview_backend"`
	UpdateRepo     string  `yaml:"update_repo"`
	SaveTestOutput bool    `yaml:"save_test_output"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		CanvasWidth:    900,
		CanvasHeight:   700,
		BrushSize:      5,
		BrushColor:     "black",
		FontSize:       20,
		LogLevel:       "warn",
		PreviewBackend: "auto",
		UpdateRepo:     "Fepozopo/tpaint",
	}
}

// Load resolves the configuration. An empty path means DefaultFile, which
// may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// .env never overrides variables already set in the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Debug().Err(err).Msg("could not read .env")
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
			}
			*dst = n
		}
		return nil
	}
	str("BRUSH_COLOR", &c.BrushColor)
	str("FONT_PATH", &c.FontPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("PREVIEW_BACKEND", &c.PreviewBackend)
	str("UPDATE_REPO", &c.UpdateRepo)
	for key, dst := range map[string]*int{
		"CANVAS_WIDTH":  &c.CanvasWidth,
		"CANVAS_HEIGHT": &c.CanvasHeight,
		"BRUSH_SIZE":    &c.BrushSize,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	if v, ok := lookup(EnvPrefix + "FONT_SIZE"); ok && v != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%sFONT_SIZE: %w", EnvPrefix, err)
		}
		c.FontSize = f
	}
	if v, ok := lookup(EnvPrefix + "SAVE_TEST_OUTPUT"); ok && v != "" {
		c.SaveTestOutput = v == "1" || strings.EqualFold(v, "true")
	}
	return nil
}

// Validate rejects settings the editor cannot start with.
func (c Config) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("invalid canvas size %dx%d", c.CanvasWidth, c.CanvasHeight)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// SetupLogging points the global zerolog logger at stderr with a console
// writer and applies the configured level.
func (c Config) SetupLogging() {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
