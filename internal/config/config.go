package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/heraldry/internal/engine"
)

type Config struct {
	LogLevel     string  `envconfig:"COA_LOG_LEVEL" default:"info"`
	ForceRGB     bool    `envconfig:"COA_FORCE_RGB" default:"false"`
	HistoryLimit int     `envconfig:"COA_HISTORY_LIMIT" default:"100"`
	PasteOffset  float64 `envconfig:"COA_PASTE_OFFSET" default:"0.02"`
	RotationMode string  `envconfig:"COA_ROTATION_MODE" default:"auto"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Rotation(); err != nil {
		return err
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("COA_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit)
	}
	if c.PasteOffset < 0 || c.PasteOffset > 1 {
		return fmt.Errorf("COA_PASTE_OFFSET must be within [0, 1], got %g", c.PasteOffset)
	}
	return nil
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("COA_LOG_LEVEL: %w", err)
	}
	return l, nil
}

// Rotation parses the default rotation mode.
func (c *Config) Rotation() (engine.RotationMode, error) {
	m, err := engine.ParseRotationMode(c.RotationMode)
	if err != nil {
		return m, fmt.Errorf("COA_ROTATION_MODE: %w", err)
	}
	return m, nil
}
