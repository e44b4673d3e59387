package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"treeprobe/internal/render"
	"treeprobe/internal/syntax"
)

// DefaultPath is where the CLI looks for configuration when --config is unset.
const DefaultPath = ".treeprobe.yaml"

// Config holds all treeprobe configuration.
type Config struct {
	// Tree output
	Render RenderConfig `yaml:"render"`

	// Engine parses
	Parse ParseConfig `yaml:"parse"`

	// Extension to grammar overrides, e.g. ".tmpl: go"
	Languages map[string]string `yaml:"languages,omitempty"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig configures tree output.
type RenderConfig struct {
	Format         string `yaml:"format"` // annotated, sexp, kinds, xml
	ShowAll        bool   `yaml:"show_all"`
	Color          string `yaml:"color"` // auto, always, never
	QuoteAnonymous bool   `yaml:"quote_anonymous"`
}

// ParseConfig configures engine parses.
type ParseConfig struct {
	Timeout  string `yaml:"timeout"`  // per parse; empty or "0" disables it
	Workers  int    `yaml:"workers"`  // files probed in parallel; 0 = one per CPU
	Language string `yaml:"language"` // forces a grammar for every file
}

// ColorModes lists the accepted render.color values.
var ColorModes = []string{"auto", "always", "never"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Render: RenderConfig{
			Format:         string(render.FormatAnnotated),
			ShowAll:        true,
			Color:          "auto",
			QuoteAnonymous: true,
		},
		Parse: ParseConfig{
			Timeout: "0",
			Workers: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if level := os.Getenv("TREEPROBE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
		c.Logging.DebugMode = true
	}
	if timeout := os.Getenv("TREEPROBE_TIMEOUT"); timeout != "" {
		c.Parse.Timeout = timeout
	}
	if lang := os.Getenv("TREEPROBE_LANGUAGE"); lang != "" {
		c.Parse.Language = lang
	}
}

// ParseTimeout returns the per-parse timeout. Bare numbers are microseconds,
// the unit the classic --timeout flag used.
func (c *Config) ParseTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Parse.Timeout)
	if raw == "" {
		return 0, nil
	}
	if !strings.ContainsAny(raw, "nsuµmh") {
		raw += "us"
	}
	d, err := cast.ToDurationE(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid parse timeout %q: %w", c.Parse.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid parse timeout %q: negative", c.Parse.Timeout)
	}
	return d, nil
}

// RenderFormat returns the configured output format.
func (c *Config) RenderFormat() (render.Format, error) {
	return render.ParseFormat(c.Render.Format)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := c.RenderFormat(); err != nil {
		return err
	}
	if !slices.Contains(ColorModes, c.Render.Color) {
		return fmt.Errorf("invalid render color %q (valid: %v)", c.Render.Color, ColorModes)
	}
	if _, err := c.ParseTimeout(); err != nil {
		return err
	}
	if c.Parse.Workers < 0 {
		return fmt.Errorf("invalid parse workers %d: must be >= 0", c.Parse.Workers)
	}
	if c.Parse.Language != "" {
		if _, err := syntax.Language(c.Parse.Language); err != nil {
			return err
		}
	}
	for ext, lang := range c.Languages {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid language override %q: extensions start with a dot", ext)
		}
		if _, err := syntax.Language(lang); err != nil {
			return fmt.Errorf("language override %s: %w", ext, err)
		}
	}
	return c.Logging.Validate()
}
