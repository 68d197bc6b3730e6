package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"image-annotator/internal/selection"
	"image-annotator/pkg/colorutil"
)

// Config holds the application configuration
type Config struct {
	Selection SelectionConfig `json:"selection"`
	Editor    EditorConfig    `json:"editor"`
	Viewer    ViewerConfig    `json:"viewer"`
	Export    ExportConfig    `json:"export"`
	Logging   LoggingConfig   `json:"logging"`
}

// SelectionConfig holds the stroke style of selections and annotations
type SelectionConfig struct {
	OutlineColor       string  `json:"outline_color"`
	InnerColor         string  `json:"inner_color"`
	HighlightColor     string  `json:"highlight_color"`
	LineWidth          float64 `json:"line_width"`
	HighlightLineWidth float64 `json:"highlight_line_width"`
}

// EditorConfig holds configuration for the annotation editor popup
type EditorConfig struct {
	Offset float64 `json:"offset"` // pixels between selection and editor
}

// ViewerConfig holds configuration for the annotation layer
type ViewerConfig struct {
	ActiveOpacity   float64 `json:"active_opacity"`
	InactiveOpacity float64 `json:"inactive_opacity"`
	HintOpacity     float64 `json:"hint_opacity"`
	HintText        string  `json:"hint_text"`
}

// ExportConfig holds configuration for annotated image export
type ExportConfig struct {
	DefaultFormat string `json:"default_format"`
	JPEGQuality   int    `json:"jpeg_quality"`
	WebPQuality   int    `json:"webp_quality"`
}

// LoggingConfig holds configuration for the application logger
type LoggingConfig struct {
	Level string `json:"level"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Selection: SelectionConfig{
			OutlineColor:       "#000000",
			InnerColor:         "#ffffff",
			HighlightColor:     "#fff000",
			LineWidth:          1,
			HighlightLineWidth: 1.2,
		},
		Editor: EditorConfig{
			Offset: 4,
		},
		Viewer: ViewerConfig{
			ActiveOpacity:   1.0,
			InactiveOpacity: 0.4,
			HintOpacity:     0.8,
			HintText:        "Click and drag to annotate",
		},
		Export: ExportConfig{
			DefaultFormat: "png",
			JPEGQuality:   90,
			WebPQuality:   90,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadOrDefault loads the configuration at filename, falling back to the
// defaults when the file does not exist.
func LoadOrDefault(filename string) (*Config, error) {
	config, err := LoadFromFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	for name, hex := range map[string]string{
		"selection.outline_color":   c.Selection.OutlineColor,
		"selection.inner_color":     c.Selection.InnerColor,
		"selection.highlight_color": c.Selection.HighlightColor,
	} {
		if _, err := colorutil.ParseHex(hex); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if c.Selection.LineWidth <= 0 || c.Selection.HighlightLineWidth <= 0 {
		return fmt.Errorf("selection line widths must be positive")
	}

	if c.Editor.Offset < 0 {
		return fmt.Errorf("editor.offset cannot be negative")
	}

	for name, v := range map[string]float64{
		"viewer.active_opacity":   c.Viewer.ActiveOpacity,
		"viewer.inactive_opacity": c.Viewer.InactiveOpacity,
		"viewer.hint_opacity":     c.Viewer.HintOpacity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}

	switch strings.ToLower(c.Export.DefaultFormat) {
	case "png", "jpg", "jpeg", "tiff", "bmp", "gif", "webp":
	default:
		return fmt.Errorf("export.default_format %q is not supported", c.Export.DefaultFormat)
	}

	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be between 1 and 100")
	}

	if c.Export.WebPQuality < 1 || c.Export.WebPQuality > 100 {
		return fmt.Errorf("export.webp_quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}

	return nil
}

// Style converts the selection settings to a drawing style. Colors that do
// not parse keep their default.
func (c *Config) Style() selection.Style {
	style := selection.DefaultStyle()
	if col, err := colorutil.ParseHex(c.Selection.OutlineColor); err == nil {
		style.OutlineColor = col
	}
	if col, err := colorutil.ParseHex(c.Selection.InnerColor); err == nil {
		style.InnerColor = col
	}
	if col, err := colorutil.ParseHex(c.Selection.HighlightColor); err == nil {
		style.HighlightColor = col
	}
	style.LineWidth = c.Selection.LineWidth
	style.HighlightLineWidth = c.Selection.HighlightLineWidth
	return style
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-annotator", "config.json")
}
