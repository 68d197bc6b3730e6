package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-annotator/pkg/colorutil"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	style := c.Style()
	assert.Equal(t, colorutil.Black, style.OutlineColor)
	assert.Equal(t, colorutil.White, style.InnerColor)
	assert.Equal(t, colorutil.Highlight, style.HighlightColor)
	assert.Equal(t, 1.2, style.HighlightLineWidth)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	c := Default()
	c.Selection.HighlightColor = "#ff0000"
	c.Editor.Offset = 8
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging":{"level":"debug"}}`), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, 4.0, c.Editor.Offset)
	assert.Equal(t, "#fff000", c.Selection.HighlightColor)
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	c, err := LoadOrDefault(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"viewer":{"hint_opacity":3}}`), 0644))
	_, err = LoadOrDefault(bad)
	assert.ErrorContains(t, err, "viewer.hint_opacity")

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{`), 0644))
	_, err = LoadOrDefault(broken)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad color", func(c *Config) { c.Selection.InnerColor = "white" }},
		{"zero width", func(c *Config) { c.Selection.LineWidth = 0 }},
		{"negative offset", func(c *Config) { c.Editor.Offset = -1 }},
		{"opacity", func(c *Config) { c.Viewer.InactiveOpacity = -0.1 }},
		{"format", func(c *Config) { c.Export.DefaultFormat = "psd" }},
		{"quality", func(c *Config) { c.Export.JPEGQuality = 0 }},
		{"level", func(c *Config) { c.Logging.Level = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}
