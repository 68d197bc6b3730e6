package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#fff000", Highlight},
		{"000000", Black},
		{"#fff", White},
		{"#ff000080", color.RGBA{R: 255, A: 128}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseHexRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "#1234567"} {
		_, err := ParseHex(in)
		assert.Error(t, err, in)
	}
}

func TestToHex(t *testing.T) {
	assert.Equal(t, "#fff000", ToHex(Highlight))
	// RGBA() is alpha-premultiplied.
	assert.Equal(t, "#80000080", ToHex(color.RGBA{R: 128, A: 128}))
}
