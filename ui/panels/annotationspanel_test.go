package panels

import (
	"image/color"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-annotator/internal/annotation"
	"image-annotator/internal/app"
	"image-annotator/pkg/geometry"
)

func TestLabel(t *testing.T) {
	a := annotation.New("", annotation.NewRectShape(geometry.NewRectangle(0, 0, 40, 30)))
	assert.Equal(t, "(no text)  40×30", Label(a))
}

func TestSyncAndDelete(t *testing.T) {
	test.NewApp()
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, imaging.Save(imaging.New(50, 50, color.White), path))

	state := app.NewState(nil)
	require.NoError(t, state.LoadImage(path))
	state.Annotator.AddAnnotation(annotation.New("a", annotation.NewRectShape(geometry.NewRectangle(1, 1, 10, 10))))

	ap := NewAnnotationsPanel(state)
	ap.Sync()
	require.Equal(t, 1, ap.Len())
	assert.True(t, ap.deleteBtn.Disabled())

	ap.Select(0)
	assert.False(t, ap.deleteBtn.Disabled())

	test.Tap(ap.deleteBtn)
	assert.Zero(t, ap.Len())
	assert.Empty(t, state.Annotator.Annotations())
	assert.True(t, state.IsModified())
}
