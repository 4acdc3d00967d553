package frameproc

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fundup7/bharatqa-backend/internal/domain/entity"
)

func solidImage(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// splitImage paints the top rows with one color and the rest with another,
// split at the given row.
func splitImage(top, bottom color.RGBA, splitRow int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		c := bottom
		if y < splitRow {
			c = top
		}
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writeFrame(t *testing.T, dir, name string, img image.Image) entity.FrameSample {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	return entity.FrameSample{Path: path, Size: info.Size(), Label: entity.LabelNormal}
}
