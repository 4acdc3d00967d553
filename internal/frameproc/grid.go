package frameproc

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// gridN is the fixed downsample resolution used by both the classifier and
// the similarity metric. 32x32 keeps the comparison resolution-stable and
// cheap regardless of the extracted frame size.
const gridN = 32

type pixelGrid struct {
	r, g, b [gridN][gridN]uint8
}

// loadGrid decodes a frame image and point-samples it onto the fixed grid.
func loadGrid(path string) (*pixelGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return gridFromImage(img), nil
}

func gridFromImage(img image.Image) *pixelGrid {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	g := &pixelGrid{}
	for y := 0; y < gridN; y++ {
		srcY := bounds.Min.Y + y*h/gridN
		for x := 0; x < gridN; x++ {
			srcX := bounds.Min.X + x*w/gridN
			r, gr, b, _ := img.At(srcX, srcY).RGBA()
			g.r[y][x] = uint8(r >> 8)
			g.g[y][x] = uint8(gr >> 8)
			g.b[y][x] = uint8(b >> 8)
		}
	}
	return g
}

// luminance is the Rec. 601 luma of one grid cell.
func (g *pixelGrid) luminance(x, y int) float64 {
	return 0.299*float64(g.r[y][x]) + 0.587*float64(g.g[y][x]) + 0.114*float64(g.b[y][x])
}
