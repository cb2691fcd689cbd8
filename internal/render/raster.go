// Package render repaints province bitmaps, labels states and draws legends.
package render

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"statemap/internal/models"
)

// DecodeFile opens a provinces bitmap (BMP or PNG) and returns it as NRGBA
// with its origin at (0,0).
func DecodeFile(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ToNRGBA(img), nil
}

// ToNRGBA copies src into a fresh NRGBA image anchored at (0,0).
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// EncodePNG encodes img into memory so nothing reaches disk until every
// output of a run is ready.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pixelAt(pix []uint8, off int) models.RGB {
	return models.RGB{R: pix[off], G: pix[off+1], B: pix[off+2]}
}

// Census counts how many pixels carry each colour.
func Census(img *image.NRGBA) map[models.RGB]int {
	counts := make(map[models.RGB]int)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			counts[pixelAt(img.Pix, off)]++
			off += 4
		}
	}
	return counts
}

// PaintResult describes one repaint pass.
type PaintResult struct {
	// Width of the image; footprint offsets are y*Width+x.
	Width int
	// Counts is the number of pixels painted per state.
	Counts map[int]int
	// Footprints holds every pixel offset per state when collected.
	Footprints map[int][]uint32
	// Water is the number of pixels painted with the water colour.
	Water int
}

// Paint rewrites every pixel of img exactly once. Pixels whose colour is in
// repl take the mapped display colour, all others become water. With collect
// set, the pixel offsets of each state are recorded for labelling.
func Paint(img *image.NRGBA, repl models.ReplacementMap, water models.RGB, collect bool) *PaintResult {
	b := img.Bounds()
	res := &PaintResult{
		Width:  b.Dx(),
		Counts: make(map[int]int),
	}
	if collect {
		res.Footprints = make(map[int][]uint32)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			c := water
			if target, ok := repl[pixelAt(img.Pix, off)]; ok {
				c = target.Color
				res.Counts[target.State]++
				if collect {
					idx := uint32((y-b.Min.Y)*res.Width + (x - b.Min.X))
					res.Footprints[target.State] = append(res.Footprints[target.State], idx)
				}
			} else {
				res.Water++
			}
			img.Pix[off] = c.R
			img.Pix[off+1] = c.G
			img.Pix[off+2] = c.B
			img.Pix[off+3] = 0xFF
			off += 4
		}
	}
	return res
}
