package render

import (
	"image"
	"math"
	"sort"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"statemap/internal/models"
)

// DrawLabels writes each state id centred on its centroid, in id order.
func DrawLabels(img draw.Image, centroids map[int]Point, face font.Face, c models.RGB) {
	ids := make([]int, 0, len(centroids))
	for id := range centroids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		drawCenteredAt(img, strconv.Itoa(id), centroids[id], face, c)
	}
}

// drawCenteredAt places the text box so its centre lies on p.
func drawCenteredAt(img draw.Image, text string, p Point, face font.Face, c models.RGB) {
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	x := int(math.Round(p.X - float64(textWidth)/2))
	y := int(math.Round(p.Y-float64(textHeight)/2)) + ascent
	drawText(img, text, x, y, c, face)
}

// drawText draws with the baseline at y.
func drawText(img draw.Image, text string, x, y int, c models.RGB, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c.NRGBA()),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
