package render

import (
	"image"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"statemap/internal/models"
	"statemap/internal/palette"
)

// LegendOptions configures legend rendering.
type LegendOptions struct {
	Title       string
	Face        font.Face
	PatchWidth  int
	PatchHeight int
	Padding     int
	Gap         int
	Background  models.RGB
	Text        models.RGB
}

// DefaultLegendOptions returns the layout used next to generated maps.
func DefaultLegendOptions() LegendOptions {
	return LegendOptions{
		PatchWidth:  40,
		PatchHeight: 20,
		Padding:     10,
		Gap:         6,
		Background:  models.RGB{R: 0xFF, G: 0xFF, B: 0xFF},
		Text:        models.RGB{R: 0, G: 0, B: 0},
	}
}

// RenderLegend draws one colour patch and its range label per bin, stacked
// from the lowest bin down, without a border.
func RenderLegend(bins *palette.Bins, opts LegendOptions) *image.NRGBA {
	if opts.Face == nil {
		opts.Face = LoadFace("", 14, nil)
	}
	face := opts.Face
	textHeight := face.Metrics().Height.Ceil()
	ascent := face.Metrics().Ascent.Ceil()

	rowHeight := max(opts.PatchHeight, textHeight)
	labelWidth := 0
	for _, label := range bins.Labels {
		labelWidth = max(labelWidth, font.MeasureString(face, label).Ceil())
	}

	titleHeight := 0
	width := 2*opts.Padding + opts.PatchWidth + opts.Gap + labelWidth
	if opts.Title != "" {
		titleHeight = textHeight + opts.Gap
		width = max(width, 2*opts.Padding+font.MeasureString(face, opts.Title).Ceil())
	}
	n := bins.Len()
	height := 2*opts.Padding + titleHeight + n*rowHeight + max(0, n-1)*opts.Gap

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background.NRGBA()), image.Point{}, draw.Src)

	if opts.Title != "" {
		drawText(img, opts.Title, opts.Padding, opts.Padding+ascent, opts.Text, face)
	}

	for i := 0; i < n; i++ {
		top := opts.Padding + titleHeight + i*(rowHeight+opts.Gap)
		patchTop := top + (rowHeight-opts.PatchHeight)/2
		patch := image.Rect(opts.Padding, patchTop, opts.Padding+opts.PatchWidth, patchTop+opts.PatchHeight)
		draw.Draw(img, patch, image.NewUniform(bins.Colors[i].NRGBA()), image.Point{}, draw.Src)

		baseline := top + (rowHeight-textHeight)/2 + ascent
		drawText(img, bins.Labels[i], opts.Padding+opts.PatchWidth+opts.Gap, baseline, opts.Text, face)
	}
	return img
}

// LegendPath derives the legend file name from the map output name:
// "map.png" becomes "map_legend.png".
func LegendPath(output string) string {
	ext := filepath.Ext(output)
	stem := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".png"
	}
	return stem + "_legend" + ext
}
