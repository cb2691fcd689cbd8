package palette

import (
	"fmt"
	"math"

	"statemap/internal/models"
)

// LabelFormat selects how bin ranges are printed.
type LabelFormat int

const (
	// IntegerLabels prints "lo - hi" with hi = next edge - 1.
	IntegerLabels LabelFormat = iota
	// RatioLabels prints two-decimal "lo - hi" with hi = next edge.
	RatioLabels
)

// Bins is an ordered set of half-open value ranges, each with a colour.
// Bin i covers [Edges[i], Edges[i+1]); the last bin is open-ended.
type Bins struct {
	Edges  []float64
	Colors []models.RGB
	Labels []string
}

// NewBins colours the given ascending edges from ramp and labels them.
func NewBins(edges []float64, ramp Ramp, format LabelFormat) *Bins {
	if len(edges) == 0 {
		edges = []float64{0}
	}
	return &Bins{
		Edges:  edges,
		Colors: ramp.Colors(len(edges)),
		Labels: labels(edges, format),
	}
}

// Len is the number of bins.
func (b *Bins) Len() int {
	return len(b.Edges)
}

// Index returns the first bin whose [lo, hi) contains v. Values at or above
// the last edge land in the last bin, values below the first edge in bin 0.
func (b *Bins) Index(v float64) int {
	for i := 0; i < len(b.Edges)-1; i++ {
		if v < b.Edges[i+1] {
			return i
		}
	}
	return len(b.Edges) - 1
}

// Color returns the colour of the bin containing v.
func (b *Bins) Color(v float64) models.RGB {
	return b.Colors[b.Index(v)]
}

// EqualWidth builds integer bins 0, w, 2w, ... covering [0, maxValue] with at
// most steps bins, w = ceil((max+1)/steps).
func EqualWidth(maxValue float64, steps int) []float64 {
	if steps < 1 {
		steps = 1
	}
	top := int(math.Ceil(maxValue))
	if top < 0 {
		top = 0
	}
	width := (top + steps) / steps // ceil((top+1)/steps)
	if width < 1 {
		width = 1
	}
	edges := make([]float64, 0, steps)
	for lo := 0; lo <= top; lo += width {
		edges = append(edges, float64(lo))
	}
	return edges
}

// Quantile places edges at the empirical quantiles i/steps of sorted values.
// Duplicate edges collapse so every bin is non-empty in range. The first edge
// is always 0. Integer formats floor the edges, ratio formats round them to
// two decimals so labels match the lookup.
func Quantile(sorted []float64, steps int, format LabelFormat) []float64 {
	edges := []float64{0}
	if steps < 1 || len(sorted) == 0 {
		return edges
	}
	n := len(sorted)
	for i := 1; i < steps; i++ {
		e := snap(sorted[i*n/steps], format)
		if e > edges[len(edges)-1] {
			edges = append(edges, e)
		}
	}
	return edges
}

func snap(v float64, format LabelFormat) float64 {
	if format == RatioLabels {
		return math.Round(v*100) / 100
	}
	return math.Floor(v)
}

func labels(edges []float64, format LabelFormat) []string {
	out := make([]string, len(edges))
	last := len(edges) - 1
	for i, lo := range edges {
		switch {
		case format == RatioLabels && i == last:
			out[i] = fmt.Sprintf("%.2f+", lo)
		case format == RatioLabels:
			out[i] = fmt.Sprintf("%.2f - %.2f", lo, edges[i+1])
		case i == last:
			out[i] = fmt.Sprintf("%d+", int64(lo))
		default:
			out[i] = fmt.Sprintf("%d - %d", int64(lo), int64(math.Ceil(edges[i+1]))-1)
		}
	}
	return out
}
