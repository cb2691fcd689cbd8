package palette

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualWidth(t *testing.T) {
	tests := []struct {
		name  string
		max   float64
		steps int
		want  []float64
	}{
		{"unit width", 9, 10, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"width two", 10, 10, []float64{0, 2, 4, 6, 8, 10}},
		{"zero max", 0, 10, []float64{0}},
		{"wide", 99, 4, []float64{0, 25, 50, 75}},
		{"fractional max", 3.2, 2, []float64{0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EqualWidth(tt.max, tt.steps))
		})
	}
}

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.Equal(t, []float64{0, 3, 6, 8}, Quantile(values, 4, IntegerLabels))

	dup := []float64{5, 5, 5, 5, 9}
	assert.Equal(t, []float64{0, 5, 9}, Quantile(dup, 5, IntegerLabels))

	ratios := []float64{0.111, 0.5, 1.239, 2}
	assert.Equal(t, []float64{0, 0.5, 1.24, 2}, Quantile(ratios, 4, RatioLabels))

	assert.Equal(t, []float64{0}, Quantile(nil, 4, IntegerLabels))

	small := []float64{0.2, 0.4, 0.9}
	assert.Equal(t, []float64{0}, Quantile(small, 10, IntegerLabels))
	assert.Equal(t, []float64{0, 0.2, 0.4, 0.9}, Quantile(small, 10, RatioLabels))
}

func TestBins_IndexIsTotal(t *testing.T) {
	b := NewBins([]float64{0, 10, 20}, mustRamp(t), IntegerLabels)

	tests := []struct {
		v    float64
		want int
	}{
		{-1, 0},
		{0, 0},
		{9.99, 0},
		{10, 1},
		{19, 1},
		{20, 2},
		{1e9, 2},
		{math.Inf(1), 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Index(tt.v), "value %v", tt.v)
	}
	assert.Equal(t, b.Colors[2], b.Color(25))
}

func TestBins_Labels(t *testing.T) {
	ints := NewBins([]float64{0, 10, 20}, mustRamp(t), IntegerLabels)
	assert.Equal(t, []string{"0 - 9", "10 - 19", "20+"}, ints.Labels)

	ratios := NewBins([]float64{0, 0.5, 1.25}, mustRamp(t), RatioLabels)
	assert.Equal(t, []string{"0.00 - 0.50", "0.50 - 1.25", "1.25+"}, ratios.Labels)
}

func TestRamp(t *testing.T) {
	r := mustRamp(t)
	colors := r.Colors(5)
	require.Len(t, colors, 5)
	assert.Equal(t, r.At(0), colors[0])
	assert.Equal(t, r.At(1), colors[4])
	assert.NotEqual(t, colors[0], colors[4])

	// light to dark
	lum := func(i int) int { return int(colors[i].R) + int(colors[i].G) + int(colors[i].B) }
	for i := 1; i < len(colors); i++ {
		assert.Less(t, lum(i), lum(i-1))
	}

	assert.Len(t, r.Colors(1), 1)
	_, ok := LookupRamp("nope")
	assert.False(t, ok)
	assert.Contains(t, RampNames(), "Viridis")
}

func mustRamp(t *testing.T) Ramp {
	t.Helper()
	r, ok := LookupRamp("ylorrd")
	require.True(t, ok)
	return r
}
