package palette

import (
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"statemap/internal/models"
)

// DefaultRamp is used for numeric modes unless another ramp is requested.
const DefaultRamp = "YlOrRd"

// Ramp is a named sequential colour ramp, interpolated in Lab space between
// evenly spaced anchors.
type Ramp struct {
	Name    string
	anchors []colorful.Color
}

var ramps = map[string]Ramp{}

func init() {
	register("YlOrRd", "#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026")
	register("Blues", "#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b")
	register("Greens", "#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b")
	register("Viridis", "#440154", "#482878", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725")
}

func register(name string, hexes ...string) {
	anchors := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic("palette: bad ramp anchor " + h)
		}
		anchors[i] = c
	}
	ramps[strings.ToLower(name)] = Ramp{Name: name, anchors: anchors}
}

// LookupRamp finds a ramp by name, case-insensitively.
func LookupRamp(name string) (Ramp, bool) {
	r, ok := ramps[strings.ToLower(name)]
	return r, ok
}

// RampNames lists the registered ramps.
func RampNames() []string {
	names := make([]string, 0, len(ramps))
	for _, r := range ramps {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	return names
}

// At returns the ramp colour at t in [0,1].
func (r Ramp) At(t float64) models.RGB {
	if len(r.anchors) == 0 {
		return models.RGB{}
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	if len(r.anchors) == 1 {
		return toRGB(r.anchors[0])
	}
	pos := t * float64(len(r.anchors)-1)
	i := int(pos)
	if i >= len(r.anchors)-1 {
		return toRGB(r.anchors[len(r.anchors)-1])
	}
	return toRGB(r.anchors[i].BlendLab(r.anchors[i+1], pos-float64(i)))
}

// Colors samples n evenly spaced colours from the light end to the dark end.
func (r Ramp) Colors(n int) []models.RGB {
	out := make([]models.RGB, n)
	for i := range out {
		t := 1.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = r.At(t)
	}
	return out
}

func toRGB(c colorful.Color) models.RGB {
	c = c.Clamped()
	return models.RGBFromUnit(c.R, c.G, c.B)
}
