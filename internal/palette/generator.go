// Package palette builds display colours: distinct random colours for
// categorical maps and binned sequential ramps for numeric metrics.
package palette

import (
	"math"
	"math/rand/v2"

	"statemap/internal/models"
)

const (
	// DefaultPastelFactor blends random channels toward white.
	DefaultPastelFactor = 0.5
	// DefaultTrials is how many candidates are sampled per new colour.
	DefaultTrials = 100
)

// Color holds channels in [0,1].
type Color [3]float64

// RGB rounds the colour to 8 bits per channel.
func (c Color) RGB() models.RGB {
	return models.RGBFromUnit(c[0], c[1], c[2])
}

// FromRGB converts an 8-bit colour to unit channels.
func FromRGB(c models.RGB) Color {
	return Color{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
}

// Distance is the summed absolute channel difference.
func Distance(a, b Color) float64 {
	return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1]) + math.Abs(a[2]-b[2])
}

// MinDistance is the distance from c to its nearest neighbour in existing.
func MinDistance(c Color, existing []Color) float64 {
	best := math.Inf(1)
	for _, e := range existing {
		if d := Distance(c, e); d < best {
			best = d
		}
	}
	return best
}

// Generator samples pastel colours. It is not safe for concurrent use.
type Generator struct {
	PastelFactor float64
	Trials       int
	rnd          *rand.Rand
}

// NewGenerator seeds a generator. A zero seed picks a random one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		PastelFactor: DefaultPastelFactor,
		Trials:       DefaultTrials,
		rnd:          rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// RandomColor draws uniform channels and blends them as (x+p)/(1+p).
func (g *Generator) RandomColor() Color {
	var c Color
	for i := range c {
		c[i] = (g.rnd.Float64() + g.PastelFactor) / (1 + g.PastelFactor)
	}
	return c
}

// Candidate is one sampled colour and its distance to the existing set.
type Candidate struct {
	Color    Color
	Distance float64
}

// Sample draws one batch of Trials candidates scored against existing and
// returns the batch with the index of the winner. The winner has the strictly
// largest minimum distance; on ties the earliest candidate is kept. With no
// existing colours the first candidate wins.
func (g *Generator) Sample(existing []Color) ([]Candidate, int) {
	trials := g.Trials
	if trials <= 0 {
		trials = 1
	}
	if len(existing) == 0 {
		c := g.RandomColor()
		return []Candidate{{Color: c, Distance: math.Inf(1)}}, 0
	}
	batch := make([]Candidate, trials)
	best := 0
	for i := range batch {
		c := g.RandomColor()
		batch[i] = Candidate{Color: c, Distance: MinDistance(c, existing)}
		if batch[i].Distance > batch[best].Distance {
			best = i
		}
	}
	return batch, best
}

// NewColor returns the best candidate of one sampled batch.
func (g *Generator) NewColor(existing []Color) Color {
	batch, best := g.Sample(existing)
	return batch[best].Color
}

// Palette is the growing list of state colours plus the reserved water colour.
type Palette struct {
	Water  Color
	Colors []Color
}

// New returns an empty palette with the given water colour.
func New(water models.RGB) *Palette {
	return &Palette{Water: FromRGB(water)}
}

// Ensure grows the palette to at least n colours and returns how many were
// generated. Existing colours are never changed. New colours keep their
// distance from water and every colour already accepted.
func (p *Palette) Ensure(n int, g *Generator) int {
	missing := n - len(p.Colors)
	if missing <= 0 {
		return 0
	}
	existing := make([]Color, 0, n+1)
	existing = append(existing, p.Water)
	existing = append(existing, p.Colors...)
	for i := 0; i < missing; i++ {
		c := g.NewColor(existing)
		existing = append(existing, c)
		p.Colors = append(p.Colors, c)
	}
	return missing
}

// RGB returns colour i rounded to 8 bits.
func (p *Palette) RGB(i int) models.RGB {
	return p.Colors[i].RGB()
}

func (p *Palette) Len() int {
	return len(p.Colors)
}
