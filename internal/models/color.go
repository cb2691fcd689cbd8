package models

import (
	"fmt"
	"image/color"
	"math"
)

// RGB 8-bit province or display colour.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

// WaterColor is painted on every pixel that does not belong to a known state.
var WaterColor = RGB{R: 68, G: 107, B: 163}

// LabelColor is the fill of state id labels.
var LabelColor = RGB{R: 0, G: 0, B: 0}

// NRGBA returns the opaque image colour.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// RGBFromUnit rounds channels in [0,1] to 8 bits (round(255*x)).
func RGBFromUnit(r, g, b float64) RGB {
	return RGB{R: unitToByte(r), G: unitToByte(g), B: unitToByte(b)}
}

func unitToByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xFF
	}
	return uint8(math.Round(v * 255))
}

// Target is what a province colour is repainted to.
type Target struct {
	Color RGB
	State int
}

// ReplacementMap maps a province colour to its display colour and owning state.
type ReplacementMap map[RGB]Target
