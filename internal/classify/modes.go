// Package classify turns loaded states into a province colour replacement map
// for one display mode.
package classify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"statemap/internal/palette"
)

// Mode selects what the map shows.
type Mode int

const (
	ModeStates Mode = iota
	ModeDensity
	ModePolitical
	ModeFactories
	ModeCivilian
	ModeMilitary
	ModeInfrastructure
	ModeIndustryPerCapita
	ModeOwnerIndustryPerCapita
	ModeOwnerManpowerPerFactory
	ModeDockyards
)

// ErrInvalidMode is returned for a mode outside the registry.
var ErrInvalidMode = errors.New("invalid display mode")

// Binning is how a mode turns state values into colours.
type Binning int

const (
	// Discrete gives every state its own palette colour.
	Discrete Binning = iota
	// Categorical colours states by owner tag.
	Categorical
	// EqualWidth bins integer counts from 0 to the maximum.
	EqualWidth
	// Quantile bins by the empirical distribution.
	Quantile
)

// ModeInfo describes one display mode.
type ModeInfo struct {
	Mode        Mode
	Name        string
	Description string
	Binning     Binning
	Labels      palette.LabelFormat
}

// Continuous reports whether the mode has numeric bins and a legend.
func (i ModeInfo) Continuous() bool {
	return i.Binning == EqualWidth || i.Binning == Quantile
}

var registry = []ModeInfo{
	{ModeStates, "states", "one distinct colour per state", Discrete, palette.IntegerLabels},
	{ModeDensity, "density", "manpower per pixel", Quantile, palette.RatioLabels},
	{ModePolitical, "political", "owner country colour", Categorical, palette.IntegerLabels},
	{ModeFactories, "factories", "civilian + military + naval factories", EqualWidth, palette.IntegerLabels},
	{ModeCivilian, "civilian", "civilian factories", EqualWidth, palette.IntegerLabels},
	{ModeMilitary, "military", "military factories", EqualWidth, palette.IntegerLabels},
	{ModeInfrastructure, "infrastructure", "infrastructure level", EqualWidth, palette.IntegerLabels},
	{ModeIndustryPerCapita, "industry-per-capita", "factories per million manpower", Quantile, palette.RatioLabels},
	{ModeOwnerIndustryPerCapita, "owner-industry-per-capita", "factories per million manpower, per owner", Quantile, palette.RatioLabels},
	{ModeOwnerManpowerPerFactory, "owner-manpower-per-factory", "manpower per factory, per owner", Quantile, palette.IntegerLabels},
	{ModeDockyards, "dockyards", "naval dockyards", EqualWidth, palette.IntegerLabels},
}

// MaxMode is the highest valid mode number.
const MaxMode = ModeDockyards

// Modes returns every display mode in numeric order.
func Modes() []ModeInfo {
	out := make([]ModeInfo, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the description of m.
func Lookup(m Mode) (ModeInfo, bool) {
	if m < 0 || int(m) >= len(registry) {
		return ModeInfo{}, false
	}
	return registry[m], true
}

// ParseMode accepts a mode number or name.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := Lookup(Mode(n)); !ok {
			return 0, fmt.Errorf("%w: %d (want 0-%d)", ErrInvalidMode, n, MaxMode)
		}
		return Mode(n), nil
	}
	for _, info := range registry {
		if strings.EqualFold(info.Name, s) {
			return info.Mode, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) String() string {
	if info, ok := Lookup(m); ok {
		return info.Name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}
