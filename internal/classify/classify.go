package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"statemap/internal/definition"
	"statemap/internal/models"
	"statemap/internal/palette"
	"statemap/internal/political"
	"statemap/internal/states"
)

// ErrPaletteTooSmall is returned when states mode has fewer colours than states.
var ErrPaletteTooSmall = errors.New("palette has fewer colours than states")

// DefaultSteps is the default number of bins for numeric modes.
const DefaultSteps = 10

// Input is everything one classification pass reads.
type Input struct {
	Mode       Mode
	Definition *definition.Table
	// States must be sorted by id.
	States []*states.State
	// Pixels maps a state id to its pixel count (density mode).
	Pixels map[int]int
	// Palette supplies colours in states mode.
	Palette *palette.Palette
	// Political supplies owner colours in political mode.
	Political political.Table
	Water     models.RGB
	Steps     int
	Ramp      palette.Ramp
}

// Result is the outcome of a classification pass.
type Result struct {
	Info        ModeInfo
	Replacement models.ReplacementMap
	StateColors map[int]models.RGB
	// Values and Bins are set for numeric modes only.
	Values map[int]float64
	Bins   *palette.Bins
	// MissingProvinces are listed by a state but absent from the definition.
	MissingProvinces []int
	// UnmappedOwners are owner tags without a political colour.
	UnmappedOwners []string
}

// Build assigns a display colour to every state and maps each owned
// province colour to it. A province claimed by several states stays with the
// lowest state id.
func Build(in Input, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, ok := Lookup(in.Mode)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(in.Mode))
	}
	if in.Ramp.Name == "" {
		in.Ramp, _ = palette.LookupRamp(palette.DefaultRamp)
	}

	res := &Result{
		Info:        info,
		Replacement: make(models.ReplacementMap),
		StateColors: make(map[int]models.RGB, len(in.States)),
	}

	switch info.Binning {
	case Discrete:
		if in.Palette == nil || in.Palette.Len() < len(in.States) {
			have := 0
			if in.Palette != nil {
				have = in.Palette.Len()
			}
			return nil, fmt.Errorf("%w: %d < %d", ErrPaletteTooSmall, have, len(in.States))
		}
		for i, s := range in.States {
			res.StateColors[s.ID] = in.Palette.RGB(i)
		}
	case Categorical:
		res.UnmappedOwners = colorByOwner(in, res.StateColors, logger)
	default:
		res.Values = Values(in.Mode, in.States, in.Pixels)
		res.Bins = buildBins(info, res.Values, in.Steps, in.Ramp)
		for _, s := range in.States {
			res.StateColors[s.ID] = res.Bins.Color(res.Values[s.ID])
		}
	}

	res.MissingProvinces = fillReplacement(in, res, logger)
	return res, nil
}

// colorByOwner looks up every owner tag. States whose owner has no political
// colour are painted water; each such tag is logged once.
func colorByOwner(in Input, out map[int]models.RGB, logger *zap.Logger) []string {
	unmapped := make(map[string]bool)
	for _, s := range in.States {
		c, ok := in.Political.Lookup(s.Owner)
		if !ok {
			if !unmapped[s.Owner] {
				logger.Warn("owner has no political colour, painting water",
					zap.String("owner", s.Owner),
					zap.Int("state", s.ID),
				)
			}
			unmapped[s.Owner] = true
			c = in.Water
		}
		out[s.ID] = c
	}
	tags := make([]string, 0, len(unmapped))
	for tag := range unmapped {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func buildBins(info ModeInfo, values map[int]float64, steps int, ramp palette.Ramp) *palette.Bins {
	if steps <= 0 {
		steps = DefaultSteps
	}
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		sorted = append(sorted, v)
	}
	sort.Float64s(sorted)

	var edges []float64
	if info.Binning == EqualWidth {
		maxValue := 0.0
		if len(sorted) > 0 {
			maxValue = math.Max(0, sorted[len(sorted)-1])
		}
		edges = palette.EqualWidth(maxValue, steps)
	} else {
		edges = palette.Quantile(sorted, steps, info.Labels)
	}
	return palette.NewBins(edges, ramp, info.Labels)
}

func fillReplacement(in Input, res *Result, logger *zap.Logger) []int {
	var missing []int
	for _, s := range in.States {
		color := res.StateColors[s.ID]
		for _, province := range s.Provinces {
			pc, ok := in.Definition.Color(province)
			if !ok {
				logger.Warn("province not in definition",
					zap.Int("province", province),
					zap.Int("state", s.ID),
				)
				missing = append(missing, province)
				continue
			}
			if prev, claimed := res.Replacement[pc]; claimed && prev.State != s.ID {
				logger.Warn("province claimed by several states",
					zap.Int("province", province),
					zap.Int("state", prev.State),
					zap.Int("ignored", s.ID),
				)
				continue
			}
			res.Replacement[pc] = models.Target{Color: color, State: s.ID}
		}
	}
	return missing
}
