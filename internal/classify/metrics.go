package classify

import (
	"math"

	"statemap/internal/definition"
	"statemap/internal/models"
	"statemap/internal/states"
)

const perMillion = 1_000_000

// Values computes the numeric metric of mode for every state. pixels maps a
// state id to its pixel count and is only read by ModeDensity. Modes without
// a numeric metric return nil.
func Values(mode Mode, list []*states.State, pixels map[int]int) map[int]float64 {
	switch mode {
	case ModeDensity:
		return perState(list, func(s *states.State) float64 {
			return ratio(float64(s.Manpower), float64(pixels[s.ID]))
		})
	case ModeFactories:
		return perState(list, func(s *states.State) float64 { return float64(s.Factories()) })
	case ModeCivilian:
		return perState(list, func(s *states.State) float64 { return float64(s.IndustrialComplex) })
	case ModeMilitary:
		return perState(list, func(s *states.State) float64 { return float64(s.ArmsFactory) })
	case ModeInfrastructure:
		return perState(list, func(s *states.State) float64 { return float64(s.Infrastructure) })
	case ModeDockyards:
		return perState(list, func(s *states.State) float64 { return float64(s.Dockyard) })
	case ModeIndustryPerCapita:
		return perState(list, func(s *states.State) float64 {
			return ratio(float64(s.Factories())*perMillion, float64(s.Manpower))
		})
	case ModeOwnerIndustryPerCapita:
		return ownerAggregate(list,
			func(s *states.State) float64 { return float64(s.Factories()) * perMillion },
			func(s *states.State) float64 { return float64(s.Manpower) },
		)
	case ModeOwnerManpowerPerFactory:
		return ownerAggregate(list,
			func(s *states.State) float64 { return float64(s.Manpower) },
			func(s *states.State) float64 { return float64(s.Factories()) },
		)
	}
	return nil
}

// PixelsByState sums the census count of every province colour a state owns.
// A province claimed by several states counts for the lowest id only.
func PixelsByState(defs *definition.Table, list []*states.State, census map[models.RGB]int) map[int]int {
	out := make(map[int]int, len(list))
	claimed := make(map[models.RGB]bool)
	for _, s := range list {
		total := 0
		for _, province := range s.Provinces {
			c, ok := defs.Color(province)
			if !ok || claimed[c] {
				continue
			}
			claimed[c] = true
			total += census[c]
		}
		out[s.ID] = total
	}
	return out
}

func perState(list []*states.State, f func(*states.State) float64) map[int]float64 {
	out := make(map[int]float64, len(list))
	for _, s := range list {
		out[s.ID] = f(s)
	}
	return out
}

// ownerAggregate sums num and den over every state of an owner, divides,
// rounds to one decimal and gives the result to all of the owner's states.
func ownerAggregate(list []*states.State, num, den func(*states.State) float64) map[int]float64 {
	type sums struct{ num, den float64 }
	byOwner := make(map[string]*sums)
	for _, s := range list {
		acc, ok := byOwner[s.Owner]
		if !ok {
			acc = &sums{}
			byOwner[s.Owner] = acc
		}
		acc.num += num(s)
		acc.den += den(s)
	}

	out := make(map[int]float64, len(list))
	for _, s := range list {
		acc := byOwner[s.Owner]
		out[s.ID] = round1(ratio(acc.num, acc.den))
	}
	return out
}

// ratio is num/den, or 0 when den is 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
