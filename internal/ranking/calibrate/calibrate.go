// internal/ranking/calibrate/calibrate.go
package calibrate

import (
	"math"
	"sort"
)

// Calibration strategies.
const (
	StrategyNone       = "none"
	StrategyMinMax     = "minmax"
	StrategyZScore     = "zscore"
	StrategyPercentile = "percentile"
)

// Percentile bounds used by the percentile-floor strategy.
const (
	floorPercentile   = 0.05
	ceilingPercentile = 0.95
)

// Apply runs the named strategy over a batch of raw scores. Unknown or
// "none" strategies pass the batch through unchanged.
func Apply(strategy string, scores []float64) []float64 {
	switch strategy {
	case StrategyMinMax:
		return MinMax(scores)
	case StrategyZScore:
		return ZScore(scores)
	case StrategyPercentile:
		return Percentile(scores)
	default:
		return append([]float64(nil), scores...)
	}
}

// MinMax rescales to [0,1]. A zero-spread batch maps to all zeros, which
// keeps constant batches from inflating every candidate to 1.
func MinMax(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	lo, hi := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	if hi == lo {
		return out
	}
	for i, s := range scores {
		out[i] = (s - lo) / (hi - lo)
	}
	return out
}

// ZScore standardizes the batch. Zero variance maps to all zeros.
func ZScore(scores []float64) []float64 {
	out := make([]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))
	var variance float64
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))
	if variance == 0 {
		return out
	}
	std := math.Sqrt(variance)
	for i, s := range scores {
		out[i] = (s - mean) / std
	}
	return out
}

// PercentileBounds returns the 5th/95th percentile bounds and their spread.
// An empty batch defaults to (0, 1) with spread 1 so callers never divide
// by zero.
func PercentileBounds(scores []float64) (low, high, spread float64) {
	if len(scores) == 0 {
		return 0, 1, 1
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	n := len(sorted)
	low = sorted[boundIndex(floorPercentile, n)]
	high = sorted[boundIndex(ceilingPercentile, n)]
	return low, high, high - low
}

func boundIndex(p float64, n int) int {
	i := int(p * float64(n))
	if i > n-1 {
		i = n - 1
	}
	return i
}

// Percentile clips and rescales against the batch's 5th/95th percentile
// bounds: values at or below the floor clamp to 0, at or above the ceiling
// to 1. A zero spread maps everything to 0.
func Percentile(scores []float64) []float64 {
	out := make([]float64, len(scores))
	low, _, spread := PercentileBounds(scores)
	if spread <= 0 {
		return out
	}
	for i, s := range scores {
		v := (s - low) / spread
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = v
	}
	return out
}
