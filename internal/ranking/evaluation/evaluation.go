// internal/ranking/evaluation/evaluation.go
// Package evaluation provides offline ranking-quality metrics used to
// validate fusion changes against labeled runs. Nothing here runs on the
// request path.
package evaluation

import "sort"

// liftEpsilon separates real score movement from floating-point noise.
const liftEpsilon = 1e-9

// PrecisionAtK is the fraction of the top k ranked ids that are labeled
// relevant. k larger than the list penalizes the missing tail.
func PrecisionAtK(relevant map[string]bool, rankedIDs []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	cutoff := rankedIDs
	if len(cutoff) > k {
		cutoff = cutoff[:k]
	}
	hits := 0
	for _, id := range cutoff {
		if relevant[id] {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// ReciprocalRank is 1/position of the first relevant id, 0 if none appears.
func ReciprocalRank(relevant map[string]bool, rankedIDs []string) float64 {
	for i, id := range rankedIDs {
		if relevant[id] {
			return 1.0 / float64(i+1)
		}
	}
	return 0
}

// SpearmanRankCorr computes Spearman's rho between two score lists using
// tie-averaged ranks: rho = 1 - 6*Σd²/(n(n²-1)). Mismatched or empty
// inputs return 0.
func SpearmanRankCorr(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	ra := rankPositions(a)
	rb := rankPositions(b)
	n := float64(len(a))
	denom := n * (n*n - 1)
	if denom == 0 {
		return 0
	}
	var dsq float64
	for i := range a {
		d := ra[i] - rb[i]
		dsq += d * d
	}
	return 1.0 - (6.0*dsq)/denom
}

// rankPositions assigns 1-based descending ranks, averaging over ties.
func rankPositions(values []float64) []float64 {
	type indexed struct {
		idx int
		val float64
	}
	order := make([]indexed, len(values))
	for i, v := range values {
		order[i] = indexed{i, v}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].val > order[j].val
	})

	ranks := make([]float64, len(values))
	i := 0
	for i < len(order) {
		j := i
		for j < len(order) && order[j].val == order[i].val {
			j++
		}
		// average of the tied 1-based positions
		avg := float64(i+1+j) / 2.0
		for k := i; k < j; k++ {
			ranks[order[k].idx] = avg
		}
		i = j
	}
	return ranks
}

// ScorePair is one candidate's fused score before and after the impact
// component was applied.
type ScorePair struct {
	CandidateID string  `json:"candidate_id"`
	PreImpact   float64 `json:"pre_impact"`
	Final       float64 `json:"final"`
}

// LiftStats summarizes how the impact component moved a batch of scores.
type LiftStats struct {
	Count       int     `json:"count"`
	AvgDelta    float64 `json:"avg_delta"`
	MedianDelta float64 `json:"median_delta"`
	Improved    int     `json:"improved"`
	Worsened    int     `json:"worsened"`
	Unchanged   int     `json:"unchanged"`
}

// ComputeLiftStats aggregates pre/post score deltas over a batch.
func ComputeLiftStats(pairs []ScorePair) LiftStats {
	var stats LiftStats
	deltas := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		delta := p.Final - p.PreImpact
		deltas = append(deltas, delta)
		switch {
		case delta > liftEpsilon:
			stats.Improved++
		case delta < -liftEpsilon:
			stats.Worsened++
		default:
			stats.Unchanged++
		}
	}
	if len(deltas) == 0 {
		return stats
	}

	sort.Float64s(deltas)
	var sum float64
	for _, d := range deltas {
		sum += d
	}
	stats.Count = len(deltas)
	stats.AvgDelta = sum / float64(len(deltas))
	mid := len(deltas) / 2
	if len(deltas)%2 == 1 {
		stats.MedianDelta = deltas[mid]
	} else {
		stats.MedianDelta = 0.5 * (deltas[mid-1] + deltas[mid])
	}
	return stats
}
