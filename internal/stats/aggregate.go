// Package stats aggregates per-episode rewards and writes run artifacts for
// recorded rollouts.
package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RewardSummary aggregates per-episode reward totals for one run.
type RewardSummary struct {
	Episodes    int     `json:"episodes"`
	Mean        float64 `json:"mean"`
	Std         float64 `json:"std"`
	Max         float64 `json:"max"`
	Min         float64 `json:"min"`
	// SuccessRate is the fraction of episodes that scored at all.
	SuccessRate float64 `json:"success_rate"`
}

func SummarizeRewards(totals []float64) RewardSummary {
	if len(totals) == 0 {
		return RewardSummary{}
	}
	scored := 0
	for _, total := range totals {
		if total > 0 {
			scored++
		}
	}
	summary := RewardSummary{
		Episodes:    len(totals),
		Mean:        stat.Mean(totals, nil),
		Max:         floats.Max(totals),
		Min:         floats.Min(totals),
		SuccessRate: float64(scored) / float64(len(totals)),
	}
	if len(totals) > 1 {
		summary.Std = stat.StdDev(totals, nil)
	}
	return summary
}
