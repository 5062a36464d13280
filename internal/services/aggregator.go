package services

import "soclisten/internal/models"

// Aggregate computes summary statistics over a run's classification results.
// Pure function: rates are exact fractions in [0,1], zero when the input is
// empty, and the distribution counts only reasons that actually appeared.
// It deliberately does not reconcile the exemption flag with reason presence;
// the two can diverge and callers assert on that divergence.
func Aggregate(results []models.AnalysisResult) models.AggregatedResult {
	agg := models.AggregatedResult{
		TotalAnalyzed:       len(results),
		ReasonsDistribution: map[string]int{},
		RecentResults:       results,
	}
	if agg.RecentResults == nil {
		agg.RecentResults = []models.AnalysisResult{}
	}
	if len(results) == 0 {
		return agg
	}

	hesitant := 0
	exempt := 0
	for _, r := range results {
		if r.Hesitancy {
			hesitant++
		}
		if r.PhilosophicalExemption {
			exempt++
		}
		if r.ExemptionReason != nil && *r.ExemptionReason != "" {
			agg.ReasonsDistribution[*r.ExemptionReason]++
		}
	}

	total := float64(len(results))
	agg.HesitancyRate = float64(hesitant) / total
	agg.ExemptionRate = float64(exempt) / total
	return agg
}
