package analytics

import (
	"math"
	"sort"

	"dispatchboard/domain/metrics"

	"github.com/montanaflynn/stats"
)

// Calc computes descriptive statistics over a numeric sample. The input is
// never mutated; non-finite values are dropped from the sample rather than
// propagated. An empty (or fully non-finite) sample yields the zero summary
// with N = 0.
func Calc(values []float64) metrics.StatSummary {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		sorted = append(sorted, v)
	}
	if len(sorted) == 0 {
		return metrics.StatSummary{}
	}
	sort.Float64s(sorted)

	mean, _ := stats.Mean(sorted)
	std, _ := stats.StandardDeviationPopulation(sorted)

	summary := metrics.StatSummary{
		N:    len(sorted),
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: mean,
		Std:  std,
		P5:   percentile(sorted, 5),
		P25:  percentile(sorted, 25),
		P50:  percentile(sorted, 50),
		P75:  percentile(sorted, 75),
		P90:  percentile(sorted, 90),
		P95:  percentile(sorted, 95),
	}
	summary.IQR = summary.P75 - summary.P25
	if mean != 0 {
		summary.CV = std / mean
	}
	return summary
}

// percentile interpolates the empirical CDF over an ascending sample:
// index = p/100 * (n-1), exact element on integral indices, linear
// interpolation between neighbors otherwise. The montanaflynn estimator
// rounds to rank boundaries instead, so historical chart output would
// drift if it were used here.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	idx := p / 100 * float64(n-1)
	lo := math.Floor(idx)
	hi := math.Ceil(idx)
	if lo == hi {
		return sorted[int(idx)]
	}
	frac := idx - lo
	return sorted[int(lo)]*(1-frac) + sorted[int(hi)]*frac
}
