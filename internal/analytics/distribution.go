package analytics

import (
	"math"

	"dispatchboard/domain/core"
	"dispatchboard/domain/metrics"
	"dispatchboard/models"
)

// smallSampleFloor marks summaries built from fewer values than this as a
// low-trust display signal. They are still rendered.
const smallSampleFloor = 5

// shapeSampleFloor is the minimum sample size for distribution shape
// analysis; skewness and normality are meaningless below it.
const shapeSampleFloor = 8

// BoxPlotBuckets summarizes each bucket's members into box-plot statistics.
// Members are filtered to positive finite values before summarizing. Empty
// buckets stay in the result so the x-axis remains contiguous.
func BoxPlotBuckets(buckets []metrics.Bucket) []metrics.BoxPlotBucket {
	out := make([]metrics.BoxPlotBucket, len(buckets))
	for i, b := range buckets {
		values := make([]float64, 0, len(b.Members))
		for _, o := range b.Members {
			if o.Value > 0 && !math.IsInf(o.Value, 0) && !math.IsNaN(o.Value) {
				values = append(values, o.Value)
			}
		}
		summary := Calc(values)
		out[i] = metrics.BoxPlotBucket{
			Start:       b.Start,
			End:         b.End,
			Label:       b.Label,
			Summary:     summary,
			SmallSample: summary.N > 0 && summary.N < smallSampleFloor,
		}
		if summary.N >= shapeSampleFloor {
			out[i].Shape = Shape(values, summary.Std)
		}
	}
	return out
}

// PriceObservations extracts one observation per order from its price.
// Non-finite prices are excluded from the sample rather than propagated.
func PriceObservations(orders []models.OrderRecord) []metrics.Observation {
	obs := make([]metrics.Observation, 0, len(orders))
	for _, o := range orders {
		if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
			continue
		}
		ob := metrics.Observation{
			Value:       o.Price,
			ServiceType: o.ServiceType,
			Area:        o.Area,
			Urgency:     string(o.Urgency),
			Status:      string(o.Status),
		}
		if !o.CreatedAt.IsZero() {
			ob.At = core.NewTimestamp(o.CreatedAt)
		}
		obs = append(obs, ob)
	}
	return obs
}

// PriceDistribution builds the all-time price view: an ungrouped summary
// over every order price plus box-plot buckets over a range derived from
// the observed timestamps, at the caller-selected grouping.
func PriceDistribution(orders []models.OrderRecord, g metrics.Granularity) (metrics.StatSummary, []metrics.BoxPlotBucket, error) {
	obs := PriceObservations(orders)

	values := make([]float64, 0, len(obs))
	for _, o := range obs {
		if o.Value > 0 {
			values = append(values, o.Value)
		}
	}
	overall := Calc(values)

	from, to, ok := DeriveRange(obs)
	if !ok {
		return overall, nil, nil
	}
	buckets, err := BuildRangeBuckets(g, from, to)
	if err != nil {
		return overall, nil, err
	}
	Assign(buckets, obs)
	return overall, BoxPlotBuckets(buckets), nil
}
