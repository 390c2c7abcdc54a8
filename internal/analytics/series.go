package analytics

import (
	"time"

	"dispatchboard/domain/metrics"
	"dispatchboard/models"
)

// BuildOrderSeries derives the four dashboard chart series from one bucket
// set, so every series has equal length and index-aligned buckets.
//
// Created counts follow the creation timestamp. Completed counts, revenue
// and commission follow the completion timestamp: a completed order's money
// belongs to the period the work finished in, even when the order was
// created in an earlier bucket. The asymmetry is deliberate.
func BuildOrderSeries(orders []models.OrderRecord, buckets []metrics.Bucket) metrics.OrderSeries {
	n := len(buckets)
	series := metrics.OrderSeries{
		Labels:     make([]string, n),
		Created:    make([]int, n),
		Completed:  make([]int, n),
		Revenue:    make([]float64, n),
		Commission: make([]float64, n),
	}
	for i, b := range buckets {
		series.Labels[i] = b.Label
	}

	for _, o := range orders {
		if i, ok := locateTime(buckets, o.CreatedAt); ok {
			series.Created[i]++
		}
		if o.Status != models.OrderStatusCompleted || o.CompletedAt == nil {
			continue
		}
		if i, ok := locateTime(buckets, *o.CompletedAt); ok {
			series.Completed[i]++
			series.Revenue[i] += o.Price
			series.Commission[i] += o.Commission
		}
	}
	return series
}

func locateTime(buckets []metrics.Bucket, t time.Time) (int, bool) {
	if t.IsZero() {
		return 0, false
	}
	return locate(buckets, t)
}
