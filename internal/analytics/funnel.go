package analytics

import (
	"dispatchboard/domain/metrics"
	"dispatchboard/models"
)

// funnelStages is the canonical pipeline order for the drop-off view.
// The terminal canceled stage matches the whole cancel family, not a
// single raw status.
var funnelStages = []struct {
	stage string
	label string
	match func(models.OrderRecord) bool
}{
	{"created", "Created", func(o models.OrderRecord) bool {
		return o.Status == models.OrderStatusCreated
	}},
	{"assigned", "Assigned", func(o models.OrderRecord) bool {
		return o.Status == models.OrderStatusAssigned
	}},
	{"en_route", "En route", func(o models.OrderRecord) bool {
		return o.Status == models.OrderStatusEnRoute
	}},
	{"completed", "Completed", func(o models.OrderRecord) bool {
		return o.Status == models.OrderStatusCompleted
	}},
	{"canceled", "Canceled", func(o models.OrderRecord) bool {
		return o.IsTerminalCancel()
	}},
}

// Funnel counts orders per canonical pipeline stage, ratios normalized
// against the funnel's own maximum (floored at one).
func Funnel(orders []models.OrderRecord) []metrics.FunnelStep {
	steps := make([]metrics.FunnelStep, len(funnelStages))
	maxCount := 0
	for i, st := range funnelStages {
		count := 0
		for _, o := range orders {
			if st.match(o) {
				count++
			}
		}
		steps[i] = metrics.FunnelStep{Stage: st.stage, Label: st.label, Count: count}
		if count > maxCount {
			maxCount = count
		}
	}
	if maxCount < 1 {
		maxCount = 1
	}
	for i := range steps {
		steps[i].Ratio = float64(steps[i].Count) / float64(maxCount)
	}
	return steps
}
