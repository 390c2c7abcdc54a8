package analytics

import (
	"sort"

	"dispatchboard/domain/metrics"
	"dispatchboard/models"
)

// List sizes for the ranked views: general breakdowns show six rows,
// courier leaderboards five.
const (
	GeneralListSize     = 6
	LeaderboardListSize = 5
)

// urgencyPriority fixes the tiebreak order for equal urgency counts so the
// breakdown never reshuffles between loads.
var urgencyPriority = map[string]int{
	string(models.UrgencyCritical):  0,
	string(models.UrgencyUrgent):    1,
	string(models.UrgencyStandard):  2,
	string(models.UrgencyScheduled): 3,
}

// TopN groups orders by a categorical key, counts occurrences and returns
// the first limit entries sorted by count descending with an alphabetical
// tiebreak. Each entry's Ratio is normalized against the slice maximum for
// bar-width rendering; the divisor is floored at one so an all-zero slice
// never divides by zero.
func TopN(key string, orders []models.OrderRecord, pick func(models.OrderRecord) string, limit int) metrics.TopNList {
	return rankedList(key, countBy(orders, pick), limit, func(a, b metrics.TopNEntry) bool {
		return a.Label < b.Label
	})
}

// UrgencyBreakdown ranks urgency categories with the fixed priority-table
// tiebreak instead of the alphabetical one.
func UrgencyBreakdown(orders []models.OrderRecord) metrics.TopNList {
	counts := countBy(orders, func(o models.OrderRecord) string { return string(o.Urgency) })
	return rankedList("urgency", counts, GeneralListSize, func(a, b metrics.TopNEntry) bool {
		pa, oka := urgencyPriority[a.Label]
		pb, okb := urgencyPriority[b.Label]
		if oka && okb {
			return pa < pb
		}
		if oka != okb {
			return oka
		}
		return a.Label < b.Label
	})
}

// CourierLeaderboard ranks couriers by completed-order count
func CourierLeaderboard(orders []models.OrderRecord) metrics.TopNList {
	completed := make([]models.OrderRecord, 0, len(orders))
	for _, o := range orders {
		if o.Status == models.OrderStatusCompleted && o.CourierName != "" {
			completed = append(completed, o)
		}
	}
	return TopN("couriers", completed, func(o models.OrderRecord) string { return o.CourierName }, LeaderboardListSize)
}

func countBy(orders []models.OrderRecord, pick func(models.OrderRecord) string) map[string]int {
	counts := make(map[string]int)
	for _, o := range orders {
		label := pick(o)
		if label == "" {
			continue
		}
		counts[label]++
	}
	return counts
}

func rankedList(key string, counts map[string]int, limit int, tiebreak func(a, b metrics.TopNEntry) bool) metrics.TopNList {
	entries := make([]metrics.TopNEntry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, metrics.TopNEntry{Label: label, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return tiebreak(entries[i], entries[j])
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	maxCount := 0
	for _, e := range entries {
		if e.Count > maxCount {
			maxCount = e.Count
		}
	}
	if maxCount < 1 {
		maxCount = 1
	}
	for i := range entries {
		entries[i].Ratio = float64(entries[i].Count) / float64(maxCount)
	}

	return metrics.TopNList{Key: key, Entries: entries}
}
