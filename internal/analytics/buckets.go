package analytics

import (
	"fmt"
	"time"

	"dispatchboard/domain/core"
	"dispatchboard/domain/metrics"
)

// bucketCounts fixes the window size per granularity, most recent last
var bucketCounts = map[metrics.Granularity]int{
	metrics.GranularityHour:    12,
	metrics.GranularityDay:     7,
	metrics.GranularityWeek:    8,
	metrics.GranularityMonth:   12,
	metrics.GranularityQuarter: 8,
	metrics.GranularityYear:    5,
}

// BuildBuckets partitions the window ending at ref into contiguous half-open
// [start, end) shells at the chosen granularity. The most recent bucket is
// the one containing ref; buckets are returned oldest first.
func BuildBuckets(g metrics.Granularity, ref time.Time) ([]metrics.Bucket, error) {
	count, ok := bucketCounts[g]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownGranularity, g)
	}

	starts := make([]time.Time, count)
	starts[count-1] = unitStart(g, ref)
	for i := count - 2; i >= 0; i-- {
		starts[i] = prevUnit(g, starts[i+1])
	}

	buckets := make([]metrics.Bucket, count)
	for i, start := range starts {
		end := nextUnit(g, start)
		buckets[i] = metrics.Bucket{
			Start: start,
			End:   end,
			Label: bucketLabel(g, start),
		}
	}
	return buckets, nil
}

// BuildRangeBuckets covers an explicit [from, to] span, clipped to whole
// calendar units. Used by the all-time price-distribution view where the
// range is derived from the observations themselves. Only day, week and
// month groupings are offered there.
func BuildRangeBuckets(g metrics.Granularity, from, to time.Time) ([]metrics.Bucket, error) {
	if !g.ValidGrouping() {
		return nil, fmt.Errorf("%w: %s not valid for range bucketing", core.ErrUnknownGranularity, g)
	}
	if to.Before(from) {
		return nil, core.ErrEmptyRange
	}

	var buckets []metrics.Bucket
	for start := unitStart(g, from); !start.After(to); start = nextUnit(g, start) {
		buckets = append(buckets, metrics.Bucket{
			Start: start,
			End:   nextUnit(g, start),
			Label: bucketLabel(g, start),
		})
	}
	return buckets, nil
}

// DeriveRange finds the observed timestamp span. ok is false when no
// observation carries a usable timestamp.
func DeriveRange(obs []metrics.Observation) (from, to time.Time, ok bool) {
	for _, o := range obs {
		if !o.HasTimestamp() {
			continue
		}
		t := o.At.Time()
		if !ok {
			from, to, ok = t, t, true
			continue
		}
		if t.Before(from) {
			from = t
		}
		if t.After(to) {
			to = t
		}
	}
	return from, to, ok
}

// Assign places each observation into the unique bucket whose half-open
// interval contains its timestamp. Observations without a timestamp or
// outside the covered span are skipped; the count of placed observations
// is returned so callers can still report ungrouped totals.
func Assign(buckets []metrics.Bucket, obs []metrics.Observation) int {
	if len(buckets) == 0 {
		return 0
	}
	placed := 0
	for _, o := range obs {
		if !o.HasTimestamp() {
			continue
		}
		if i, ok := locate(buckets, o.At.Time()); ok {
			buckets[i].Members = append(buckets[i].Members, o)
			placed++
		}
	}
	return placed
}

// locate binary-searches the contiguous bucket run for the interval holding t
func locate(buckets []metrics.Bucket, t time.Time) (int, bool) {
	lo, hi := 0, len(buckets)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		b := buckets[mid]
		switch {
		case t.Before(b.Start):
			hi = mid - 1
		case !t.Before(b.End):
			lo = mid + 1
		default:
			return mid, true
		}
	}
	return 0, false
}

// unitStart truncates t down to the start of its calendar unit in t's location
func unitStart(g metrics.Granularity, t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case metrics.GranularityHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, loc)
	case metrics.GranularityDay:
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	case metrics.GranularityWeek:
		// ISO week, Monday start
		back := (int(t.Weekday()) + 6) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, loc)
	case metrics.GranularityMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case metrics.GranularityQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, loc)
	case metrics.GranularityYear:
		return time.Date(y, 1, 1, 0, 0, 0, 0, loc)
	}
	return t
}

func nextUnit(g metrics.Granularity, start time.Time) time.Time {
	switch g {
	case metrics.GranularityHour:
		return start.Add(time.Hour)
	case metrics.GranularityDay:
		return start.AddDate(0, 0, 1)
	case metrics.GranularityWeek:
		return start.AddDate(0, 0, 7)
	case metrics.GranularityMonth:
		return start.AddDate(0, 1, 0)
	case metrics.GranularityQuarter:
		return start.AddDate(0, 3, 0)
	case metrics.GranularityYear:
		return start.AddDate(1, 0, 0)
	}
	return start
}

func prevUnit(g metrics.Granularity, start time.Time) time.Time {
	switch g {
	case metrics.GranularityHour:
		return start.Add(-time.Hour)
	case metrics.GranularityDay:
		return start.AddDate(0, 0, -1)
	case metrics.GranularityWeek:
		return start.AddDate(0, 0, -7)
	case metrics.GranularityMonth:
		return start.AddDate(0, -1, 0)
	case metrics.GranularityQuarter:
		return start.AddDate(0, -3, 0)
	case metrics.GranularityYear:
		return start.AddDate(-1, 0, 0)
	}
	return start
}

// bucketLabel renders the display string for a bucket start. Bucketing math
// never depends on these.
func bucketLabel(g metrics.Granularity, start time.Time) string {
	switch g {
	case metrics.GranularityHour:
		return start.Format("15:04")
	case metrics.GranularityDay, metrics.GranularityWeek:
		return start.Format("Jan 2")
	case metrics.GranularityMonth:
		return start.Format("Jan 2006")
	case metrics.GranularityQuarter:
		return fmt.Sprintf("Q%d %d", (int(start.Month())-1)/3+1, start.Year())
	case metrics.GranularityYear:
		return start.Format("2006")
	}
	return start.Format("2006-01-02")
}
