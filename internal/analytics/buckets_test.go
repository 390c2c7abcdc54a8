package analytics

import (
	"errors"
	"testing"
	"time"

	"dispatchboard/domain/core"
	"dispatchboard/domain/metrics"
)

func TestBuildBuckets_Day(t *testing.T) {
	ref := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	buckets, err := BuildBuckets(metrics.GranularityDay, ref)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(buckets) != 7 {
		t.Fatalf("Expected 7 day buckets, got %d", len(buckets))
	}

	last := buckets[6]
	wantStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if !last.Start.Equal(wantStart) {
		t.Errorf("Expected most recent bucket start %v, got %v", wantStart, last.Start)
	}

	for i, b := range buckets {
		if b.End.Sub(b.Start) != 24*time.Hour {
			t.Errorf("Bucket %d width = %v, want 24h", i, b.End.Sub(b.Start))
		}
		if i > 0 && !b.Start.Equal(buckets[i-1].End) {
			t.Errorf("Buckets %d and %d not contiguous", i-1, i)
		}
	}
}

func TestBuildBuckets_Counts(t *testing.T) {
	ref := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	cases := []struct {
		g    metrics.Granularity
		want int
	}{
		{metrics.GranularityHour, 12},
		{metrics.GranularityDay, 7},
		{metrics.GranularityWeek, 8},
		{metrics.GranularityMonth, 12},
		{metrics.GranularityQuarter, 8},
		{metrics.GranularityYear, 5},
	}
	for _, tc := range cases {
		buckets, err := BuildBuckets(tc.g, ref)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.g, err)
		}
		if len(buckets) != tc.want {
			t.Errorf("%s: expected %d buckets, got %d", tc.g, tc.want, len(buckets))
		}
	}
}

func TestBuildBuckets_WeekStartsMonday(t *testing.T) {
	// 2024-03-10 is a Sunday; its ISO week starts Monday 2024-03-04
	ref := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	buckets, err := BuildBuckets(metrics.GranularityWeek, ref)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	last := buckets[len(buckets)-1]
	wantStart := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if !last.Start.Equal(wantStart) {
		t.Errorf("Expected week start %v, got %v", wantStart, last.Start)
	}
	if last.Start.Weekday() != time.Monday {
		t.Errorf("Expected Monday start, got %v", last.Start.Weekday())
	}
}

func TestBuildBuckets_QuarterAnchors(t *testing.T) {
	ref := time.Date(2024, 8, 20, 9, 30, 0, 0, time.UTC)
	buckets, err := BuildBuckets(metrics.GranularityQuarter, ref)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	last := buckets[len(buckets)-1]
	wantStart := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	if !last.Start.Equal(wantStart) {
		t.Errorf("Expected Q3 start %v, got %v", wantStart, last.Start)
	}
	if last.Label != "Q3 2024" {
		t.Errorf("Expected label Q3 2024, got %q", last.Label)
	}
}

func TestBuildBuckets_UnknownGranularity(t *testing.T) {
	_, err := BuildBuckets(metrics.Granularity("fortnight"), time.Now())
	if !errors.Is(err, core.ErrUnknownGranularity) {
		t.Errorf("Expected ErrUnknownGranularity, got %v", err)
	}
}

func TestAssign_BoundaryBelongsToNextBucket(t *testing.T) {
	ref := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	buckets, err := BuildBuckets(metrics.GranularityDay, ref)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Exactly at the end of bucket 4 == start of bucket 5
	boundary := buckets[4].End
	obs := []metrics.Observation{{Value: 1, At: core.NewTimestamp(boundary)}}

	placed := Assign(buckets, obs)
	if placed != 1 {
		t.Fatalf("Expected 1 placed observation, got %d", placed)
	}
	if len(buckets[4].Members) != 0 {
		t.Errorf("Boundary observation landed in the earlier bucket")
	}
	if len(buckets[5].Members) != 1 {
		t.Errorf("Boundary observation missing from the next bucket")
	}
}

func TestAssign_SkipsMissingAndOutOfRange(t *testing.T) {
	ref := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	buckets, _ := BuildBuckets(metrics.GranularityDay, ref)

	obs := []metrics.Observation{
		{Value: 1}, // no timestamp
		{Value: 2, At: core.NewTimestamp(ref.AddDate(-1, 0, 0))}, // before window
		{Value: 3, At: core.NewTimestamp(ref)},
	}
	placed := Assign(buckets, obs)
	if placed != 1 {
		t.Errorf("Expected exactly 1 placed observation, got %d", placed)
	}
}

func TestBuildRangeBuckets(t *testing.T) {
	from := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	buckets, err := BuildRangeBuckets(metrics.GranularityMonth, from, to)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("Expected 3 month buckets (Jan, Feb, Mar), got %d", len(buckets))
	}
	if !buckets[0].Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected range clipped to whole months, got start %v", buckets[0].Start)
	}

	if _, err := BuildRangeBuckets(metrics.GranularityHour, from, to); err == nil {
		t.Errorf("Expected error for hour grouping in range mode")
	}
}

func TestDeriveRange(t *testing.T) {
	t1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	obs := []metrics.Observation{
		{Value: 1, At: core.NewTimestamp(t2)},
		{Value: 2},
		{Value: 3, At: core.NewTimestamp(t1)},
	}

	from, to, ok := DeriveRange(obs)
	if !ok {
		t.Fatalf("Expected a derived range")
	}
	if !from.Equal(t1) || !to.Equal(t2) {
		t.Errorf("Expected range [%v, %v], got [%v, %v]", t1, t2, from, to)
	}

	if _, _, ok := DeriveRange([]metrics.Observation{{Value: 1}}); ok {
		t.Errorf("Expected no range when no observation has a timestamp")
	}
}
