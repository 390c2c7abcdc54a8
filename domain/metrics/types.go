package metrics

import (
	"time"

	"dispatchboard/domain/core"
)

// Observation is a single numeric value captured from a raw order or
// transaction record at aggregation time. Immutable once built.
type Observation struct {
	Value       float64        `json:"value"`
	At          core.Timestamp `json:"at"`
	ServiceType string         `json:"service_type,omitempty"`
	Area        string         `json:"area,omitempty"`
	Urgency     string         `json:"urgency,omitempty"`
	Status      string         `json:"status,omitempty"`
}

// HasTimestamp reports whether the observation carries a usable timestamp.
// Observations without one are excluded from bucketing but still count
// toward ungrouped totals.
func (o Observation) HasTimestamp() bool {
	return !o.At.IsZero()
}

// StatSummary holds descriptive statistics over a numeric sample.
// An empty sample yields the zero value with N = 0, never an error.
type StatSummary struct {
	N    int     `json:"n"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	P5   float64 `json:"p5"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P90  float64 `json:"p90"`
	P95  float64 `json:"p95"`
	IQR  float64 `json:"iqr"`
	CV   float64 `json:"cv"`
}

// Granularity selects the bucket width for time-partitioned aggregates
type Granularity string

const (
	GranularityHour    Granularity = "hour"
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// Valid reports whether g is one of the known granularities
func (g Granularity) Valid() bool {
	switch g {
	case GranularityHour, GranularityDay, GranularityWeek,
		GranularityMonth, GranularityQuarter, GranularityYear:
		return true
	}
	return false
}

// ValidGrouping reports whether g can group a range derived from observed
// timestamps. Only day, week and month are offered there.
func (g Granularity) ValidGrouping() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return true
	}
	return false
}

// Bucket is a half-open time interval [Start, End) holding the observations
// assigned to it. Buckets produced for one granularity run are contiguous
// and non-overlapping, most recent last.
type Bucket struct {
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Label   string        `json:"label"`
	Members []Observation `json:"-"`
}

// Contains reports whether t falls inside the bucket's half-open interval
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// BoxPlotBucket attaches a per-bucket statistical summary to its interval.
// SmallSample flags summaries built from fewer than five values; it is a
// trust signal for display, not an exclusion.
type BoxPlotBucket struct {
	Start       time.Time   `json:"start"`
	End         time.Time   `json:"end"`
	Label       string      `json:"label"`
	Summary     StatSummary `json:"summary"`
	SmallSample bool        `json:"small_sample"`
	Shape       *ShapeStats `json:"shape,omitempty"`
}

// ShapeStats describes distribution shape for larger samples
type ShapeStats struct {
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
	IsNormal bool    `json:"is_normal"`
	NormalP  float64 `json:"normal_p"`
}

// TopNEntry is one row of a ranked categorical breakdown. Ratio is the
// count normalized against the slice maximum for bar-width rendering.
type TopNEntry struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// TopNList is a ranked categorical breakdown, count descending with a
// deterministic tiebreak.
type TopNList struct {
	Key     string      `json:"key"`
	Entries []TopNEntry `json:"entries"`
}

// FunnelStep is one stage of the order pipeline with its matched count
type FunnelStep struct {
	Stage string  `json:"stage"`
	Label string  `json:"label"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// OrderSeries carries the index-aligned per-bucket series derived from one
// bucket set. Created counts follow the creation timestamp; completed
// counts, revenue and commission follow the completion timestamp.
type OrderSeries struct {
	Labels     []string  `json:"labels"`
	Created    []int     `json:"created"`
	Completed  []int     `json:"completed"`
	Revenue    []float64 `json:"revenue"`
	Commission []float64 `json:"commission"`
}

// Len returns the shared series length
func (s OrderSeries) Len() int { return len(s.Labels) }
