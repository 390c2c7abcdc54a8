package app

import (
	"time"

	"dispatchboard/domain/metrics"
	"dispatchboard/internal/analytics"
	"dispatchboard/models"
)

// DashboardAggregates is everything the dashboard view renders for one
// granularity window.
type DashboardAggregates struct {
	Granularity    metrics.Granularity  `json:"granularity"`
	Series         metrics.OrderSeries  `json:"series"`
	Funnel         []metrics.FunnelStep `json:"funnel"`
	TopServices    metrics.TopNList     `json:"top_services"`
	TopAreas       metrics.TopNList     `json:"top_areas"`
	Urgency        metrics.TopNList     `json:"urgency"`
	Leaderboard    metrics.TopNList     `json:"leaderboard"`
	PriceStats     metrics.StatSummary  `json:"price_stats"`
	TotalOrders    int                  `json:"total_orders"`
	BucketedOrders int                  `json:"bucketed_orders"`
}

// PoolAggregates is the all-time price-distribution view
type PoolAggregates struct {
	Grouping metrics.Granularity     `json:"grouping"`
	Overall  metrics.StatSummary     `json:"overall"`
	Buckets  []metrics.BoxPlotBucket `json:"buckets"`
}

// AccountState bundles the earnings snapshot with its recent ledger
type AccountState struct {
	Summary      *models.FinancialSummary    `json:"summary"`
	Transactions []models.BalanceTransaction `json:"transactions"`
}

// AnalyticsService turns raw order records into the aggregates the
// presentation layer consumes. Pure computation, no I/O.
type AnalyticsService struct{}

// NewAnalyticsService creates the aggregation service
func NewAnalyticsService() *AnalyticsService {
	return &AnalyticsService{}
}

// DashboardAggregates builds the full dashboard payload for the window
// ending at ref.
func (s *AnalyticsService) DashboardAggregates(orders []models.OrderRecord, g metrics.Granularity, ref time.Time) (*DashboardAggregates, error) {
	buckets, err := analytics.BuildBuckets(g, ref)
	if err != nil {
		return nil, err
	}

	obs := analytics.PriceObservations(orders)
	bucketed := analytics.Assign(buckets, obs)

	priceValues := make([]float64, 0, len(obs))
	for _, o := range obs {
		if o.Value > 0 {
			priceValues = append(priceValues, o.Value)
		}
	}

	return &DashboardAggregates{
		Granularity: g,
		Series:      analytics.BuildOrderSeries(orders, buckets),
		Funnel:      analytics.Funnel(orders),
		TopServices: analytics.TopN("service_types", orders,
			func(o models.OrderRecord) string { return o.ServiceType }, analytics.GeneralListSize),
		TopAreas: analytics.TopN("areas", orders,
			func(o models.OrderRecord) string { return o.Area }, analytics.GeneralListSize),
		Urgency:        analytics.UrgencyBreakdown(orders),
		Leaderboard:    analytics.CourierLeaderboard(orders),
		PriceStats:     analytics.Calc(priceValues),
		TotalOrders:    len(orders),
		BucketedOrders: bucketed,
	}, nil
}

// PoolAggregates builds the all-time price-distribution view at the
// caller-selected grouping.
func (s *AnalyticsService) PoolAggregates(orders []models.OrderRecord, grouping metrics.Granularity) (*PoolAggregates, error) {
	overall, buckets, err := analytics.PriceDistribution(orders, grouping)
	if err != nil {
		return nil, err
	}
	return &PoolAggregates{
		Grouping: grouping,
		Overall:  overall,
		Buckets:  buckets,
	}, nil
}
