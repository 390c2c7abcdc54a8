package app

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dispatchboard/domain/metrics"
	"dispatchboard/internal"
	"dispatchboard/internal/config"
	"dispatchboard/internal/loader"
	"dispatchboard/models"
	"dispatchboard/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeOrderReader struct {
	fetch func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error)
}

func (f *fakeOrderReader) FetchOrders(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
	return f.fetch(ctx, filter)
}

type fakeFinanceReader struct {
	summary      func(ctx context.Context, actorID uuid.UUID) (*models.FinancialSummary, error)
	transactions func(ctx context.Context, actorID uuid.UUID, limit int) ([]models.BalanceTransaction, error)
}

func (f *fakeFinanceReader) FetchFinancialSummary(ctx context.Context, actorID uuid.UUID) (*models.FinancialSummary, error) {
	return f.summary(ctx, actorID)
}

func (f *fakeFinanceReader) FetchBalanceTransactions(ctx context.Context, actorID uuid.UUID, limit int) ([]models.BalanceTransaction, error) {
	return f.transactions(ctx, actorID, limit)
}

type recordingNotifier struct {
	mu      sync.Mutex
	domains []loader.Domain
}

func (n *recordingNotifier) NotifyTimeout(d loader.Domain) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.domains = append(n.domains, d)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.domains)
}

func testEngineConfig() config.EngineConfig {
	return config.EngineConfig{
		FetchTimeout:    5 * time.Second,
		TimeoutCooldown: 15 * time.Second,
		DebounceDelay:   30 * time.Millisecond,
		MaxParallel:     6,
		TransactionPage: 50,
	}
}

func testOrders(n int) []models.OrderRecord {
	records := make([]models.OrderRecord, n)
	for i := range records {
		records[i] = models.OrderRecord{
			ID:          uuid.New(),
			Status:      models.OrderStatusCompleted,
			ServiceType: "courier",
			Area:        "center",
			Urgency:     models.UrgencyStandard,
			Price:       100 + float64(i),
			CreatedAt:   time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		}
	}
	return records
}

func newTestService(orders ports.OrderReader, finance ports.FinanceReader, cfg config.EngineConfig, notifier loader.TimeoutNotifier) *DashboardService {
	svc := NewDashboardService(internal.NewLogger(internal.LogLevelError), orders, finance, cfg, notifier)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc
}

// eventually polls cond until it holds or the deadline passes
func eventually(t *testing.T, d time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestDashboardService_SupersededResultDiscarded(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int32

	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstStarted)
			<-releaseFirst
			return testOrders(1), nil
		}
		return testOrders(3), nil
	}}
	svc := newTestService(orders, &fakeFinanceReader{}, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()

	firstDone := make(chan error, 1)
	go func() { firstDone <- svc.LoadQueue(context.Background(), true) }()
	<-firstStarted

	// A newer load starts and finishes while the first is still in flight.
	err := svc.LoadQueue(context.Background(), true)
	assert.NoError(t, err)

	close(releaseFirst)
	assert.NoError(t, <-firstDone)

	agg, status := svc.QueueView()
	if assert.NotNil(t, agg) {
		assert.Equal(t, 3, agg.TotalOrders, "superseded result must not overwrite the newer one")
	}
	assert.False(t, status.Loading)
	assert.False(t, status.TimeoutOccurred)
}

func TestDashboardService_TimeoutFlagsAndLateCommit(t *testing.T) {
	cfg := testEngineConfig()
	cfg.FetchTimeout = 20 * time.Millisecond

	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		time.Sleep(80 * time.Millisecond)
		return testOrders(2), nil
	}}
	notifier := &recordingNotifier{}
	svc := newTestService(orders, &fakeFinanceReader{}, cfg, notifier)
	defer svc.Close()

	err := svc.LoadQueue(context.Background(), false)
	assert.Error(t, err)
	assert.Equal(t, 1, notifier.count())

	_, status := svc.QueueView()
	assert.True(t, status.TimeoutOccurred)
	assert.False(t, status.Loading)

	// The abandoned fetch eventually resolves; nothing newer started, so it
	// commits and clears the timeout flag.
	ok := eventually(t, time.Second, func() bool {
		agg, st := svc.QueueView()
		return agg != nil && !st.TimeoutOccurred
	})
	assert.True(t, ok, "late-but-current result should commit")
	agg, _ := svc.QueueView()
	assert.Equal(t, 2, agg.TotalOrders)
}

func TestDashboardService_FetchErrorKeepsPriorState(t *testing.T) {
	var fail atomic.Bool
	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		if fail.Load() {
			return nil, fmt.Errorf("connection refused")
		}
		return testOrders(2), nil
	}}
	svc := newTestService(orders, &fakeFinanceReader{}, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()

	assert.NoError(t, svc.LoadQueue(context.Background(), false))

	fail.Store(true)
	err := svc.LoadQueue(context.Background(), true)
	assert.Error(t, err)

	agg, status := svc.QueueView()
	if assert.NotNil(t, agg, "failed reload must keep the previous data") {
		assert.Equal(t, 2, agg.TotalOrders)
	}
	assert.False(t, status.Loading)
	assert.False(t, status.TimeoutOccurred)
}

func TestDashboardService_SetActorResetsState(t *testing.T) {
	var calls int32
	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		atomic.AddInt32(&calls, 1)
		return testOrders(2), nil
	}}
	svc := newTestService(orders, &fakeFinanceReader{}, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()

	assert.NoError(t, svc.LoadQueue(context.Background(), false))
	agg, _ := svc.QueueView()
	assert.NotNil(t, agg)

	svc.SetActor(uuid.New())

	reset, status := svc.QueueView()
	assert.Nil(t, reset, "committed data must not leak across an actor switch")
	assert.Equal(t, LoadStatus{}, status)

	// Sections were forgotten, so the next unforced visit refetches.
	assert.NoError(t, svc.LoadQueue(context.Background(), false))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDashboardService_RejectsUnknownGranularity(t *testing.T) {
	var calls int32
	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		atomic.AddInt32(&calls, 1)
		return testOrders(2), nil
	}}
	svc := newTestService(orders, &fakeFinanceReader{}, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()

	err := svc.SetGranularity(context.Background(), metrics.Granularity("bogus"))
	assert.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "a rejected granularity must not trigger a reload")

	err = svc.SetGrouping(context.Background(), metrics.Granularity("bogus"))
	assert.Error(t, err)

	// The stored width is untouched, so loads keep working.
	assert.NoError(t, svc.LoadQueue(context.Background(), false))
	agg, _ := svc.QueueView()
	if assert.NotNil(t, agg) {
		assert.Equal(t, metrics.GranularityDay, agg.Granularity)
	}
}

func TestDashboardService_AggregationFailureFailsTheLoad(t *testing.T) {
	var calls int32
	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		atomic.AddInt32(&calls, 1)
		return testOrders(2), nil
	}}
	svc := newTestService(orders, &fakeFinanceReader{}, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()

	svc.mu.Lock()
	svc.granularity = metrics.Granularity("fortnight")
	svc.mu.Unlock()

	err := svc.LoadQueue(context.Background(), true)
	assert.Error(t, err, "an uncommittable result must fail the load, not answer success")

	agg, status := svc.QueueView()
	assert.Nil(t, agg, "a failed aggregation must not leave partial data behind")
	assert.False(t, status.Loading)

	// The failed load did not mark the section loaded, so the next unforced
	// visit retries and commits once the width is sane again.
	svc.mu.Lock()
	svc.granularity = metrics.GranularityDay
	svc.mu.Unlock()

	assert.NoError(t, svc.LoadQueue(context.Background(), false))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	agg, _ = svc.QueueView()
	assert.NotNil(t, agg)
}

func TestDashboardService_InFlightLoadNeverCommitsAcrossActorSwitch(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int32

	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(firstStarted)
			<-releaseFirst
			return testOrders(1), nil
		}
		return testOrders(5), nil
	}}
	svc := newTestService(orders, &fakeFinanceReader{}, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()
	svc.SetActor(uuid.New())

	firstDone := make(chan error, 1)
	go func() { firstDone <- svc.LoadQueue(context.Background(), true) }()
	<-firstStarted

	// Identity switches while the old actor's fetch is still in flight, and
	// the new identity runs its own first load to completion.
	svc.SetActor(uuid.New())
	assert.NoError(t, svc.LoadQueue(context.Background(), false))

	close(releaseFirst)
	assert.NoError(t, <-firstDone)

	agg, _ := svc.QueueView()
	if assert.NotNil(t, agg) {
		assert.Equal(t, 5, agg.TotalOrders, "the old actor's result must never land in the new actor's view")
	}
}

func TestDashboardService_SearchDebouncedToTrailingValue(t *testing.T) {
	var mu sync.Mutex
	var searches []string
	orders := &fakeOrderReader{fetch: func(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
		mu.Lock()
		searches = append(searches, filter.Search)
		mu.Unlock()
		return testOrders(1), nil
	}}
	svc := newTestService(orders, &fakeFinanceReader{}, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()

	svc.SetSearch("a")
	svc.SetSearch("ab")
	svc.SetSearch("abc")

	ok := eventually(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(searches) > 0
	})
	assert.True(t, ok, "debounced search never triggered a reload")

	time.Sleep(100 * time.Millisecond) // quiet period: no further commits

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"abc"}, searches, "a rapid burst reloads once with the trailing value")
}

func TestDashboardService_AccountCompositeLoad(t *testing.T) {
	actor := uuid.New()
	finance := &fakeFinanceReader{
		summary: func(ctx context.Context, actorID uuid.UUID) (*models.FinancialSummary, error) {
			assert.Equal(t, actor, actorID)
			return &models.FinancialSummary{ActorID: actorID, Balance: 120.5}, nil
		},
		transactions: func(ctx context.Context, actorID uuid.UUID, limit int) ([]models.BalanceTransaction, error) {
			assert.Equal(t, 50, limit)
			return make([]models.BalanceTransaction, 2), nil
		},
	}
	svc := newTestService(&fakeOrderReader{}, finance, testEngineConfig(), &recordingNotifier{})
	defer svc.Close()
	svc.SetActor(actor)

	assert.NoError(t, svc.LoadAccount(context.Background(), false))

	state, status := svc.AccountView()
	if assert.NotNil(t, state) {
		assert.Equal(t, 120.5, state.Summary.Balance)
		assert.Len(t, state.Transactions, 2)
	}
	assert.False(t, status.Loading)
	assert.Equal(t, svc.now(), status.LastUpdatedAt)
}

func TestDashboardService_AccountTimeoutWhenOneSourceStalls(t *testing.T) {
	cfg := testEngineConfig()
	cfg.FetchTimeout = 20 * time.Millisecond

	finance := &fakeFinanceReader{
		summary: func(ctx context.Context, actorID uuid.UUID) (*models.FinancialSummary, error) {
			return &models.FinancialSummary{}, nil
		},
		transactions: func(ctx context.Context, actorID uuid.UUID, limit int) ([]models.BalanceTransaction, error) {
			time.Sleep(100 * time.Millisecond)
			return nil, nil
		},
	}
	notifier := &recordingNotifier{}
	svc := newTestService(&fakeOrderReader{}, finance, cfg, notifier)
	defer svc.Close()

	err := svc.LoadAccount(context.Background(), false)
	assert.Error(t, err)
	assert.Equal(t, 1, notifier.count())

	state, status := svc.AccountView()
	assert.Nil(t, state)
	assert.True(t, status.TimeoutOccurred)

	// A partial composite is never committed late; the next visit refetches
	// because the timed-out load did not mark the section loaded.
	assert.False(t, svc.Status(loader.DomainAccount).Loading)
}
