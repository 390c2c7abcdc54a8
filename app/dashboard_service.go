package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dispatchboard/domain/metrics"
	"dispatchboard/internal"
	"dispatchboard/internal/config"
	"dispatchboard/internal/errors"
	"dispatchboard/internal/loader"
	"dispatchboard/models"
	"dispatchboard/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// LoadStatus is the load-lifecycle signal set the presentation layer
// renders per domain.
type LoadStatus struct {
	Loading         bool      `json:"loading"`
	LastUpdatedAt   time.Time `json:"last_updated_at"`
	TimeoutOccurred bool      `json:"timeout_occurred"`
}

// Section keys for the lazy tab cache. They map one-to-one onto load
// domains.
const (
	sectionQueue    = "queue"
	sectionCritical = "critical"
	sectionAccount  = "account"
	sectionPool     = "pool"
)

// DashboardService coordinates overlapping, cancellable-by-supersession
// data loads for the admin console and owns the committed aggregate state.
//
// Discipline: every load begins by taking a token from the sequencer, and
// every result is checked against that token after each await before it
// may touch shared state. In-flight work is never aborted; a stale result
// is simply discarded, and only the newest token may clear a domain's
// loading flag.
type DashboardService struct {
	log       *internal.Logger
	orders    ports.OrderReader
	finance   ports.FinanceReader
	analytics *AnalyticsService
	seq       *loader.Sequencer
	cache     *loader.SectionCache
	notifier  loader.TimeoutNotifier
	sem       *semaphore.Weighted
	cfg       config.EngineConfig
	now       func() time.Time

	search *loader.Debouncer[string]

	mu           sync.RWMutex
	actor        uuid.UUID
	searchTerm   string
	granularity  metrics.Granularity
	grouping     metrics.Granularity
	status       map[loader.Domain]*LoadStatus
	queueData    *DashboardAggregates
	criticalData []models.OrderRecord
	accountData  *AccountState
	poolData     *PoolAggregates
}

// NewDashboardService wires the coordinator. The notifier is injected so
// hosts decide how a timeout warning reaches the user.
func NewDashboardService(log *internal.Logger, orders ports.OrderReader, finance ports.FinanceReader, cfg config.EngineConfig, notifier loader.TimeoutNotifier) *DashboardService {
	s := &DashboardService{
		log:         log.With("dashboard"),
		orders:      orders,
		finance:     finance,
		analytics:   NewAnalyticsService(),
		seq:         loader.NewSequencer(),
		cache:       loader.NewSectionCache(),
		notifier:    notifier,
		sem:         semaphore.NewWeighted(cfg.MaxParallel),
		cfg:         cfg,
		now:         time.Now,
		granularity: metrics.GranularityDay,
		grouping:    metrics.GranularityWeek,
		status:      make(map[loader.Domain]*LoadStatus),
	}
	s.search = loader.NewDebouncer(cfg.DebounceDelay, s.commitSearch)
	return s
}

// Close tears down pending debounce timers
func (s *DashboardService) Close() {
	s.search.Stop()
}

// SetActor switches the signed-in identity. All section loaded-flags and
// sequence counters reset so data from the previous actor can never leak
// into the next one's views.
func (s *DashboardService) SetActor(id uuid.UUID) {
	s.mu.Lock()
	if s.actor == id {
		s.mu.Unlock()
		return
	}
	s.actor = id
	s.searchTerm = ""
	s.queueData = nil
	s.criticalData = nil
	s.accountData = nil
	s.poolData = nil
	s.status = make(map[loader.Domain]*LoadStatus)
	s.mu.Unlock()

	s.cache.ResetAll()
	s.seq.ResetAll()
}

// SetSearch feeds the free-text search box through the debouncer; the
// queue reloads once per quiet window with the trailing value.
func (s *DashboardService) SetSearch(q string) {
	s.search.Set(q)
}

func (s *DashboardService) commitSearch(q string) {
	s.mu.Lock()
	s.searchTerm = q
	s.mu.Unlock()
	if err := s.LoadQueue(context.Background(), true); err != nil {
		s.log.Warn("debounced queue reload failed: %v", err)
	}
}

// SetGranularity changes the dashboard bucket width and forces a reload.
// An unknown granularity is rejected before anything is stored, so the
// committed aggregates keep rendering with the previous width.
func (s *DashboardService) SetGranularity(ctx context.Context, g metrics.Granularity) error {
	if !g.Valid() {
		return errors.InvalidInput(fmt.Sprintf("unknown granularity %q", g))
	}
	s.mu.Lock()
	s.granularity = g
	s.mu.Unlock()
	return s.LoadQueue(ctx, true)
}

// SetGrouping changes the price-distribution grouping and forces a reload
func (s *DashboardService) SetGrouping(ctx context.Context, g metrics.Granularity) error {
	if !g.ValidGrouping() {
		return errors.InvalidInput(fmt.Sprintf("unknown grouping %q", g))
	}
	s.mu.Lock()
	s.grouping = g
	s.mu.Unlock()
	return s.LoadPool(ctx, true)
}

// RefreshAll reloads every section in parallel (pull-to-refresh)
func (s *DashboardService) RefreshAll(ctx context.Context, force bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.LoadQueue(gctx, force) })
	g.Go(func() error { return s.LoadCritical(gctx, force) })
	g.Go(func() error { return s.LoadAccount(gctx, force) })
	g.Go(func() error { return s.LoadPool(gctx, force) })
	return g.Wait()
}

// LoadQueue populates the main dashboard section
func (s *DashboardService) LoadQueue(ctx context.Context, force bool) error {
	return s.cache.EnsureLoaded(ctx, sectionQueue, s.reloadQueue, force)
}

// LoadCritical populates the critical-orders section
func (s *DashboardService) LoadCritical(ctx context.Context, force bool) error {
	return s.cache.EnsureLoaded(ctx, sectionCritical, s.reloadCritical, force)
}

// LoadAccount populates the earnings section
func (s *DashboardService) LoadAccount(ctx context.Context, force bool) error {
	return s.cache.EnsureLoaded(ctx, sectionAccount, s.reloadAccount, force)
}

// LoadPool populates the price-distribution section
func (s *DashboardService) LoadPool(ctx context.Context, force bool) error {
	return s.cache.EnsureLoaded(ctx, sectionPool, s.reloadPool, force)
}

func (s *DashboardService) reloadQueue(ctx context.Context) error {
	tok := s.beginLoad(loader.DomainQueue)
	filter := ports.OrderFilter{Search: s.currentSearch()}

	out := loader.RaceWithLate(ctx, s.cfg.FetchTimeout,
		func(ctx context.Context) ([]models.OrderRecord, error) {
			return s.orders.FetchOrders(ctx, filter)
		},
		func(records []models.OrderRecord, err error) {
			// The abandoned fetch resolved after the timeout. If nothing
			// newer has started it is still the best data we have, so it
			// is committed and the timeout flag cleared.
			if err != nil {
				return
			}
			if s.commitQueue(tok, records) == nil && s.seq.IsCurrent(tok) {
				s.log.Info("late queue result committed after timeout")
			}
		})

	return s.settleOrders(loader.DomainQueue, tok, out, s.commitQueue)
}

func (s *DashboardService) reloadCritical(ctx context.Context) error {
	tok := s.beginLoad(loader.DomainCritical)
	filter := ports.OrderFilter{Urgency: models.UrgencyCritical}

	out := loader.RaceWithLate(ctx, s.cfg.FetchTimeout,
		func(ctx context.Context) ([]models.OrderRecord, error) {
			return s.orders.FetchOrders(ctx, filter)
		},
		func(records []models.OrderRecord, err error) {
			if err == nil {
				s.commitCritical(tok, records)
			}
		})

	return s.settleOrders(loader.DomainCritical, tok, out, s.commitCritical)
}

func (s *DashboardService) reloadAccount(ctx context.Context) error {
	tok := s.beginLoad(loader.DomainAccount)
	actor := s.currentActor()

	var sumOut loader.Outcome[*models.FinancialSummary]
	var txOut loader.Outcome[[]models.BalanceTransaction]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.sem.Acquire(gctx, 1); err != nil {
			return err
		}
		defer s.sem.Release(1)
		sumOut = loader.Race(gctx, s.cfg.FetchTimeout,
			func(ctx context.Context) (*models.FinancialSummary, error) {
				return s.finance.FetchFinancialSummary(ctx, actor)
			})
		return nil
	})
	g.Go(func() error {
		if err := s.sem.Acquire(gctx, 1); err != nil {
			return err
		}
		defer s.sem.Release(1)
		txOut = loader.Race(gctx, s.cfg.FetchTimeout,
			func(ctx context.Context) ([]models.BalanceTransaction, error) {
				return s.finance.FetchBalanceTransactions(ctx, actor, s.cfg.TransactionPage)
			})
		return nil
	})
	if err := g.Wait(); err != nil {
		s.conclude(tok, nil)
		return err
	}

	if !s.seq.IsCurrent(tok) {
		return nil // superseded while both fetches ran
	}
	if sumOut.TimedOut || txOut.TimedOut {
		s.notifier.NotifyTimeout(loader.DomainAccount)
		s.conclude(tok, func(st *LoadStatus) { st.TimeoutOccurred = true })
		return errors.LoadTimeout(string(loader.DomainAccount))
	}
	if sumOut.Err != nil {
		return s.settleFetchError(loader.DomainAccount, tok, sumOut.Err)
	}
	if txOut.Err != nil {
		return s.settleFetchError(loader.DomainAccount, tok, txOut.Err)
	}

	s.conclude(tok, func(st *LoadStatus) {
		st.TimeoutOccurred = false
		st.LastUpdatedAt = s.now()
		s.accountData = &AccountState{Summary: sumOut.Value, Transactions: txOut.Value}
	})
	return nil
}

func (s *DashboardService) reloadPool(ctx context.Context) error {
	tok := s.beginLoad(loader.DomainPool)
	filter := ports.OrderFilter{Status: models.OrderStatusCompleted}

	out := loader.RaceWithLate(ctx, s.cfg.FetchTimeout,
		func(ctx context.Context) ([]models.OrderRecord, error) {
			return s.orders.FetchOrders(ctx, filter)
		},
		func(records []models.OrderRecord, err error) {
			if err == nil {
				s.commitPool(tok, records)
			}
		})

	return s.settleOrders(loader.DomainPool, tok, out, s.commitPool)
}

// settleOrders applies the shared post-await discipline for single-source
// order loads: stale results are discarded silently, timeouts flag the
// domain and raise a throttled warning, fetch errors leave prior state
// untouched, and a fresh result commits. A commit failure surfaces to the
// caller so the section is not recorded as loaded.
func (s *DashboardService) settleOrders(d loader.Domain, tok loader.Token, out loader.Outcome[[]models.OrderRecord], commit func(loader.Token, []models.OrderRecord) error) error {
	if !s.seq.IsCurrent(tok) {
		return nil
	}
	if out.TimedOut {
		s.notifier.NotifyTimeout(d)
		s.conclude(tok, func(st *LoadStatus) { st.TimeoutOccurred = true })
		return errors.LoadTimeout(string(d))
	}
	if out.Err != nil {
		return s.settleFetchError(d, tok, out.Err)
	}
	return commit(tok, out.Value)
}

func (s *DashboardService) settleFetchError(d loader.Domain, tok loader.Token, err error) error {
	s.log.Error("%s fetch failed: %v", d, err)
	s.conclude(tok, nil)
	return errors.SourceFetchError(string(d), err)
}

// Commit funcs return nil when the data was applied or the token had
// gone stale (staleness is not a failure); an aggregation error comes
// back so the load as a whole is reported as failed.
func (s *DashboardService) commitQueue(tok loader.Token, records []models.OrderRecord) error {
	agg, err := s.analytics.DashboardAggregates(records, s.currentGranularity(), s.now())
	if err != nil {
		s.log.Error("queue aggregation failed: %v", err)
		s.conclude(tok, nil)
		return errors.Wrap(err, "queue aggregation failed")
	}
	s.conclude(tok, func(st *LoadStatus) {
		st.TimeoutOccurred = false
		st.LastUpdatedAt = s.now()
		s.queueData = agg
	})
	return nil
}

func (s *DashboardService) commitCritical(tok loader.Token, records []models.OrderRecord) error {
	s.conclude(tok, func(st *LoadStatus) {
		st.TimeoutOccurred = false
		st.LastUpdatedAt = s.now()
		s.criticalData = records
	})
	return nil
}

func (s *DashboardService) commitPool(tok loader.Token, records []models.OrderRecord) error {
	agg, err := s.analytics.PoolAggregates(records, s.currentGrouping())
	if err != nil {
		s.log.Error("pool aggregation failed: %v", err)
		s.conclude(tok, nil)
		return errors.Wrap(err, "pool aggregation failed")
	}
	s.conclude(tok, func(st *LoadStatus) {
		st.TimeoutOccurred = false
		st.LastUpdatedAt = s.now()
		s.poolData = agg
	})
	return nil
}

// beginLoad takes the next token for the domain and raises its loading flag
func (s *DashboardService) beginLoad(d loader.Domain) loader.Token {
	tok := s.seq.Begin(d)
	s.mu.Lock()
	s.statusLocked(d).Loading = true
	s.mu.Unlock()
	return tok
}

// conclude lowers the loading flag and applies fn under the state lock,
// but only when tok is still current. A stale token touches nothing, so a
// late straggler never clears a spinner started by a newer request.
func (s *DashboardService) conclude(tok loader.Token, fn func(st *LoadStatus)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seq.IsCurrent(tok) {
		return false
	}
	st := s.statusLocked(tok.Domain)
	st.Loading = false
	if fn != nil {
		fn(st)
	}
	return true
}

func (s *DashboardService) statusLocked(d loader.Domain) *LoadStatus {
	st, ok := s.status[d]
	if !ok {
		st = &LoadStatus{}
		s.status[d] = st
	}
	return st
}

func (s *DashboardService) currentSearch() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchTerm
}

func (s *DashboardService) currentActor() uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actor
}

func (s *DashboardService) currentGranularity() metrics.Granularity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.granularity
}

func (s *DashboardService) currentGrouping() metrics.Granularity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grouping
}

// Status returns a copy of the domain's load-lifecycle signals
func (s *DashboardService) Status(d loader.Domain) LoadStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.status[d]; ok {
		return *st
	}
	return LoadStatus{}
}

// QueueView returns the committed dashboard aggregates with their signals
func (s *DashboardService) QueueView() (*DashboardAggregates, LoadStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queueData, s.statusCopy(loader.DomainQueue)
}

// CriticalView returns the committed critical-orders list with its signals
func (s *DashboardService) CriticalView() ([]models.OrderRecord, LoadStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criticalData, s.statusCopy(loader.DomainCritical)
}

// AccountView returns the committed earnings state with its signals
func (s *DashboardService) AccountView() (*AccountState, LoadStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountData, s.statusCopy(loader.DomainAccount)
}

// PoolView returns the committed price-distribution view with its signals
func (s *DashboardService) PoolView() (*PoolAggregates, LoadStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.poolData, s.statusCopy(loader.DomainPool)
}

func (s *DashboardService) statusCopy(d loader.Domain) LoadStatus {
	if st, ok := s.status[d]; ok {
		return *st
	}
	return LoadStatus{}
}
