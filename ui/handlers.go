package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"dispatchboard/app"
	"dispatchboard/domain/metrics"
	"dispatchboard/internal/loader"
)

// domainView is the common response envelope: committed data plus the
// load-lifecycle signals the console renders alongside it.
type domainView struct {
	Data   interface{}    `json:"data"`
	Status app.LoadStatus `json:"status"`
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if err := a.dashboard.LoadQueue(r.Context(), false); err != nil {
		a.log.Warn("queue load: %v", err)
	}
	agg, status := a.dashboard.QueueView()
	writeJSON(w, domainView{Data: agg, Status: status})
}

func (a *App) handleCritical(w http.ResponseWriter, r *http.Request) {
	if err := a.dashboard.LoadCritical(r.Context(), false); err != nil {
		a.log.Warn("critical load: %v", err)
	}
	orders, status := a.dashboard.CriticalView()
	writeJSON(w, domainView{Data: orders, Status: status})
}

func (a *App) handleAccount(w http.ResponseWriter, r *http.Request) {
	if err := a.dashboard.LoadAccount(r.Context(), false); err != nil {
		a.log.Warn("account load: %v", err)
	}
	account, status := a.dashboard.AccountView()
	writeJSON(w, domainView{Data: account, Status: status})
}

func (a *App) handlePool(w http.ResponseWriter, r *http.Request) {
	if err := a.dashboard.LoadPool(r.Context(), false); err != nil {
		a.log.Warn("pool load: %v", err)
	}
	pool, status := a.dashboard.PoolView()
	writeJSON(w, domainView{Data: pool, Status: status})
}

func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	if err := a.dashboard.RefreshAll(r.Context(), force); err != nil {
		a.log.Warn("refresh: %v", err)
	}
	writeJSON(w, map[string]interface{}{
		"queue":    a.dashboard.Status(loader.DomainQueue),
		"critical": a.dashboard.Status(loader.DomainCritical),
		"account":  a.dashboard.Status(loader.DomainAccount),
		"pool":     a.dashboard.Status(loader.DomainPool),
	})
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	// Raw keystrokes land here; the debouncer coalesces them into one
	// trailing reload per quiet window.
	a.dashboard.SetSearch(r.URL.Query().Get("q"))
	w.WriteHeader(http.StatusAccepted)
}

func (a *App) handleGranularity(w http.ResponseWriter, r *http.Request) {
	g := metrics.Granularity(r.URL.Query().Get("g"))
	if err := a.dashboard.SetGranularity(r.Context(), g); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleGrouping(w http.ResponseWriter, r *http.Request) {
	g := metrics.Granularity(r.URL.Query().Get("g"))
	if err := a.dashboard.SetGrouping(r.Context(), g); err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleActorSwitch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}
	a.dashboard.SetActor(id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	if err := a.dashboard.LoadQueue(r.Context(), false); err != nil {
		a.log.Warn("export load: %v", err)
	}
	agg, _ := a.dashboard.QueueView()
	if agg == nil {
		httpError(w, http.StatusServiceUnavailable, errNoAggregates)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="dispatch-report.xlsx"`)
	if err := a.reports.WriteDashboardReport(w, agg); err != nil {
		a.log.Error("export failed: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
	}
}

func httpError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
