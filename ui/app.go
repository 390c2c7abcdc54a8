package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dispatchboard/adapters/excel"
	"dispatchboard/app"
	"dispatchboard/internal"
	"dispatchboard/internal/config"
)

// App is the JSON surface of the analytics engine: committed aggregates
// and load-lifecycle signals out, refresh/search/actor actions in.
type App struct {
	router    *chi.Mux
	dashboard *app.DashboardService
	reports   *excel.ReportWriter
	log       *internal.Logger
	port      string
}

// NewApp creates the HTTP application around a dashboard service
func NewApp(cfg config.ServerConfig, dashboard *app.DashboardService, log *internal.Logger) *App {
	a := &App{
		router:    chi.NewRouter(),
		dashboard: dashboard,
		reports:   excel.NewReportWriter(),
		log:       log.With("ui"),
		port:      cfg.Port,
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Aggregate views
	a.router.Get("/api/dashboard", a.handleDashboard)
	a.router.Get("/api/critical", a.handleCritical)
	a.router.Get("/api/account", a.handleAccount)
	a.router.Get("/api/pool", a.handlePool)

	// Actions
	a.router.Post("/api/refresh", a.handleRefresh)
	a.router.Post("/api/search", a.handleSearch)
	a.router.Post("/api/granularity", a.handleGranularity)
	a.router.Post("/api/grouping", a.handleGrouping)
	a.router.Post("/api/actor/{id}", a.handleActorSwitch)

	// Exports
	a.router.Get("/api/export.xlsx", a.handleExport)
	a.router.Get("/api/digest", a.handleDigest)
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.port
	a.log.Info("starting admin analytics server on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the handler tree for tests and embedding hosts
func (a *App) Router() http.Handler {
	return a.router
}
