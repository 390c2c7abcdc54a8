package container

import (
	"context"
	"fmt"

	"dispatchboard/adapters/postgres"
	"dispatchboard/adapters/postgres/migrations"
	"dispatchboard/app"
	"dispatchboard/internal"
	"dispatchboard/internal/config"
	"dispatchboard/internal/loader"
	"dispatchboard/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Log    *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	OrderRepo   ports.OrderReader
	FinanceRepo ports.FinanceReader

	// Load coordination
	Notifier  loader.TimeoutNotifier
	Dashboard *app.DashboardService
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg, Log: log}, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := migrations.NewMigrator(db.DB).Up(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.OrderRepo = postgres.NewOrderRepository(db)
	c.FinanceRepo = postgres.NewFinanceRepository(db)

	notifyLog := c.Log.With("loader")
	c.Notifier = loader.NewThrottledNotifier(c.Config.Engine.TimeoutCooldown, func(d loader.Domain) {
		notifyLog.Warn("slow data source for %s, showing last known data", d)
	})
	c.Dashboard = app.NewDashboardService(c.Log, c.OrderRepo, c.FinanceRepo, c.Config.Engine, c.Notifier)

	c.Log.Info("container initialized with database connection")
	return nil
}

// Close releases everything the container owns
func (c *Container) Close() {
	if c.Dashboard != nil {
		c.Dashboard.Close()
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Log.Warn("closing database: %v", err)
		}
	}
}
