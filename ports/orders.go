package ports

import (
	"context"
	"time"

	"dispatchboard/models"

	"github.com/google/uuid"
)

// OrderFilter narrows an order fetch. Zero values mean "no constraint".
type OrderFilter struct {
	From        time.Time
	To          time.Time
	Status      models.OrderStatus
	ServiceType string
	Area        string
	Urgency     models.Urgency
	Search      string
	Limit       int
}

// OrderReader defines the interface for order data access
type OrderReader interface {
	// FetchOrders returns orders matching the filter, newest first
	FetchOrders(ctx context.Context, filter OrderFilter) ([]models.OrderRecord, error)
}

// FinanceReader defines the interface for earnings data access
type FinanceReader interface {
	// FetchFinancialSummary returns the account-level earnings snapshot
	FetchFinancialSummary(ctx context.Context, actorID uuid.UUID) (*models.FinancialSummary, error)

	// FetchBalanceTransactions returns the most recent ledger movements
	FetchBalanceTransactions(ctx context.Context, actorID uuid.UUID, limit int) ([]models.BalanceTransaction, error)
}
