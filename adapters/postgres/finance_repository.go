package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatchboard/domain/core"
	"dispatchboard/models"
	"dispatchboard/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// FinanceRepositoryImpl implements FinanceReader for PostgreSQL
type FinanceRepositoryImpl struct {
	db *sqlx.DB
}

// NewFinanceRepository creates a new PostgreSQL finance reader
func NewFinanceRepository(db *sqlx.DB) ports.FinanceReader {
	return &FinanceRepositoryImpl{db: db}
}

// FetchFinancialSummary returns the account-level earnings snapshot
func (r *FinanceRepositoryImpl) FetchFinancialSummary(ctx context.Context, actorID uuid.UUID) (*models.FinancialSummary, error) {
	var summary models.FinancialSummary
	err := r.db.GetContext(ctx, &summary, `
		SELECT actor_id, balance, pending_payout, lifetime_revenue,
		       lifetime_orders, updated_at
		FROM financial_summaries
		WHERE actor_id = $1
	`, actorID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("financial summary", actorID.String())
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// FetchBalanceTransactions returns the most recent ledger movements
func (r *FinanceRepositoryImpl) FetchBalanceTransactions(ctx context.Context, actorID uuid.UUID, limit int) ([]models.BalanceTransaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []models.BalanceTransaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, actor_id, kind, amount, reference, created_at
		FROM balance_transactions
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, actorID, limit)
	if err != nil {
		return nil, err
	}
	return txs, nil
}
