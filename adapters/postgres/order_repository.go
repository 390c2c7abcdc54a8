package postgres

import (
	"context"
	"fmt"
	"strings"

	"dispatchboard/models"
	"dispatchboard/ports"

	"github.com/jmoiron/sqlx"
)

// defaultOrderLimit caps unbounded order fetches so an admin query can
// never drag the whole table across the wire.
const defaultOrderLimit = 5000

// OrderRepositoryImpl implements OrderReader for PostgreSQL
type OrderRepositoryImpl struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new PostgreSQL order reader
func NewOrderRepository(db *sqlx.DB) ports.OrderReader {
	return &OrderRepositoryImpl{db: db}
}

// FetchOrders returns orders matching the filter, newest first
func (r *OrderRepositoryImpl) FetchOrders(ctx context.Context, filter ports.OrderFilter) ([]models.OrderRecord, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT o.id, o.status, o.service_type, o.area, o.urgency,
		       o.courier_id, COALESCE(c.display_name, '') AS courier_name,
		       o.price, o.commission, o.created_at, o.completed_at
		FROM orders o
		LEFT JOIN couriers c ON c.id = o.courier_id
	`)

	var clauses []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !filter.From.IsZero() {
		clauses = append(clauses, "o.created_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "o.created_at < "+arg(filter.To))
	}
	if filter.Status != "" {
		clauses = append(clauses, "o.status = "+arg(string(filter.Status)))
	}
	if filter.ServiceType != "" {
		clauses = append(clauses, "o.service_type = "+arg(filter.ServiceType))
	}
	if filter.Area != "" {
		clauses = append(clauses, "o.area = "+arg(filter.Area))
	}
	if filter.Urgency != "" {
		clauses = append(clauses, "o.urgency = "+arg(string(filter.Urgency)))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		clauses = append(clauses, fmt.Sprintf(
			"(o.service_type ILIKE %s OR o.area ILIKE %s OR COALESCE(c.display_name, '') ILIKE %s)",
			arg(pattern), arg(pattern), arg(pattern)))
	}
	if len(clauses) > 0 {
		query.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}

	limit := filter.Limit
	if limit <= 0 || limit > defaultOrderLimit {
		limit = defaultOrderLimit
	}
	query.WriteString(" ORDER BY o.created_at DESC LIMIT " + arg(limit))

	var orders []models.OrderRecord
	if err := r.db.SelectContext(ctx, &orders, query.String(), args...); err != nil {
		return nil, err
	}
	return orders, nil
}
