package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the dispatch lifecycle state of an order
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "created"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusEnRoute    OrderStatus = "en_route"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCanceled   OrderStatus = "canceled"
	OrderStatusClientCXL  OrderStatus = "cancelled_by_client"
	OrderStatusCourierCXL OrderStatus = "cancelled_by_courier"
	OrderStatusRejected   OrderStatus = "rejected"
	OrderStatusExpired    OrderStatus = "expired"
)

// Urgency represents the dispatch priority of an order
type Urgency string

const (
	UrgencyCritical  Urgency = "critical"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyStandard  Urgency = "standard"
	UrgencyScheduled Urgency = "scheduled"
)

// OrderRecord is a single marketplace order as read from the data layer
type OrderRecord struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Status      OrderStatus `json:"status" db:"status"`
	ServiceType string      `json:"service_type" db:"service_type"`
	Area        string      `json:"area" db:"area"`
	Urgency     Urgency     `json:"urgency" db:"urgency"`
	CourierID   *uuid.UUID  `json:"courier_id,omitempty" db:"courier_id"`
	CourierName string      `json:"courier_name,omitempty" db:"courier_name"`
	Price       float64     `json:"price" db:"price"`
	Commission  float64     `json:"commission" db:"commission"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
}

// IsTerminalCancel reports whether the status belongs to the canceled
// family. Funnel counting treats all raw cancel variants as one stage.
func (o OrderRecord) IsTerminalCancel() bool {
	switch o.Status {
	case OrderStatusCanceled, OrderStatusClientCXL, OrderStatusCourierCXL,
		OrderStatusRejected, OrderStatusExpired:
		return true
	}
	return false
}

// FinancialSummary holds the account-level earnings snapshot for an actor
type FinancialSummary struct {
	ActorID         uuid.UUID `json:"actor_id" db:"actor_id"`
	Balance         float64   `json:"balance" db:"balance"`
	PendingPayout   float64   `json:"pending_payout" db:"pending_payout"`
	LifetimeRevenue float64   `json:"lifetime_revenue" db:"lifetime_revenue"`
	LifetimeOrders  int       `json:"lifetime_orders" db:"lifetime_orders"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// BalanceTransaction is a single ledger movement on an actor's balance
type BalanceTransaction struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ActorID   uuid.UUID `json:"actor_id" db:"actor_id"`
	Kind      string    `json:"kind" db:"kind"`
	Amount    float64   `json:"amount" db:"amount"`
	Reference string    `json:"reference" db:"reference"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
