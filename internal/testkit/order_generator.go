package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"dispatchboard/models"

	"github.com/google/uuid"
)

// OrderGeneratorConfig configures the synthetic order generator
type OrderGeneratorConfig struct {
	OrderCount   int       `json:"order_count"`
	CourierCount int       `json:"courier_count"`
	MeanPrice    float64   `json:"mean_price"`
	PriceSpread  float64   `json:"price_spread"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Seed         int64     `json:"seed"`
}

// DefaultOrderConfig returns sensible defaults for synthetic order data
func DefaultOrderConfig() OrderGeneratorConfig {
	return OrderGeneratorConfig{
		OrderCount:   500,
		CourierCount: 12,
		MeanPrice:    150,
		PriceSpread:  60,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:         42,
	}
}

// OrderGenerator produces deterministic marketplace order fixtures. The
// same seed always yields the same records, so tests over aggregates can
// assert exact counts.
type OrderGenerator struct {
	config   OrderGeneratorConfig
	rng      *rand.Rand
	couriers []courier
}

type courier struct {
	id   uuid.UUID
	name string
}

var (
	serviceTypes = []string{"courier", "grocery", "pharmacy", "documents", "fragile"}
	areas        = []string{"center", "north", "south", "east", "west", "airport"}
	urgencies    = []models.Urgency{
		models.UrgencyStandard, models.UrgencyStandard, models.UrgencyStandard,
		models.UrgencyUrgent, models.UrgencyUrgent,
		models.UrgencyCritical,
		models.UrgencyScheduled,
	}
	statuses = []models.OrderStatus{
		models.OrderStatusCompleted, models.OrderStatusCompleted,
		models.OrderStatusCompleted, models.OrderStatusCompleted,
		models.OrderStatusCreated,
		models.OrderStatusAssigned,
		models.OrderStatusEnRoute,
		models.OrderStatusCanceled,
		models.OrderStatusClientCXL,
		models.OrderStatusExpired,
	}
)

// NewOrderGenerator creates a generator with a fixed courier roster
func NewOrderGenerator(config OrderGeneratorConfig) *OrderGenerator {
	g := &OrderGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
	for i := 0; i < config.CourierCount; i++ {
		g.couriers = append(g.couriers, courier{
			id:   g.randomUUID(),
			name: fmt.Sprintf("Courier %02d", i+1),
		})
	}
	return g
}

// Generate produces the configured number of order records, oldest first
func (g *OrderGenerator) Generate() []models.OrderRecord {
	records := make([]models.OrderRecord, 0, g.config.OrderCount)
	for i := 0; i < g.config.OrderCount; i++ {
		records = append(records, g.generateOrder())
	}
	return records
}

func (g *OrderGenerator) generateOrder() models.OrderRecord {
	createdAt := g.randomTimeInRange(g.config.StartDate, g.config.EndDate)
	status := statuses[g.rng.Intn(len(statuses))]

	record := models.OrderRecord{
		ID:          g.randomUUID(),
		Status:      status,
		ServiceType: serviceTypes[g.rng.Intn(len(serviceTypes))],
		Area:        areas[g.rng.Intn(len(areas))],
		Urgency:     urgencies[g.rng.Intn(len(urgencies))],
		Price:       g.randomPrice(),
		CreatedAt:   createdAt,
	}
	record.Commission = math.Round(record.Price*0.15*100) / 100

	// Anything past the created stage has a courier attached.
	if status != models.OrderStatusCreated && status != models.OrderStatusExpired {
		c := g.couriers[g.rng.Intn(len(g.couriers))]
		record.CourierID = &c.id
		record.CourierName = c.name
	}

	if status == models.OrderStatusCompleted {
		completedAt := createdAt.Add(time.Duration(15+g.rng.Intn(180)) * time.Minute)
		record.CompletedAt = &completedAt
	}

	return record
}

// randomPrice draws from a clamped normal so the distribution has a
// realistic central mass without negative or absurd outliers.
func (g *OrderGenerator) randomPrice() float64 {
	price := g.config.MeanPrice + g.rng.NormFloat64()*g.config.PriceSpread
	if price < 10 {
		price = 10 + g.rng.Float64()*20
	}
	return math.Round(price*100) / 100
}

func (g *OrderGenerator) randomTimeInRange(start, end time.Time) time.Time {
	window := end.Sub(start)
	if window <= 0 {
		return start
	}
	return start.Add(time.Duration(g.rng.Int63n(int64(window))))
}

// randomUUID derives IDs from the seeded stream so fixtures stay stable
func (g *OrderGenerator) randomUUID() uuid.UUID {
	var id uuid.UUID
	g.rng.Read(id[:])
	id[6] = (id[6] & 0x0f) | 0x40 // version 4
	id[8] = (id[8] & 0x3f) | 0x80 // variant
	return id
}
