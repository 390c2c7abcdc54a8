package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ActorID   ID
	OrderID   ID
	CourierID ID
)

// String conversions for domain IDs
func (id ActorID) String() string   { return ID(id).String() }
func (id OrderID) String() string   { return ID(id).String() }
func (id CourierID) String() string { return ID(id).String() }

// UUID returns the actor ID as a uuid.UUID, or uuid.Nil when malformed
func (id ActorID) UUID() uuid.UUID {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return uuid.Nil
	}
	return u
}

// ParseActorID parses a string into ActorID
func ParseActorID(s string) (ActorID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("actor ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("actor ID must be a UUID: %w", err)
	}
	return ActorID(s), nil
}

// ParseOrderID parses a string into OrderID
func ParseOrderID(s string) (OrderID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("order ID cannot be empty")
	}
	return OrderID(s), nil
}
