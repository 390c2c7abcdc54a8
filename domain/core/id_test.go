package core

import (
	"testing"

	"github.com/google/uuid"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDString tests ID string conversion
func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	emptyID := ID("")
	if !emptyID.IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}

	nonEmptyID := ID("not-empty")
	if nonEmptyID.IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

// TestParseActorID tests actor ID parsing
func TestParseActorID(t *testing.T) {
	tests := []struct {
		input    string
		expected ActorID
		hasError bool
	}{
		{"0b81e66b-4f20-4e3a-9a5e-1b2c3d4e5f60", ActorID("0b81e66b-4f20-4e3a-9a5e-1b2c3d4e5f60"), false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseActorID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseOrderID tests order ID parsing
func TestParseOrderID(t *testing.T) {
	tests := []struct {
		input    string
		expected OrderID
		hasError bool
	}{
		{"ord-001", OrderID("ord-001"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseOrderID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestActorIDUUID tests UUID conversion for actor IDs
func TestActorIDUUID(t *testing.T) {
	id := ActorID("0b81e66b-4f20-4e3a-9a5e-1b2c3d4e5f60")
	if id.UUID().String() != string(id) {
		t.Errorf("Expected round-trip UUID, got %s", id.UUID())
	}

	malformed := ActorID("nope")
	if malformed.UUID() != uuid.Nil {
		t.Errorf("Expected uuid.Nil for malformed actor ID, got %s", malformed.UUID())
	}
}
