package core

import (
	"errors"
	"testing"
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

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestNewRenderID(t *testing.T) {
	a, b := NewRenderID(), NewRenderID()
	if a == b {
		t.Errorf("Expected distinct render IDs, got %s twice", a)
	}
}

// TestParseDatasetID tests dataset ID parsing
func TestParseDatasetID(t *testing.T) {
	tests := []struct {
		input    string
		expected DatasetID
		hasError bool
	}{
		{"ocarbon", DatasetID("ocarbon"), false},
		{"  soilgrid_corr  ", DatasetID("soilgrid_corr"), false},
		{"", "", true},
		{"   ", "", true},
		{"data/ocarbon", "", true},
	}

	for _, test := range tests {
		result, err := ParseDatasetID(test.input)
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

func TestErrorHelpers(t *testing.T) {
	err := NewDataUnavailableError("ocarbon", errors.New("open data/ocarbon.parquet: no such file"))
	if !IsDataUnavailable(err) {
		t.Errorf("Expected %v to be a data-unavailable error", err)
	}
	if IsCalculationError(err) {
		t.Errorf("Did not expect %v to be a calculation error", err)
	}

	colErr := NewColumnNotFoundError("ocarbon", "avg_oc")
	if !errors.Is(colErr, ErrColumnNotFound) || !IsCalculationError(colErr) {
		t.Errorf("Expected %v to wrap ErrColumnNotFound", colErr)
	}
	if colErr.Error() != "column not found: ocarbon.avg_oc" {
		t.Errorf("Unexpected message: %s", colErr.Error())
	}
}
