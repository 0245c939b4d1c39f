package state

import (
	"path/filepath"
	"testing"

	"coffee-dashboard/internal/store"
)

func TestDatasetState(t *testing.T) {
	SetDatasetState("loaded", "Imported 10 sales", 10)

	ds := GetDatasetState()
	if ds.Status != "loaded" {
		t.Errorf("Expected status 'loaded', got '%s'", ds.Status)
	}

	if ds.Rows != 10 {
		t.Errorf("Expected 10 rows, got %d", ds.Rows)
	}

	if ds.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestSetStoreReturnsPrevious(t *testing.T) {
	defer SetStore(nil)

	first, err := store.Open(filepath.Join(t.TempDir(), "first.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer first.Close()

	if old := SetStore(first); old != nil {
		t.Error("Expected no previous store")
	}

	second, err := store.Open(filepath.Join(t.TempDir(), "second.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer second.Close()

	if old := SetStore(second); old != first {
		t.Error("Expected SetStore to return the replaced store")
	}

	if GetStore() != second {
		t.Error("Expected GetStore to return the new store")
	}
}
