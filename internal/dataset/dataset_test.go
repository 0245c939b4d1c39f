package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"coffee-dashboard/internal/state"
	"coffee-dashboard/internal/store"
)

const sampleCSV = `Date,money,coffee_name,hour_of_day,Time_of_Day,Weekday,Month_name
2024-03-01,38.7,Latte,10,Morning,Fri,Mar
2024-03-01,28.9,Americano,14,Afternoon,Fri,Mar
2024-03-02,38.7,Latte,19,Night,Sat,Mar
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	sales, err := Load(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("Failed to load sales: %v", err)
	}

	if len(sales) != 3 {
		t.Fatalf("Expected 3 sales, got %d", len(sales))
	}

	first := sales[0]
	if first.Product != "Latte" {
		t.Errorf("Expected product 'Latte', got '%s'", first.Product)
	}
	if first.Money != 38.7 {
		t.Errorf("Expected money 38.7, got %f", first.Money)
	}
	if first.Hour != 10 {
		t.Errorf("Expected hour 10, got %d", first.Hour)
	}
	if first.Date.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("Unexpected date: %v", first.Date)
	}
	if first.TimeOfDay != "Morning" || first.Weekday != "Fri" || first.MonthName != "Mar" {
		t.Errorf("Unexpected bucket fields: %+v", first)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	csv := sampleCSV +
		"not-a-date,1.0,Latte,10,Morning,Fri,Mar\n" +
		"2024-03-03,not-a-number,Latte,10,Morning,Sun,Mar\n" +
		"2024-03-03,5.0,,10,Morning,Sun,Mar\n"

	sales, err := Load(writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Failed to load sales: %v", err)
	}

	if len(sales) != 3 {
		t.Errorf("Expected 3 valid sales, got %d", len(sales))
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadMissingColumn(t *testing.T) {
	csv := "Date,money,hour_of_day,Time_of_Day,Weekday,Month_name\n2024-03-01,38.7,10,Morning,Fri,Mar\n"

	if _, err := Load(writeCSV(t, csv)); err == nil {
		t.Error("Expected error for missing coffee_name column")
	}
}

func TestReload(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()
	defer state.SetStore(nil)
	state.SetStore(s)

	if err := Reload(writeCSV(t, sampleCSV)); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	ds := state.GetDatasetState()
	if ds.Status != "loaded" {
		t.Errorf("Expected status 'loaded', got '%s'", ds.Status)
	}
	if ds.Rows != 3 {
		t.Errorf("Expected 3 rows, got %d", ds.Rows)
	}
}

func TestReloadMissingFileSetsErrorState(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()
	defer state.SetStore(nil)
	state.SetStore(s)

	if err := Reload(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("Expected error for missing file")
	}

	ds := state.GetDatasetState()
	if ds.Status != "error" {
		t.Errorf("Expected status 'error', got '%s'", ds.Status)
	}
}
