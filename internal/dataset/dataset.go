// Package dataset reads the sales CSV and feeds the imported snapshot into
// the store, notifying websocket clients of every state change.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"coffee-dashboard/internal/state"
	"coffee-dashboard/internal/types"
	"coffee-dashboard/internal/websocket"
)

const dateLayout = "2006-01-02"

// Columns the CSV must provide, matched by header name.
var requiredColumns = []string{
	"Date", "money", "coffee_name", "hour_of_day", "Time_of_Day", "Weekday", "Month_name",
}

// Load parses the sales CSV at path. Malformed rows are skipped with a
// counted warning; a missing file or header is an error.
func Load(path string) ([]types.Sale, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sales file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("sales file is missing column %q", col)
		}
	}

	var sales []types.Sale
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		sale, err := parseRecord(record, index)
		if err != nil {
			skipped++
			continue
		}
		sales = append(sales, sale)
	}

	if skipped > 0 {
		logrus.WithFields(logrus.Fields{
			"file":    path,
			"skipped": skipped,
		}).Warn("Skipped malformed rows in sales file")
	}

	logrus.WithFields(logrus.Fields{
		"file": path,
		"rows": len(sales),
	}).Info("Loaded sales file")

	return sales, nil
}

func parseRecord(record []string, index map[string]int) (types.Sale, error) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := time.Parse(dateLayout, field("Date"))
	if err != nil {
		return types.Sale{}, fmt.Errorf("parsing date: %w", err)
	}

	money, err := strconv.ParseFloat(field("money"), 64)
	if err != nil {
		return types.Sale{}, fmt.Errorf("parsing money: %w", err)
	}

	hour, err := strconv.Atoi(field("hour_of_day"))
	if err != nil {
		return types.Sale{}, fmt.Errorf("parsing hour: %w", err)
	}

	product := field("coffee_name")
	if product == "" {
		return types.Sale{}, fmt.Errorf("empty coffee_name")
	}

	return types.Sale{
		Date:      date,
		Money:     money,
		Product:   product,
		Hour:      hour,
		TimeOfDay: field("Time_of_Day"),
		Weekday:   field("Weekday"),
		MonthName: field("Month_name"),
	}, nil
}

// Reload re-imports the CSV at path into the active store and broadcasts the
// resulting dataset state to all websocket clients.
func Reload(path string) error {
	state.SetDatasetState("loading", fmt.Sprintf("Importing %s...", path), 0)
	websocket.BroadcastDatasetState()

	sales, err := Load(path)
	if err != nil {
		logrus.WithError(err).WithField("file", path).Error("Dataset load failed")
		state.SetDatasetState("error", fmt.Sprintf("Import failed: %v", err), 0)
		websocket.BroadcastDatasetState()
		return err
	}

	s := state.GetStore()
	if s == nil {
		err := fmt.Errorf("sales store is not initialized")
		state.SetDatasetState("error", err.Error(), 0)
		websocket.BroadcastDatasetState()
		return err
	}

	if err := s.ImportSales(sales); err != nil {
		logrus.WithError(err).Error("Dataset import failed")
		state.SetDatasetState("error", fmt.Sprintf("Import failed: %v", err), 0)
		websocket.BroadcastDatasetState()
		return err
	}

	state.SetDatasetState("loaded", fmt.Sprintf("Imported %d sales", len(sales)), len(sales))
	websocket.BroadcastDatasetState()
	return nil
}
