package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"coffee-dashboard/internal/dataset"
	"coffee-dashboard/internal/state"
	"coffee-dashboard/internal/store"
	"coffee-dashboard/internal/types"
	"coffee-dashboard/pkg/config"
)

const dateLayout = "2006-01-02"

// parseFilter reads the from/to/product query parameters shared by all
// aggregation endpoints.
func parseFilter(r *http.Request) (types.Filter, error) {
	var f types.Filter
	q := r.URL.Query()

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q, expected YYYY-MM-DD", v)
		}
		f.From = t
	}

	if v := q.Get("to"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q, expected YYYY-MM-DD", v)
		}
		f.To = t
	}

	f.Products = q["product"]
	return f, nil
}

// MetricsHandler returns the KPI block for the filtered dataset
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s := state.GetStore()
	if s == nil {
		sendError(w, "Sales store is not ready", http.StatusServiceUnavailable)
		return
	}

	m, err := s.Metrics(f)
	if err != nil {
		logrus.WithError(err).Error("Failed to compute metrics")
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(w, m)
}

// ProductsHandler returns the distinct product names for the filter UI
func ProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := state.GetStore()
	if s == nil {
		sendError(w, "Sales store is not ready", http.StatusServiceUnavailable)
		return
	}

	products, err := s.Products()
	if err != nil {
		logrus.WithError(err).Error("Failed to list products")
		sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if products == nil {
		products = []string{}
	}
	sendJSON(w, products)
}

// seriesHandler builds a handler around one store aggregation query.
func seriesHandler(name string, query func(*store.Store, types.Filter) ([]types.SeriesPoint, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		f, err := parseFilter(r)
		if err != nil {
			sendError(w, err.Error(), http.StatusBadRequest)
			return
		}

		s := state.GetStore()
		if s == nil {
			sendError(w, "Sales store is not ready", http.StatusServiceUnavailable)
			return
		}

		series, err := query(s, f)
		if err != nil {
			logrus.WithError(err).WithField("series", name).Error("Failed to compute sales series")
			sendError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if series == nil {
			series = []types.SeriesPoint{}
		}
		sendJSON(w, series)
	}
}

// Aggregation endpoints, one per dashboard chart.
var (
	SalesByProductHandler   = seriesHandler("by-product", (*store.Store).SalesByProduct)
	SalesByHourHandler      = seriesHandler("by-hour", (*store.Store).SalesByHour)
	SalesByTimeOfDayHandler = seriesHandler("by-time-of-day", (*store.Store).SalesByTimeOfDay)
	SalesByWeekdayHandler   = seriesHandler("by-weekday", (*store.Store).SalesByWeekday)
	SalesByMonthHandler     = seriesHandler("by-month", (*store.Store).SalesByMonth)
	DailySalesHandler       = seriesHandler("daily", (*store.Store).DailySales)
	MonthlySalesHandler     = seriesHandler("monthly", (*store.Store).MonthlySales)
)

// StateHandler returns the dataset import state
func StateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sendJSON(w, state.GetDatasetState())
}

// ReloadHandler forces a re-import of the sales CSV
func ReloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := config.Current().DataFile
	logrus.WithField("file", path).Info("Manual dataset reload requested")

	if err := dataset.Reload(path); err != nil {
		sendError(w, fmt.Sprintf("Reload failed: %v", err), http.StatusInternalServerError)
		return
	}

	ds := state.GetDatasetState()
	sendSuccess(w, ds.Message, ds.Rows)
}
