package handlers

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"coffee-dashboard/internal/state"
	"coffee-dashboard/internal/types"
	"coffee-dashboard/pkg/config"
	"coffee-dashboard/web"
)

var indexTemplate = template.Must(template.ParseFS(web.Templates, "templates/index.html"))

// indexData is passed to the dashboard page template.
type indexData struct {
	Title   string
	Metrics types.Metrics
	Dataset types.DatasetState
}

// HomeHandler renders the dashboard page
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	// Registered on the catch-all pattern: anything but the root is a 404.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := indexData{
		Title:   config.Current().PageTitle,
		Metrics: types.Metrics{TopProduct: "N/A"},
		Dataset: state.GetDatasetState(),
	}

	if s := state.GetStore(); s != nil {
		m, err := s.Metrics(types.Filter{})
		if err != nil {
			logrus.WithError(err).Error("Failed to compute dashboard metrics")
		} else {
			data.Metrics = m
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		logrus.WithError(err).Error("Failed to render dashboard page")
	}
}

// sendError sends an error response
func sendError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(types.Response{
		Success: false,
		Message: message,
	})
}

// sendSuccess sends a success response
func sendSuccess(w http.ResponseWriter, message string, rows int) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(types.Response{
		Success: true,
		Message: message,
		Rows:    rows,
	})
}

// sendJSON encodes an arbitrary payload as a JSON response
func sendJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}
