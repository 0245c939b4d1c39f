package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"coffee-dashboard/internal/dataset"
	"coffee-dashboard/internal/handlers"
	"coffee-dashboard/internal/state"
	"coffee-dashboard/internal/store"
	"coffee-dashboard/internal/websocket"
	"coffee-dashboard/pkg/config"
	"coffee-dashboard/web"
)

// watchDataFile polls the sales CSV and re-imports it when its mtime changes.
func watchDataFile(path string) {
	var lastModTime time.Time
	if info, err := os.Stat(path); err == nil {
		lastModTime = info.ModTime()
	}

	for {
		time.Sleep(2 * time.Second)

		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.ModTime().After(lastModTime) {
			logrus.WithFields(logrus.Fields{
				"file":    path,
				"modTime": info.ModTime(),
			}).Info("Sales file changed, reloading dataset")

			lastModTime = info.ModTime()
			if err := dataset.Reload(path); err != nil {
				logrus.WithError(err).Error("Dataset reload failed")
			}
		}
	}
}

func main() {

	// Configure logrus
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Load the optional config file, defaults otherwise
	cfg, err := config.Load(config.ConfigFile)
	if err != nil {
		logrus.Fatal(err)
	}
	config.SetCurrent(cfg)

	// Create the data directory for the CSV and the sqlite snapshot
	if err := os.MkdirAll(filepath.Dir(cfg.DBFile), 0755); err != nil {
		logrus.Fatal(err)
	}

	// Open the sales store
	s, err := store.Open(cfg.DBFile)
	if err != nil {
		logrus.Fatal(err)
	}
	state.SetStore(s)

	// Initial import. A missing CSV is not fatal: the dashboard renders with
	// empty aggregates and the state endpoint reports the error.
	if err := dataset.Reload(cfg.DataFile); err != nil {
		logrus.WithError(err).Warn("Initial dataset import failed")
	}

	// Watch the sales file for changes
	go watchDataFile(cfg.DataFile)

	// Serve embedded static assets (stylesheet, front-end script)
	staticFS := http.FileServer(http.FS(web.Static))
	http.Handle("/static/", staticFS)

	// JSON API
	http.HandleFunc("/api/state", handlers.StateHandler)
	http.HandleFunc("/api/reload", handlers.ReloadHandler)
	http.HandleFunc("/api/metrics", handlers.MetricsHandler)
	http.HandleFunc("/api/products", handlers.ProductsHandler)
	http.HandleFunc("/api/sales/by-product", handlers.SalesByProductHandler)
	http.HandleFunc("/api/sales/by-hour", handlers.SalesByHourHandler)
	http.HandleFunc("/api/sales/by-time-of-day", handlers.SalesByTimeOfDayHandler)
	http.HandleFunc("/api/sales/by-weekday", handlers.SalesByWeekdayHandler)
	http.HandleFunc("/api/sales/by-month", handlers.SalesByMonthHandler)
	http.HandleFunc("/api/sales/daily", handlers.DailySalesHandler)
	http.HandleFunc("/api/sales/monthly", handlers.MonthlySalesHandler)

	// WebSocket for live dataset updates
	http.HandleFunc("/ws", websocket.WSHandler)

	// Dashboard page (catch-all, unknown paths get a 404)
	http.HandleFunc("/", handlers.HomeHandler)

	logrus.WithFields(logrus.Fields{
		"addr":     cfg.ListenAddr,
		"dataFile": cfg.DataFile,
	}).Info("Coffee sales dashboard listening")
	logrus.Fatal(http.ListenAndServe(cfg.ListenAddr, nil))
}
