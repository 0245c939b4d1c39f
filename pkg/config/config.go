package config

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"gopkg.in/yaml.v3"

	"coffee-dashboard/internal/types"
)

// Defaults used when no config file is present. The server needs no flags
// or environment variables to start.
const (
	DefaultListenAddr = ":8080"
	DefaultDataFile   = "data/coffee_sales.csv"
	DefaultDBFile     = "data/dashboard.db"
	DefaultPageTitle  = "Coffee Sales Dashboard"
	ConfigFile        = "dashboard.yaml"
)

// Config holds the server settings loaded from the optional YAML file.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DataFile   string `yaml:"data_file"`
	DBFile     string `yaml:"db_file"`
	PageTitle  string `yaml:"page_title"`
}

// Global variables for the application
var (
	current      = defaults()
	currentMutex sync.RWMutex

	// WebSocket management
	wsClients      = make(map[*types.WSClient]bool)
	wsClientsMutex sync.RWMutex
	upgrader       = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins for development
		},
	}
)

func defaults() Config {
	return Config{
		ListenAddr: DefaultListenAddr,
		DataFile:   DefaultDataFile,
		DBFile:     DefaultDBFile,
		PageTitle:  DefaultPageTitle,
	}
}

// Load reads the YAML config file at path. A missing file is not an error:
// the defaults are returned unchanged.
func Load(path string) (Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return defaults(), fmt.Errorf("parsing config file: %w", err)
	}

	// Empty fields fall back to the defaults.
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.DataFile == "" {
		cfg.DataFile = DefaultDataFile
	}
	if cfg.DBFile == "" {
		cfg.DBFile = DefaultDBFile
	}
	if cfg.PageTitle == "" {
		cfg.PageTitle = DefaultPageTitle
	}

	return cfg, nil
}

// Current returns the active configuration (thread-safe).
func Current() Config {
	currentMutex.RLock()
	defer currentMutex.RUnlock()
	return current
}

// SetCurrent replaces the active configuration (thread-safe).
func SetCurrent(cfg Config) {
	currentMutex.Lock()
	current = cfg
	currentMutex.Unlock()
}

// GetWSClients returns a copy of the WebSocket clients map (thread-safe)
func GetWSClients() map[*types.WSClient]bool {
	wsClientsMutex.RLock()
	defer wsClientsMutex.RUnlock()

	clients := make(map[*types.WSClient]bool)
	for k, v := range wsClients {
		clients[k] = v
	}
	return clients
}

// AddWSClient adds a WebSocket client to the global map (thread-safe)
func AddWSClient(client *types.WSClient) {
	wsClientsMutex.Lock()
	wsClients[client] = true
	wsClientsMutex.Unlock()
}

// RemoveWSClient removes a WebSocket client from the global map (thread-safe)
func RemoveWSClient(client *types.WSClient) {
	wsClientsMutex.Lock()
	delete(wsClients, client)
	wsClientsMutex.Unlock()
}

// GetWSMutex returns the WebSocket clients mutex
func GetWSMutex() *sync.RWMutex {
	return &wsClientsMutex
}

// GetUpgrader returns the WebSocket upgrader
func GetUpgrader() websocket.Upgrader {
	return upgrader
}
