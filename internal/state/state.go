package state

import (
	"sync"
	"time"

	"coffee-dashboard/internal/store"
	"coffee-dashboard/internal/types"
)

// ServerState holds the global server state
type ServerState struct {
	DatasetStatus    string
	DatasetMessage   string
	DatasetRows      int
	DatasetUpdatedAt time.Time
	mutex            sync.RWMutex
}

var globalState = &ServerState{
	DatasetStatus:    "unknown",
	DatasetMessage:   "Waiting for first import...",
	DatasetUpdatedAt: time.Now(),
}

var (
	currentStore *store.Store
	storeMutex   sync.RWMutex
)

// GetDatasetState returns the current dataset import state
func GetDatasetState() types.DatasetState {
	globalState.mutex.RLock()
	defer globalState.mutex.RUnlock()
	return types.DatasetState{
		Status:    globalState.DatasetStatus,
		Message:   globalState.DatasetMessage,
		Rows:      globalState.DatasetRows,
		UpdatedAt: globalState.DatasetUpdatedAt,
	}
}

// SetDatasetState updates the dataset import state
func SetDatasetState(status, message string, rows int) {
	globalState.mutex.Lock()
	defer globalState.mutex.Unlock()
	globalState.DatasetStatus = status
	globalState.DatasetMessage = message
	globalState.DatasetRows = rows
	globalState.DatasetUpdatedAt = time.Now()
}

// GetStore returns the active sales store, or nil before initialization
func GetStore() *store.Store {
	storeMutex.RLock()
	defer storeMutex.RUnlock()
	return currentStore
}

// SetStore replaces the active sales store and returns the previous one so
// the caller can close it
func SetStore(s *store.Store) *store.Store {
	storeMutex.Lock()
	defer storeMutex.Unlock()
	old := currentStore
	currentStore = s
	return old
}
