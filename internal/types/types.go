package types

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Sale is one transaction row parsed from the sales CSV.
type Sale struct {
	Date      time.Time
	Money     float64
	Product   string
	Hour      int
	TimeOfDay string
	Weekday   string
	MonthName string
}

// Filter restricts aggregations to a date range and a product set.
// Zero From/To mean unbounded; an empty Products slice means all products.
type Filter struct {
	From     time.Time
	To       time.Time
	Products []string
}

// Metrics holds the KPI block shown at the top of the dashboard.
type Metrics struct {
	TotalSales    float64 `json:"totalSales"`
	Transactions  int     `json:"transactions"`
	AverageTicket float64 `json:"averageTicket"`
	TopProduct    string  `json:"topProduct"`
}

// SeriesPoint is one bucket of an aggregated sales series.
type SeriesPoint struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// DatasetState describes the outcome of the last CSV import.
type DatasetState struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Rows      int       `json:"rows"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Response represents an API response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Rows    int    `json:"rows,omitempty"`
}

// WSMessage represents a WebSocket message sent to browsers
type WSMessage struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Dataset *DatasetState `json:"dataset,omitempty"`
	Metrics *Metrics      `json:"metrics,omitempty"`
}

// WSClientMessage represents a message from a browser to the server
type WSClientMessage struct {
	Action string `json:"action"`
}

// WSClient represents a connected WebSocket client with its write lock
type WSClient struct {
	ID   string
	Conn *websocket.Conn
	Mu   sync.Mutex
}
