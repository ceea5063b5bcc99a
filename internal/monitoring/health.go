package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker tracks whether a regime-streaming driver is still
// receiving bars, for a /health endpoint.
type HealthChecker struct {
	mu          sync.RWMutex
	lastBar     time.Time
	lastClose   float64
	isReceiving bool
	errors      []string
	startTime   time.Time
}

type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	LastBar     time.Time `json:"last_bar"`
	LastClose   float64   `json:"last_close"`
	IsReceiving bool      `json:"is_receiving"`
	Uptime      string    `json:"uptime"`
	Errors      []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors:    make([]string, 0),
		startTime: time.Now(),
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if !h.isReceiving || time.Since(h.lastBar) > time.Hour*24 {
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	if len(h.errors) > 0 {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:      status,
		Timestamp:   time.Now(),
		LastBar:     h.lastBar,
		LastClose:   h.lastClose,
		IsReceiving: h.isReceiving,
		Uptime:      time.Since(h.startTime).String(),
		Errors:      h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// SetReceiving marks whether the driver is actively being fed bars.
func (h *HealthChecker) SetReceiving(receiving bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isReceiving = receiving
}

// UpdateBar records the timestamp and close of the most recently
// processed bar.
func (h *HealthChecker) UpdateBar(barTime time.Time, close float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastBar = barTime
	h.lastClose = close
}

// AddError adds an error to the error list, keeping only the most
// recent 10.
func (h *HealthChecker) AddError(err string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, err)
	if len(h.errors) > 10 {
		h.errors = h.errors[len(h.errors)-10:]
	}
}
