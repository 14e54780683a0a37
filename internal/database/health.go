package database

import (
	"context"
	"database/sql"
	"math"
	"time"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Health describes database connectivity for a status indicator. It is not
// meant for control flow.
type Health struct {
	Status      string   `json:"status"`
	Type        string   `json:"type"`
	LatencyMs   *float64 `json:"latency_ms,omitempty"`
	Error       string   `json:"error,omitempty"`
	Environment string   `json:"environment,omitempty"`
}

// HealthCheck runs a trivial query and measures its round trip.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) Health {
	h := Health{Type: Type}
	if db == nil {
		h.Status = StatusUnhealthy
		h.Error = "database not initialised"
		return h
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		h.Status = StatusUnhealthy
		h.Error = err.Error()
		return h
	}
	latency := math.Round(float64(time.Since(start).Microseconds())/10) / 100
	h.Status = StatusHealthy
	h.LatencyMs = &latency
	return h
}
