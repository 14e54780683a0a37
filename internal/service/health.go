package service

import (
	"context"
	"time"

	"github.com/dukerupert/shoplist/internal/database"
)

const healthTimeout = 5 * time.Second

// DBHealthCheck reports database connectivity for a status indicator.
func (s *Service) DBHealthCheck(ctx context.Context) database.Health {
	h := database.HealthCheck(ctx, s.db, healthTimeout)
	h.Environment = s.env
	if h.Status != database.StatusHealthy {
		s.logger.Warn("database health check failed", "error", h.Error)
	}
	return h
}
