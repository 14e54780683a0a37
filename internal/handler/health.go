package handler

import (
	"net/http"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/service"
)

type HealthHandler struct {
	svc *service.Service
}

func NewHealthHandler(svc *service.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.svc.DBHealthCheck(r.Context())
	status := http.StatusOK
	if health.Status != database.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
