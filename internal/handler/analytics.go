package handler

import (
	"net/http"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/service"
)

type AnalyticsHandler struct {
	svc *service.Service
}

func NewAnalyticsHandler(svc *service.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.CategorySpending(auth.UserID(r.Context()), dateRange(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AnalyticsHandler) Stores(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.StoreSpending(auth.UserID(r.Context()), dateRange(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *AnalyticsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	month, err := queryInt(r, "month")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := h.svc.MonthlySpending(auth.UserID(r.Context()), service.MonthInput{Year: year, Month: month})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
