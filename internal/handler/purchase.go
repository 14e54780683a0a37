package handler

import (
	"net/http"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/service"
	"github.com/dukerupert/shoplist/internal/websocket"
)

type PurchaseHandler struct {
	svc *service.Service
	notifier
}

func NewPurchaseHandler(svc *service.Service, hub *websocket.Hub) *PurchaseHandler {
	return &PurchaseHandler{svc: svc, notifier: notifier{hub: hub}}
}

// History lists purchases between the optional start and end dates.
func (h *PurchaseHandler) History(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.GetUserPurchases(auth.UserID(r.Context()), dateRange(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *PurchaseHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	records, err := h.svc.RecentPurchases(auth.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *PurchaseHandler) UpdateDate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req service.UpdatePurchaseDateInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	p, err := h.svc.UpdatePurchaseDate(userID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("purchase", "updated", p.ID))
	writeJSON(w, http.StatusOK, p)
}
