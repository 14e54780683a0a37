package handler

import (
	"net/http"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/service"
	"github.com/dukerupert/shoplist/internal/websocket"
)

type ListItemHandler struct {
	svc *service.Service
	notifier
}

func NewListItemHandler(svc *service.Service, hub *websocket.Hub) *ListItemHandler {
	return &ListItemHandler{svc: svc, notifier: notifier{hub: hub}}
}

type batchRequest struct {
	IDs     []int64 `json:"ids"`
	StoreID *int64  `json:"store_id"`
}

func (h *ListItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req service.UpdateListItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	item, err := h.svc.UpdateItem(userID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("list_item", "updated", item.ID).InList(item.ShoppingListID))
	writeJSON(w, http.StatusOK, item)
}

func (h *ListItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.svc.RemoveItem(userID, id); err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("list_item", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

// BatchDelete removes the selected items. Ids that are already gone are
// skipped.
func (h *ListItemHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	res, err := h.svc.RemoveItems(userID, req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Succeeded > 0 {
		h.notify(userID, websocket.NewMessage("list_item", "deleted", 0))
	}
	writeJSON(w, http.StatusOK, res)
}

// BatchSetStore moves the selected items to store_id, or detaches them when
// it is null.
func (h *ListItemHandler) BatchSetStore(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	res, err := h.svc.SetItemsStore(userID, req.IDs, req.StoreID)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Succeeded > 0 {
		h.notify(userID, websocket.NewMessage("list_item", "updated", 0))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ListItemHandler) SuggestedPrice(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	res, err := h.svc.SuggestedPurchasePrice(auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ListItemHandler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req service.RecordPurchaseInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	p, err := h.svc.RecordPurchase(userID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("purchase", "recorded", p.ID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *ListItemHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	purchases, err := h.svc.ListPurchases(auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}
