package handler

import (
	"net/http"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/service"
	"github.com/dukerupert/shoplist/internal/websocket"
)

type ListHandler struct {
	svc *service.Service
	notifier
}

func NewListHandler(svc *service.Service, hub *websocket.Hub) *ListHandler {
	return &ListHandler{svc: svc, notifier: notifier{hub: hub}}
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateListInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	list, err := h.svc.CreateList(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("list", "created", list.ID))
	writeJSON(w, http.StatusCreated, list)
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	lists, err := h.svc.ListLists(auth.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	list, err := h.svc.GetList(auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req service.UpdateListInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	list, err := h.svc.UpdateList(userID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("list", "updated", list.ID))
	writeJSON(w, http.StatusOK, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.svc.DeleteList(userID, id); err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("list", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

// Items returns the list's items with expected prices, optionally for one
// store only.
func (h *ListHandler) Items(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	storeID, err := queryInt64(r, "store_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	items, err := h.svc.GetListItems(auth.UserID(r.Context()), id, storeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req service.AddItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	item, err := h.svc.AddItem(userID, id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("list_item", "added", item.ID).InList(id))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ListHandler) Total(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	total, err := h.svc.GetListTotal(auth.UserID(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}
