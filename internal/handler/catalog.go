package handler

import (
	"net/http"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/service"
	"github.com/dukerupert/shoplist/internal/websocket"
)

type CatalogHandler struct {
	svc *service.Service
	notifier
}

func NewCatalogHandler(svc *service.Service, hub *websocket.Hub) *CatalogHandler {
	return &CatalogHandler{svc: svc, notifier: notifier{hub: hub}}
}

// displayView reports whether the caller asked for the name-deduplicated
// view.
func displayView(r *http.Request) bool {
	return r.URL.Query().Get("view") == "display"
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	list := h.svc.ListCategories
	if displayView(r) {
		list = h.svc.DisplayCategories
	}

	categories, err := list(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCategoryInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	c, err := h.svc.CreateCategory(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("category", "created", c.ID))
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) Stores(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	list := h.svc.ListStores
	if displayView(r) {
		list = h.svc.DisplayStores
	}

	stores, err := list(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stores)
}

func (h *CatalogHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req service.CreateStoreInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	st, err := h.svc.CreateStore(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("store", "created", st.ID))
	writeJSON(w, http.StatusCreated, st)
}

// CleanDuplicateStores merges the caller's stores that share a name.
func (h *CatalogHandler) CleanDuplicateStores(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	res, err := h.svc.CleanDuplicateStores(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Cleaned > 0 {
		h.notify(userID, websocket.NewMessage("store", "deduplicated", 0))
	}
	writeJSON(w, http.StatusOK, res)
}

// Items lists the catalog. With q it searches the caller's own items by
// name instead.
func (h *CatalogHandler) Items(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if q := r.URL.Query().Get("q"); q != "" {
		items, err := h.svc.SearchItems(userID, q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
		return
	}

	categoryID, err := queryInt64(r, "category_id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	items, err := h.svc.ListItems(userID, categoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req service.CreateItemInput
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.UserID(r.Context())
	item, err := h.svc.CreateItem(userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	h.notify(userID, websocket.NewMessage("item", "created", item.ID))
	writeJSON(w, http.StatusCreated, item)
}
