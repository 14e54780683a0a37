package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dukerupert/shoplist/internal/service"
	"github.com/dukerupert/shoplist/internal/validator"
	"github.com/dukerupert/shoplist/internal/websocket"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the service error taxonomy to a status code and a message
// safe to show a user.
func writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "validation failed", "fields": verrs})
	case errors.Is(err, service.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, service.ErrDuplicateEmail):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": service.ErrUnavailable.Error()})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// queryInt64 reads an optional integer query parameter.
func queryInt64(r *http.Request, name string) (*int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", name)
	}
	return &n, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	n, err := queryInt64(r, name)
	if err != nil || n == nil {
		return 0, err
	}
	return int(*n), nil
}

// dateRange reads the optional start and end query parameters.
func dateRange(r *http.Request) service.DateRangeInput {
	var in service.DateRangeInput
	q := r.URL.Query()
	if s := q.Get("start"); s != "" {
		in.Start = &s
	}
	if s := q.Get("end"); s != "" {
		in.End = &s
	}
	return in
}

// notifier pushes change notifications to the user's open views. A nil hub
// disables it.
type notifier struct {
	hub *websocket.Hub
}

func (n notifier) notify(userID int64, msg websocket.Message) {
	if n.hub != nil {
		n.hub.Notify(userID, msg)
	}
}
