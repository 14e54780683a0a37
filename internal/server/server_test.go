package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/config"
	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/middleware"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Env:       config.EnvDevelopment,
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, cfg, logger).Router()
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

// login registers a user and returns a session token.
func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "correct horse", "name": "Shopper"}
	rec := do(t, h, "POST", "/api/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, "POST", "/api/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[struct {
		Token string `json:"token"`
	}](t, rec)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestHealth(t *testing.T) {
	h := setupRouter(t)

	rec := do(t, h, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	health := decode[map[string]any](t, rec)
	assert.Equal(t, database.StatusHealthy, health["status"])
	assert.Equal(t, config.EnvDevelopment, health["environment"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	h := setupRouter(t)

	for _, path := range []string{"/api/me", "/api/lists", "/api/purchases", "/api/analytics/categories", "/ws"} {
		rec := do(t, h, "GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := do(t, h, "GET", "/api/lists", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	h := setupRouter(t)
	creds := map[string]string{"email": "Ann@Example.com", "password": "correct horse", "name": "Ann"}

	rec := do(t, h, "POST", "/api/register", "", creds)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[map[string]any](t, rec)
	assert.Equal(t, "ann@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")

	rec = do(t, h, "POST", "/api/register", "", creds)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, "POST", "/api/login", "", map[string]string{"email": "ann@example.com", "password": "wrong password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, "POST", "/api/login", "", creds)
	require.Equal(t, http.StatusOK, rec.Code)

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session, "expected session cookie")
	assert.True(t, session.HttpOnly)

	// The cookie alone authenticates browser requests.
	req := httptest.NewRequest("GET", "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	me := httptest.NewRecorder()
	h.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)

	rec = do(t, h, "POST", "/api/logout", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	h := setupRouter(t)

	rec := do(t, h, "POST", "/api/register", "", map[string]string{"email": "nope", "password": "short", "name": "A"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	res := decode[struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}](t, rec)
	var fields []string
	for _, f := range res.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)
}

func TestMalformedRequests(t *testing.T) {
	h := setupRouter(t)
	token := login(t, h, "a@example.com")

	rec := do(t, h, "GET", "/api/lists/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/api/lists", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	rec = do(t, h, "GET", "/api/lists?limit=many", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShoppingFlow(t *testing.T) {
	h := setupRouter(t)
	token := login(t, h, "a@example.com")

	rec := do(t, h, "POST", "/api/lists", token, map[string]any{"name": "Weekly", "date": "2024-05-04"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	list := decode[struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}](t, rec)
	assert.Equal(t, "Weekly", list.Name)

	itemsPath := fmt.Sprintf("/api/lists/%d/items", list.ID)
	rec = do(t, h, "POST", itemsPath, token, map[string]any{"name": "Milk", "planned_price": 2.5, "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	added := decode[struct {
		ID int64 `json:"id"`
	}](t, rec)

	rec = do(t, h, "GET", itemsPath, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]struct {
		ItemName          string  `json:"item_name"`
		Quantity          int     `json:"quantity"`
		PriceSource       string  `json:"price_source"`
		ExpectedLineTotal float64 `json:"expected_line_total"`
	}](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].ItemName)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "planned", items[0].PriceSource)
	assert.InDelta(t, 5.0, items[0].ExpectedLineTotal, 0.001)

	rec = do(t, h, "GET", fmt.Sprintf("/api/lists/%d/total", list.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	total := decode[map[string]float64](t, rec)
	assert.InDelta(t, 5.0, total["total_price"], 0.001)
	assert.Equal(t, 1.0, total["total_items"])

	rec = do(t, h, "POST", fmt.Sprintf("/api/list-items/%d/purchases", added.ID), token, map[string]any{"actual_price": 2.25})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, "GET", "/api/purchases", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]map[string]any](t, rec)
	assert.Len(t, history, 1)

	rec = do(t, h, "GET", "/api/analytics/categories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	spending := decode[[]struct {
		Category      string  `json:"category"`
		TotalSpending float64 `json:"total_spending"`
	}](t, rec)
	require.Len(t, spending, 1)
	assert.Equal(t, "Dairy", spending[0].Category)
	assert.InDelta(t, 4.5, spending[0].TotalSpending, 0.001)

	rec = do(t, h, "DELETE", fmt.Sprintf("/api/lists/%d", list.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, "GET", fmt.Sprintf("/api/lists/%d", list.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOtherUsersListIsNotFound(t *testing.T) {
	h := setupRouter(t)
	owner := login(t, h, "owner@example.com")
	other := login(t, h, "other@example.com")

	rec := do(t, h, "POST", "/api/lists", owner, map[string]any{"name": "Private"})
	require.Equal(t, http.StatusCreated, rec.Code)
	list := decode[struct {
		ID int64 `json:"id"`
	}](t, rec)

	path := fmt.Sprintf("/api/lists/%d", list.ID)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", path, other, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "DELETE", path, other, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, "GET", path, owner, nil).Code)
}

func TestLoginRateLimited(t *testing.T) {
	h := setupRouter(t)
	creds := map[string]string{"email": "x@example.com", "password": "whatever123"}

	var last int
	for range 11 {
		last = do(t, h, "POST", "/api/login", "", creds).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}
