package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza-palace/models"
	"pizza-palace/services"
	"pizza-palace/store"
)

type testEnv struct {
	t      *testing.T
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem := store.NewMemory()
	catalog := services.NewCatalog(mem)
	_, err := store.SeedMenu(context.Background(), catalog)
	require.NoError(t, err)

	pricing := services.DefaultPricing()
	carts := services.NewCartService(mem, catalog, services.WithCartPricing(pricing))
	ledger := services.NewLedger(mem)
	checkout := services.NewCheckout(carts, ledger, pricing, 0)
	authn, err := services.NewDemoAuthenticator(services.DemoAccounts)
	require.NoError(t, err)
	auth := services.NewAuth(authn, services.NewLoginThrottle(), services.NewSessions(time.Hour))

	return &testEnv{t: t, router: NewServer(catalog, carts, checkout, ledger, auth, nil).Routes()}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(email, password string) string {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": password})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(e.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(e.t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func validCheckoutBody() map[string]any {
	return map[string]any{
		"delivery_address": map[string]string{"address": "1 Main St", "city": "Springfield", "zip_code": "12345"},
		"phone":            "555-0100",
		"payment_method":   "card",
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMenuListing(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/menu", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]models.MenuItem](t, rec)
	assert.Len(t, all, len(store.DefaultMenu()))

	rec = env.do(http.MethodGet, "/api/menu?category=vegetarian", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, it := range decode[[]models.MenuItem](t, rec) {
		assert.Equal(t, models.CategoryVegetarian, it.Category)
	}

	rec = env.do(http.MethodGet, "/api/menu?category=dessert", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/menu/"+all[0].ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(http.MethodGet, "/api/menu/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []models.Category{"classic", "premium", "vegetarian", "specialty"}, decode[[]models.Category](t, rec))

	rec = env.do(http.MethodGet, "/api/menu/popular", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	popular := decode[[]models.MenuItem](t, rec)
	require.Len(t, popular, 3)
	for _, it := range popular {
		assert.True(t, it.Popular, it.Name)
	}

	rec = env.do(http.MethodGet, "/api/menu/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/login", "", map[string]string{"email": "user@example.com", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/login", "", map[string]string{"email": "user@example.com", "password": "user123"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Positive(t, decode[errorResponse](t, rec).RetryAfter)

	token := env.login("admin@pizzahut.com", "admin123")
	rec = env.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.RoleAdmin, decode[models.User](t, rec).Role)

	rec = env.do(http.MethodPost, "/api/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(http.MethodGet, "/api/cart", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "unauthorized")
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.login("user@example.com", "user123")

	rec := env.do(http.MethodPost, "/api/cart/items", token, map[string]string{"menu_item_id": "1", "size": "large"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[cartView](t, rec)
	require.Len(t, cart.Lines, 1)
	// Margherita 299 large = 358.80
	assert.Equal(t, "358.80", cart.Lines[0].UnitPrice)
	assert.Equal(t, "40.00", cart.Summary.DeliveryFee)

	lineID := cart.Lines[0].ID
	rec = env.do(http.MethodPatch, "/api/cart/items/"+lineID, token, map[string]int{"quantity": 3})
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decode[cartView](t, rec)
	assert.Equal(t, 3, cart.Summary.ItemCount)
	assert.Equal(t, "1076.40", cart.Summary.Subtotal)

	rec = env.do(http.MethodPatch, "/api/cart/items/"+lineID, token, map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cartView](t, rec).Lines)

	rec = env.do(http.MethodDelete, "/api/cart/items/"+lineID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/api/cart/items", token, map[string]string{"menu_item_id": "404"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(http.MethodPost, "/api/cart/items", token, map[string]string{"menu_item_id": "1", "size": "huge"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(http.MethodPost, "/api/cart/items", token, map[string]string{"menu_item_id": "1", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutAndOrders(t *testing.T) {
	env := newTestEnv(t)
	user := env.login("user@example.com", "user123")
	admin := env.login("admin@pizzahut.com", "admin123")

	rec := env.do(http.MethodPost, "/api/checkout", user, validCheckoutBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code, "empty cart")

	env.do(http.MethodPost, "/api/cart/items", user, map[string]string{"menu_item_id": "1"})
	bad := validCheckoutBody()
	bad["payment_method"] = "barter"
	rec = env.do(http.MethodPost, "/api/checkout", user, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/api/checkout", user, validCheckoutBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[orderView](t, rec)
	// 299 + 40 + 53.82
	assert.Equal(t, "392.82", order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "Order Received", order.StatusLabel)

	rec = env.do(http.MethodGet, "/api/cart", user, nil)
	assert.Empty(t, decode[cartView](t, rec).Lines)

	rec = env.do(http.MethodGet, "/api/orders", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]orderView](t, rec), 1)

	orderPath := fmt.Sprintf("/api/orders/%d", order.ID)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, orderPath, user, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, orderPath, admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/orders/999", user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/orders/abc", user, nil).Code)
}

func TestAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	user := env.login("user@example.com", "user123")
	admin := env.login("admin@pizzahut.com", "admin123")

	rec := env.do(http.MethodGet, "/api/admin/stats", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPost, "/api/admin/menu", admin, map[string]any{
		"name": "Hawaiian", "price": "449", "category": "specialty", "ingredients": []string{"Ham", "Pineapple"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.MenuItem](t, rec)

	rec = env.do(http.MethodPost, "/api/admin/menu", admin, map[string]any{"name": "Free", "price": "0", "category": "classic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPatch, "/api/admin/menu/"+created.ID, admin, map[string]any{"popular": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.MenuItem](t, rec).Popular)

	rec = env.do(http.MethodDelete, "/api/admin/menu/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.do(http.MethodDelete, "/api/admin/menu/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	env.do(http.MethodPost, "/api/cart/items", user, map[string]string{"menu_item_id": "2"})
	rec = env.do(http.MethodPost, "/api/checkout", user, validCheckoutBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[orderView](t, rec)
	statusPath := fmt.Sprintf("/api/admin/orders/%d/status", order.ID)

	rec = env.do(http.MethodPatch, statusPath, user, map[string]string{"status": "ready"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodPatch, statusPath, admin, map[string]string{"status": "ready"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusReady, decode[orderView](t, rec).Status)

	rec = env.do(http.MethodPatch, statusPath, admin, map[string]string{"status": "preparing"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = env.do(http.MethodPatch, "/api/admin/orders/999/status", admin, map[string]string{"status": "ready"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/api/admin/orders?status=ready", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]orderView](t, rec), 1)
	rec = env.do(http.MethodGet, "/api/admin/orders?status=lost", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.do(http.MethodPost, "/api/cart/items", user, map[string]string{"menu_item_id": "1"})
	rec = env.do(http.MethodPost, "/api/checkout", user, validCheckoutBody())
	require.Equal(t, http.StatusCreated, rec.Code)
	newest := decode[orderView](t, rec)
	assert.Contains(t, newest.StatusMessage, "received")
	rec = env.do(http.MethodGet, "/api/admin/orders?limit=1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]orderView](t, rec)
	require.Len(t, recent, 1)
	assert.Equal(t, newest.ID, recent[0].ID)
	rec = env.do(http.MethodGet, "/api/admin/orders?limit=x", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(http.MethodGet, "/api/admin/orders?status=pending&limit=5", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]orderView](t, rec), 1)
	rec = env.do(http.MethodGet, "/api/admin/orders?status=pending&limit=0", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]orderView](t, rec))
	env.do(http.MethodPatch, fmt.Sprintf("/api/admin/orders/%d/status", newest.ID), admin, map[string]string{"status": "preparing"})

	env.do(http.MethodPatch, statusPath, admin, map[string]string{"status": "delivered"})
	rec = env.do(http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[statsView](t, rec)
	assert.Equal(t, 2, stats.TotalOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 0, stats.PendingOrders)
}
