package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"game-store/config"
	"game-store/models"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		StoreDriver:     "memory",
		JWTSecret:       "test-secret",
		JWTExpiry:       "1h",
		AdminEmail:      adminEmail,
		AdminPassword:   adminPassword,
		CartMaxQuantity: 10,
		CheckoutTimeout: 5 * time.Second,
		LockTTL:         time.Second,
	}
	prev := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = prev })

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return &testServer{t: t, router: a.Router}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope, http.Header) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env, rec.Header()
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	code, env, _ := s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: email, Password: password})
	require.Equal(s.t, http.StatusOK, code, env.Message)
	return decode[models.LoginResponse](s.t, env).Token
}

func (s *testServer) register(email string) string {
	s.t.Helper()
	code, env, _ := s.do(http.MethodPost, "/auth/register", "", models.RegisterRequest{Email: email, Password: "password1"})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	return decode[models.LoginResponse](s.t, env).Token
}

func (s *testServer) createProduct(admin, name, price string, stock int) models.Product {
	s.t.Helper()
	code, env, _ := s.do(http.MethodPost, "/admin/products", admin, models.CreateProductRequest{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)
	return decode[models.Product](s.t, env)
}

func (s *testServer) addToCart(token string, productID int64, qty int) (int, envelope) {
	s.t.Helper()
	code, env, _ := s.do(http.MethodPost, "/cart/items", token, map[string]any{"product_id": productID, "quantity": qty})
	return code, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, _, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	code, _, _ := s.do(http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _, _ = s.do(http.MethodPost, "/checkout", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	customer := s.register("player@example.com")
	code, _, _ = s.do(http.MethodPost, "/admin/products", customer, models.CreateProductRequest{Name: "x"})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.register("player@example.com")

	code, _, _ := s.do(http.MethodPost, "/auth/register", "", models.RegisterRequest{Email: "PLAYER@example.com", Password: "password1"})
	assert.Equal(t, http.StatusConflict, code)

	code, _, _ = s.do(http.MethodPost, "/auth/login", "", models.LoginRequest{Email: "player@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCartToOrderFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	customer := s.register("player@example.com")

	game := s.createProduct(admin, "Stardew Valley", "14.99", 5)
	dlc := s.createProduct(admin, "Soundtrack", "4.50", 10)

	code, _ := s.addToCart(customer, game.ID, 2)
	require.Equal(t, http.StatusCreated, code)
	code, env := s.addToCart(customer, game.ID, 1)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 3, decode[models.CartItem](t, env).Quantity, "adding the same product merges lines")
	code, _ = s.addToCart(customer, dlc.ID, 1)
	require.Equal(t, http.StatusCreated, code)

	code, env, _ = s.do(http.MethodGet, "/cart", customer, nil)
	require.Equal(t, http.StatusOK, code)
	view := decode[models.CartView](t, env)
	require.Len(t, view.Items, 2)
	assert.Equal(t, "49.47", view.Total.StringFixed(2))

	code, env, _ = s.do(http.MethodPost, "/checkout", customer, nil)
	require.Equal(t, http.StatusCreated, code, env.Message)
	order := decode[models.Order](t, env)
	assert.Equal(t, "49.47", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	require.Len(t, order.Items, 2)

	code, env, _ = s.do(http.MethodGet, "/cart", customer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[models.CartView](t, env).Items)

	code, env, _ = s.do(http.MethodGet, fmt.Sprintf("/products/%d", game.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, decode[models.Product](t, env).Stock)

	code, env, _ = s.do(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), customer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, order.ID, decode[models.Order](t, env).ID)

	other := s.register("other@example.com")
	code, _, _ = s.do(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env, _ = s.do(http.MethodGet, "/orders", customer, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Order](t, env), 1)
}

func TestCartErrors(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	customer := s.register("player@example.com")
	game := s.createProduct(admin, "Celeste", "19.99", 5)

	code, env := s.addToCart(customer, game.ID, 6)
	require.Equal(t, http.StatusConflict, code)
	data := decode[map[string]any](t, env)
	assert.EqualValues(t, 5, data["available"])
	assert.EqualValues(t, 6, data["requested"])

	code, _ = s.addToCart(customer, game.ID, 0)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.addToCart(customer, 9999, 1)
	assert.Equal(t, http.StatusNotFound, code)

	code, _, _ = s.do(http.MethodPost, "/checkout", customer, nil)
	assert.Equal(t, http.StatusBadRequest, code, "empty cart")

	code, env = s.addToCart(customer, game.ID, 2)
	require.Equal(t, http.StatusCreated, code)
	line := decode[models.CartItem](t, env)

	code, _, _ = s.do(http.MethodPatch, fmt.Sprintf("/cart/items/%d", line.ID), customer, map[string]int{"quantity": 4})
	assert.Equal(t, http.StatusOK, code)
	code, _, _ = s.do(http.MethodPatch, fmt.Sprintf("/cart/items/%d", line.ID), customer, map[string]int{"quantity": 9})
	assert.Equal(t, http.StatusConflict, code)
	code, _, _ = s.do(http.MethodPatch, "/cart/items/abc", customer, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _, _ = s.do(http.MethodPatch, fmt.Sprintf("/cart/items/%d", line.ID), customer, map[string]int{"quantity": 0})
	assert.Equal(t, http.StatusOK, code)
	code, _, _ = s.do(http.MethodPatch, fmt.Sprintf("/cart/items/%d", line.ID), customer, map[string]int{"quantity": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestCheckoutRejectsWhenStockShrank(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	first := s.register("first@example.com")
	second := s.register("second@example.com")
	game := s.createProduct(admin, "Hollow Knight", "15.00", 3)

	code, _ := s.addToCart(first, game.ID, 2)
	require.Equal(t, http.StatusCreated, code)
	code, _ = s.addToCart(second, game.ID, 2)
	require.Equal(t, http.StatusCreated, code)

	code, _, _ = s.do(http.MethodPost, "/checkout", first, nil)
	require.Equal(t, http.StatusCreated, code)

	code, env, _ := s.do(http.MethodPost, "/checkout", second, nil)
	require.Equal(t, http.StatusConflict, code)
	data := decode[map[string]any](t, env)
	assert.EqualValues(t, 1, data["available"])
	assert.Equal(t, "Hollow Knight", data["product_name"])

	code, env, _ = s.do(http.MethodGet, "/cart", second, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[models.CartView](t, env).Items, 1, "a rejected checkout keeps the cart")
}

func TestConcurrentCheckoutsNeverOversell(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	game := s.createProduct(admin, "Balatro", "14.99", 4)

	const buyers = 12
	tokens := make([]string, buyers)
	for i := range tokens {
		tokens[i] = s.register(fmt.Sprintf("buyer%d@example.com", i))
		code, _ := s.addToCart(tokens[i], game.ID, 1)
		require.Equal(t, http.StatusCreated, code)
	}

	codes := make([]int, buyers)
	var g errgroup.Group
	for i, token := range tokens {
		g.Go(func() error {
			req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)
			codes[i] = rec.Code
			return nil
		})
	}
	require.NoError(t, g.Wait())

	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 4, created)
	assert.Equal(t, buyers-4, conflicts)

	code, env, _ := s.do(http.MethodGet, fmt.Sprintf("/products/%d", game.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, decode[models.Product](t, env).Stock)
}

func TestAvailability(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	game := s.createProduct(admin, "Outer Wilds", "24.99", 3)

	code, env, _ := s.do(http.MethodGet, fmt.Sprintf("/products/%d/availability?quantity=4", game.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	data := decode[map[string]any](t, env)
	assert.EqualValues(t, 3, data["available"])
	assert.Equal(t, false, data["is_available"])

	code, env, _ = s.do(http.MethodGet, "/products/9999/availability", "", nil)
	require.Equal(t, http.StatusOK, code)
	data = decode[map[string]any](t, env)
	assert.EqualValues(t, 0, data["available"])
	assert.Equal(t, false, data["is_available"])
}

func TestAdminProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	game := s.createProduct(admin, "Terraria", "9.99", 1)

	code, env, _ := s.do(http.MethodPost, fmt.Sprintf("/admin/products/%d/restock", game.ID), admin, models.RestockRequest{Amount: 4})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 5, decode[map[string]any](t, env)["stock"])

	code, _, _ = s.do(http.MethodPost, "/admin/products", admin, models.CreateProductRequest{Name: "Bad", Price: decimal.NewFromInt(-1)})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = s.do(http.MethodDelete, fmt.Sprintf("/admin/products/%d", game.ID), admin, nil)
	require.Equal(t, http.StatusOK, code)

	code, _, _ = s.do(http.MethodGet, fmt.Sprintf("/products/%d", game.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
