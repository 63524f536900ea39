package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/cart"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/imaging"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/receipt"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/session"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = model.User{ID: 1, Name: "Ada Admin", Username: "admin", Email: "admin@bookstore.test", Role: model.RoleAdmin}
	clerk = model.User{ID: 2, Name: "Sam Staff", Username: "staff", Role: model.RoleStaff,
		Permissions: []string{model.PermManageSales, model.PermViewInventory, model.PermUploadExcel}}
)

type testApp struct {
	router  *gin.Engine
	store   *session.MemoryStorage
	carts   *cart.Registry
	mux     *http.ServeMux
	mu      sync.Mutex
	created []model.NewSale
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	app := &testApp{
		store: session.NewMemoryStorage(time.Hour),
		carts: cart.NewRegistry(),
		mux:   http.NewServeMux(),
	}
	backendServer := httptest.NewServer(app.mux)
	t.Cleanup(backendServer.Close)

	backend, err := client.NewClient(client.Options{BaseURL: backendServer.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)

	images := imaging.NewNormalizer(imaging.Options{})
	services := PageServices{
		Auth:       service.NewAuthService(app.carts, nil),
		Inventory:  service.NewInventoryService(images, nil, 10, nil),
		Categories: service.NewCategoryService(10),
		Sales:      service.NewSalesService(app.carts, receipt.NewGenerator(nil, ""), nil, nil, nil),
		Approvals:  service.NewApprovalService(nil, nil),
		Users:      service.NewUserService(),
		Settings:   service.NewSettingsService(images, nil),
		Statistics: service.NewStatisticsService(10, nil),
	}

	r := gin.New()
	r.Use(middleware.Tab(middleware.TabConfig{CookieName: "bookstore_tab", MaxAge: 3600}, app.store, backend, nil))
	actions := r.Group(middleware.ActionsPrefix)
	NewAuthHandler(services.Auth).RegisterRoutes(actions)
	NewInventoryHandler(services.Inventory, 1<<20).RegisterRoutes(actions)
	NewCategoryHandler(services.Categories).RegisterRoutes(actions)
	NewSalesHandler(services.Sales).RegisterRoutes(actions)
	NewApprovalHandler(services.Approvals, 1<<20).RegisterRoutes(actions)
	NewUserHandler(services.Users).RegisterRoutes(actions)
	NewSettingsHandler(services.Settings, 1<<20).RegisterRoutes(actions)
	NewStatisticsHandler(services.Statistics).RegisterRoutes(actions)
	NewPageHandler(services, []client.DemoCredential{{Username: "demo", Password: "demo", Role: model.RoleStaff}}).RegisterRoutes(r)
	app.router = r
	return app
}

func (a *testApp) signIn(t *testing.T, user model.User) string {
	t.Helper()
	tabID := uuid.NewString()
	sess := session.New(session.Namespaced(a.store, tabID), nil)
	require.NoError(t, sess.Save(context.Background(), "token-"+user.Username, user))
	return tabID
}

func (a *testApp) do(method, path, tabID string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tabID != "" {
		req.Header.Set(middleware.TabHeader, tabID)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var res response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestRootRedirect(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = app.do(http.MethodGet, "/", app.signIn(t, clerk), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestLoginPageListsDemoAccounts(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/login", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"demo_credentials"`)
	assert.Contains(t, w.Body.String(), `"username":"demo"`)
}

func TestPageGates(t *testing.T) {
	app := newTestApp(t)
	tab := app.signIn(t, clerk)

	tests := []struct {
		path     string
		location string
	}{
		{"/settings", "/not-found"},
		{"/user-management", "/not-found"},
		{"/approvals", "/not-found"},
		{"/sales-history", "/not-found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := app.do(http.MethodGet, tt.path, tab, nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}

	t.Run("unknown route renders not-found", func(t *testing.T) {
		w := app.do(http.MethodGet, "/no-such-page", tab, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"page":"not-found"`)
	})
}

func TestPageCarriesHeaderAndBackendError(t *testing.T) {
	app := newTestApp(t)
	app.mux.HandleFunc("GET /items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Database unavailable"})
	})

	w := app.do(http.MethodGet, "/view-items", app.signIn(t, clerk), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page Page
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "view-items", page.Name)
	assert.Equal(t, "Database unavailable", page.Error)
	require.NotNil(t, page.Header)
	assert.Equal(t, "Sam Staff", page.Header.DisplayName)
	assert.Equal(t, "No email", page.Header.Email)
	assert.Equal(t, model.RoleStaff, page.Header.Role)
}

func TestActionGatesAnswerJSON(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodGet, "/actions/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "/login", decode(t, w).Redirect)

	w = app.do(http.MethodGet, "/actions/users", app.signIn(t, clerk), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "/not-found", decode(t, w).Redirect)
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": "tok-1",
			"user":  map[string]any{"id": 2, "name": "Sam Staff", "username": "staff", "role": "staff"},
		}})
	})

	t.Run("rejected credentials", func(t *testing.T) {
		w := app.do(http.MethodPost, "/actions/auth/login", uuid.NewString(), service.LoginRequest{Username: "staff", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", decode(t, w).Error)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := app.do(http.MethodPost, "/actions/auth/login", uuid.NewString(), map[string]string{"username": "staff"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success signs the tab in", func(t *testing.T) {
		tab := uuid.NewString()
		w := app.do(http.MethodPost, "/actions/auth/login", tab, service.LoginRequest{Username: "staff", Password: "secret"})
		require.Equal(t, http.StatusOK, w.Code)

		w = app.do(http.MethodGet, "/dashboard", tab, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = app.do(http.MethodGet, "/dashboard", uuid.NewString(), nil)
		assert.Equal(t, http.StatusFound, w.Code, "other tabs stay signed out")
	})
}

func TestLogoutClearsSessionAndCart(t *testing.T) {
	app := newTestApp(t)
	tab := app.signIn(t, clerk)
	app.carts.Get(tab).Add(model.Item{ID: 1, Name: "Dune", StockQuantity: 2})

	w := app.do(http.MethodPost, "/actions/auth/logout", tab, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/login", decode(t, w).Redirect)
	assert.Equal(t, 0, app.carts.Get(tab).Count())

	w = app.do(http.MethodGet, "/dashboard", tab, nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func (a *testApp) serveItem(item map[string]any) {
	a.mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "1" {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Item not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"item": item})
	})
}

func TestCartAndCheckout(t *testing.T) {
	app := newTestApp(t)
	app.serveItem(map[string]any{"id": 1, "name": "Dune", "price": "12.50", "stock_quantity": 2})
	app.mux.HandleFunc("POST /sales", func(w http.ResponseWriter, r *http.Request) {
		var sale model.NewSale
		_ = json.NewDecoder(r.Body).Decode(&sale)
		app.mu.Lock()
		app.created = append(app.created, sale)
		app.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"sale": map[string]any{
			"id": 42, "items": sale.Items, "payment_method": sale.PaymentMethod,
			"customer_name": sale.CustomerName, "total_amount": "25.00",
		}})
	})
	tab := app.signIn(t, clerk)

	w := app.do(http.MethodPost, "/actions/cart/items", tab, service.CartItemRequest{ItemID: 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = app.do(http.MethodPost, "/actions/cart/items", tab, service.CartItemRequest{ItemID: 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPost, "/actions/cart/items", tab, service.CartItemRequest{ItemID: 1})
	assert.Equal(t, http.StatusConflict, w.Code, "stock limit reached")

	w = app.do(http.MethodGet, "/actions/cart", tab, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)
	assert.Contains(t, w.Body.String(), `"total":"25"`)

	w = app.do(http.MethodPost, "/actions/cart/checkout", tab, service.CheckoutRequest{PaymentMethod: "bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(http.MethodPost, "/actions/cart/checkout", tab, service.CheckoutRequest{PaymentMethod: model.PaymentCash})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, app.created, 1)
	assert.Equal(t, model.DefaultCustomerName, app.created[0].CustomerName)
	require.Len(t, app.created[0].Items, 1)
	assert.Equal(t, 2, app.created[0].Items[0].Quantity)
	assert.Equal(t, 0, app.carts.Get(tab).Count())

	w = app.do(http.MethodPost, "/actions/cart/checkout", tab, service.CheckoutRequest{PaymentMethod: model.PaymentCash})
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty cart")
}

func TestFailedCheckoutKeepsCart(t *testing.T) {
	app := newTestApp(t)
	app.serveItem(map[string]any{"id": 1, "name": "Dune", "price": "12.50", "stock_quantity": 5})
	app.mux.HandleFunc("POST /sales", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Insufficient stock for Dune"})
	})
	tab := app.signIn(t, clerk)

	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/actions/cart/items", tab, service.CartItemRequest{ItemID: 1}).Code)

	w := app.do(http.MethodPost, "/actions/cart/checkout", tab, service.CheckoutRequest{PaymentMethod: model.PaymentCard})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Insufficient stock for Dune", decode(t, w).Error)
	assert.Equal(t, 1, app.carts.Get(tab).Count())
}

func TestCartQuantityAndRemove(t *testing.T) {
	app := newTestApp(t)
	app.serveItem(map[string]any{"id": 1, "name": "Dune", "price": "10", "stock_quantity": 3})
	tab := app.signIn(t, clerk)
	require.Equal(t, http.StatusOK, app.do(http.MethodPost, "/actions/cart/items", tab, service.CartItemRequest{ItemID: 1}).Code)

	w := app.do(http.MethodPut, "/actions/cart/items/1", tab, service.CartQuantityRequest{Quantity: 9})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, app.carts.Get(tab).Count(), "capped at stock")

	w = app.do(http.MethodDelete, "/actions/cart/items/1", tab, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, app.carts.Get(tab).Count())

	w = app.do(http.MethodPut, "/actions/cart/items/abc", tab, service.CartQuantityRequest{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceipt(t *testing.T) {
	app := newTestApp(t)
	app.mux.HandleFunc("GET /sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sale": map[string]any{
			"id": 7, "payment_method": "cash", "customer_name": "Walk-in Customer", "total_amount": "10.00",
			"items":      []map[string]any{{"item_id": 1, "name": "Dune", "quantity": 1, "price": "10.00"}},
			"created_at": "2026-03-01T10:30:00Z",
		}})
	})
	tab := app.signIn(t, clerk)

	w := app.do(http.MethodGet, "/actions/sales/7/receipt", tab, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code, "no PDF renderer configured")

	w = app.do(http.MethodGet, "/actions/sales/7/receipt/preview", tab, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "RECEIPT")
	assert.Contains(t, w.Body.String(), "Dune")
}

func TestApprovalDecisions(t *testing.T) {
	app := newTestApp(t)
	app.mux.HandleFunc("GET /approvals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"approvals": []map[string]any{
			{"id": 1, "type": "new_items", "status": "pending"},
			{"id": 2, "type": "new_items", "status": "approved"},
		}})
	})
	app.mux.HandleFunc("PUT /approvals/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"approval": map[string]any{"id": 1, "type": "new_items", "status": "approved"}})
	})
	tab := app.signIn(t, admin)

	w := app.do(http.MethodGet, "/actions/approvals", tab, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pending":[{"id":1`)

	w = app.do(http.MethodPut, "/actions/approvals/1/approve", tab, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodPut, "/actions/approvals/2/approve", tab, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = app.do(http.MethodPut, "/actions/approvals/9/approve", tab, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodPut, "/actions/approvals/1/reject", tab, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadRequiresFile(t *testing.T) {
	app := newTestApp(t)
	tab := app.signIn(t, clerk)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/actions/inventory/uploads/new_items", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.TabHeader, tab)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please select a file to upload", decode(t, w).Error)
}

func TestUploadRejectsInvalidRows(t *testing.T) {
	app := newTestApp(t)
	tab := app.signIn(t, clerk)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "broken.xlsx")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not a spreadsheet"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/actions/inventory/uploads/new_items", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.TabHeader, tab)
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCategoryValidation(t *testing.T) {
	app := newTestApp(t)
	tab := app.signIn(t, admin)

	w := app.do(http.MethodPost, "/actions/categories", tab, map[string]string{"color": "Blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	res := decode(t, w)
	assert.True(t, strings.HasPrefix(res.Error, "Invalid request payload"))
	assert.Contains(t, res.Details, "name: This field is required")
}
