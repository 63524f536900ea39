package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "bookstore_tab"

func setupRouter(t *testing.T) (*gin.Engine, *session.MemoryStorage) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStorage(time.Hour)
	backend, err := client.NewClient(client.Options{BaseURL: "http://backend.invalid/api"})
	require.NoError(t, err)

	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }

	r := gin.New()
	r.Use(Tab(TabConfig{CookieName: cookieName, MaxAge: 3600}, store, backend, nil))
	r.GET("/login", GuestOnly(), ok)
	r.GET("/dashboard", RequireAuth(), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.String(http.StatusOK, user.Username)
	})
	r.GET("/add-item", RequirePermission(model.PermManageInventory), ok)
	r.GET("/user-management", RequireRole(model.RoleAdmin), ok)
	r.POST("/actions/items", RequirePermission(model.PermManageInventory), ok)
	return r, store
}

func signIn(t *testing.T, store session.Storage, user model.User) string {
	t.Helper()
	tabID := uuid.NewString()
	sess := session.New(session.Namespaced(store, tabID), nil)
	require.NoError(t, sess.Save(context.Background(), "token-123", user))
	return tabID
}

func get(r *gin.Engine, method, path, tabID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if tabID != "" {
		req.Header.Set(TabHeader, tabID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var staff = model.User{ID: 2, Username: "staff", Role: model.RoleStaff, Permissions: []string{model.PermManageSales}}

func TestRequireAuth(t *testing.T) {
	r, store := setupRouter(t)

	t.Run("anonymous page visit redirects to login", func(t *testing.T) {
		w := get(r, http.MethodGet, "/dashboard", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, LoginPath, w.Header().Get("Location"))
	})

	t.Run("anonymous action gets a JSON redirect", func(t *testing.T) {
		w := get(r, http.MethodPost, "/actions/items", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, LoginPath, body["redirect"])
	})

	t.Run("signed-in user passes", func(t *testing.T) {
		tabID := signIn(t, store, staff)
		w := get(r, http.MethodGet, "/dashboard", tabID)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "staff", w.Body.String())
	})

	t.Run("corrupted profile logs the tab out", func(t *testing.T) {
		tabID := uuid.NewString()
		ns := session.Namespaced(store, tabID)
		ctx := context.Background()
		require.NoError(t, ns.Set(ctx, session.KeyToken, "token"))
		require.NoError(t, ns.Set(ctx, session.KeyUser, `{"name":"no role"}`))

		w := get(r, http.MethodGet, "/dashboard", tabID)
		assert.Equal(t, LoginPath, w.Header().Get("Location"))

		_, err := ns.Get(ctx, session.KeyToken)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestRequirePermission(t *testing.T) {
	r, store := setupRouter(t)

	t.Run("missing permission looks like a missing page", func(t *testing.T) {
		w := get(r, http.MethodGet, "/add-item", signIn(t, store, staff))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, NotFoundPath, w.Header().Get("Location"))
	})

	t.Run("missing permission on an action is a 404", func(t *testing.T) {
		w := get(r, http.MethodPost, "/actions/items", signIn(t, store, staff))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("granted permission passes", func(t *testing.T) {
		u := staff
		u.Permissions = []string{model.PermManageInventory}
		w := get(r, http.MethodGet, "/add-item", signIn(t, store, u))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin needs no explicit permission", func(t *testing.T) {
		admin := model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
		w := get(r, http.MethodGet, "/add-item", signIn(t, store, admin))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	r, store := setupRouter(t)

	w := get(r, http.MethodGet, "/user-management", signIn(t, store, staff))
	assert.Equal(t, NotFoundPath, w.Header().Get("Location"))

	admin := model.User{ID: 1, Username: "admin", Role: model.RoleAdmin}
	w = get(r, http.MethodGet, "/user-management", signIn(t, store, admin))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuestOnly(t *testing.T) {
	r, store := setupRouter(t)

	w := get(r, http.MethodGet, "/login", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, http.MethodGet, "/login", signIn(t, store, staff))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, DashboardPath, w.Header().Get("Location"))
}

func TestTabCookie(t *testing.T) {
	r, _ := setupRouter(t)

	w := get(r, http.MethodGet, "/login", "")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	_, err := uuid.Parse(cookies[0].Value)
	require.NoError(t, err)

	// the cookie identifies the tab on the next request
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, cookies[0].Value, w.Result().Cookies()[0].Value)

	// malformed ids are replaced
	w = get(r, http.MethodGet, "/login", "not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", w.Result().Cookies()[0].Value)
}
