package middleware

import (
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TabHeader lets a browser tab name itself; the cookie is the fallback for
// plain page navigations
const TabHeader = "X-Tab-ID"

const ctxTabKey = "tab"

// TabConfig controls the tab identity cookie
type TabConfig struct {
	CookieName string
	MaxAge     int // seconds
	Secure     bool
}

// Tab resolves the browser tab behind a request and attaches its session and a
// backend bound to that session's token
func Tab(cfg TabConfig, store session.Storage, backend *client.Client, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := tabID(c, cfg.CookieName)
		if id == "" {
			id = uuid.NewString()
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, cfg.MaxAge, "/", "", cfg.Secure, true)

		sess := session.New(session.Namespaced(store, id), log)
		c.Set(ctxTabKey, service.Tab{
			ID:      id,
			Session: sess,
			Backend: backend.Bind(sess),
		})
		c.Next()
	}
}

func tabID(c *gin.Context, cookieName string) string {
	if v := c.GetHeader(TabHeader); v != "" {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	if v, err := c.Cookie(cookieName); err == nil {
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	return ""
}

// CurrentTab returns the tab attached by Tab
func CurrentTab(c *gin.Context) service.Tab {
	if v, ok := c.Get(ctxTabKey); ok {
		if tab, ok := v.(service.Tab); ok {
			return tab
		}
	}
	panic("middleware: Tab middleware is not installed")
}
