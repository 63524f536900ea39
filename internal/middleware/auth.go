package middleware

import (
	"net/http"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

// Page locations the guard sends users to
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
	NotFoundPath  = "/not-found"
	ActionsPrefix = "/actions"
)

const ctxUserKey = "user"

// deny stops the chain. Page navigations get a 302; action calls get the same
// target in a JSON body so the browser can navigate itself.
func deny(c *gin.Context, status int, location string) {
	if strings.HasPrefix(c.Request.URL.Path, ActionsPrefix) {
		c.AbortWithStatusJSON(status, response.Redirect(status, location))
		return
	}
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// authenticate admits only tabs holding a token and a valid user. A lacking
// session goes to the login page.
func authenticate(c *gin.Context) (*model.User, bool) {
	tab := CurrentTab(c)
	ctx := c.Request.Context()
	if !tab.Session.IsAuthenticated(ctx) {
		deny(c, http.StatusUnauthorized, LoginPath)
		return nil, false
	}
	user := tab.Session.User(ctx)
	c.Set(ctxUserKey, *user)
	return user, true
}

// RequireAuth lets any signed-in user through
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		c.Next()
	}
}

// RequirePermission admits admins and users holding every listed permission.
// Anyone else is shown the not-found page.
func RequirePermission(requiredPerms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		tab := CurrentTab(c)
		for _, p := range requiredPerms {
			if !tab.Session.HasPermission(c.Request.Context(), p) {
				deny(c, http.StatusNotFound, NotFoundPath)
				return
			}
		}
		c.Next()
	}
}

// RequireRole admits users whose role is in allowedRoles; others see not-found
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c); !ok {
			return
		}
		if !CurrentTab(c).Session.HasRole(c.Request.Context(), allowedRoles...) {
			deny(c, http.StatusNotFound, NotFoundPath)
			return
		}
		c.Next()
	}
}

// GuestOnly sends signed-in users from the login page to the dashboard
func GuestOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentTab(c).Session.IsAuthenticated(c.Request.Context()) {
			c.Redirect(http.StatusFound, DashboardPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user the guard admitted
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}
