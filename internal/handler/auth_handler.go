package handler

import (
	"errors"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/session", middleware.RequireAuth(), h.CheckSession)
		auth.POST("/refresh", middleware.RequireAuth(), h.Refresh)
		auth.PUT("/password", middleware.RequireAuth(), h.ChangePassword)
	}
}

// Login signs the tab in
// @Summary      Sign in
// @Description  Authenticates against the backend (or the demo accounts) and stores the session for this tab
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /actions/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Login(c.Request.Context(), middleware.CurrentTab(c), req)
	var backend *client.Error
	if errors.As(err, &backend) {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, backend.Message))
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"user":     user,
		"redirect": middleware.DashboardPath,
	}))
}

// Logout always succeeds; the local session is cleared even if the backend is down
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /actions/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context(), middleware.CurrentTab(c))
	c.JSON(http.StatusOK, response.Redirect(http.StatusOK, middleware.LoginPath))
}

// CheckSession asks the backend whether the stored token is still valid
// @Summary      Check session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=model.User}
// @Failure      502  {object}  response.Response
// @Router       /actions/auth/session [get]
func (h *AuthHandler) CheckSession(c *gin.Context) {
	user, err := h.authService.CheckSession(c.Request.Context(), middleware.CurrentTab(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// Refresh exchanges the bearer token for a fresh one
// @Summary      Refresh token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /actions/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	if err := h.authService.Refresh(c.Request.Context(), middleware.CurrentTab(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, nil))
}

// ChangePassword updates the signed-in user's password
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /actions/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req service.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), middleware.CurrentTab(c), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Password changed successfully"}))
}
