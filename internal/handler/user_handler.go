package handler

import (
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users", middleware.RequireRole(model.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

// ListUsers handles GET /users requests
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.User}
// @Failure      502  {object}  response.Response
// @Router       /actions/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), middleware.CurrentTab(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// CreateUser handles POST /users requests
// @Summary      Create a new user
// @Description  Creates a staff or admin account on the backend
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateUserRequest  true  "Create User Payload"
// @Success      201      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Router       /actions/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.userService.CreateUser(c.Request.Context(), middleware.CurrentTab(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// UpdateUser handles PUT /users/:id requests
// @Summary      Update a user
// @Description  An empty password keeps the current one
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Update User Payload"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Router       /actions/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), middleware.CurrentTab(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// DeleteUser handles DELETE /users/:id requests
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /actions/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), middleware.CurrentTab(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}
