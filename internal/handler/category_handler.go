package handler

import (
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", middleware.RequireAuth(), h.List)
		categories.GET("/stats", middleware.RequirePermission(model.PermManageInventory), h.Stats)
		categories.POST("", middleware.RequirePermission(model.PermManageInventory), h.Create)
		categories.PUT("/:id", middleware.RequirePermission(model.PermManageInventory), h.Update)
		categories.DELETE("/:id", middleware.RequirePermission(model.PermManageInventory), h.Delete)
	}
}

// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Category}
// @Router       /actions/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context(), middleware.CurrentTab(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// @Summary      Categories with item statistics
// @Tags         categories
// @Produce      json
// @Param        sort  query     string  false  "name, items, value or low_stock, optionally with _desc"
// @Success      200   {object}  response.Response{data=[]model.CategoryStats}
// @Router       /actions/categories/stats [get]
func (h *CategoryHandler) Stats(c *gin.Context) {
	stats, err := h.categoryService.ListWithStats(c.Request.Context(), middleware.CurrentTab(c), c.Query("sort"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CategoryRequest  true  "Name and color (Blue, Green, ...)"
// @Success      201      {object}  response.Response{data=model.Category}
// @Router       /actions/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), middleware.CurrentTab(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// @Summary      Update category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Param        id       path      int                      true  "Category ID"
// @Param        payload  body      service.CategoryRequest  true  "Name and color"
// @Success      200      {object}  response.Response{data=model.Category}
// @Router       /actions/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req service.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), middleware.CurrentTab(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// @Summary      Delete category
// @Tags         categories
// @Param        id   path      int  true  "Category ID"
// @Success      200  {object}  response.Response
// @Router       /actions/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), middleware.CurrentTab(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}
