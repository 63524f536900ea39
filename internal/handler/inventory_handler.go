package handler

import (
	"net/http"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/spreadsheet"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/pagination"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	maxUpload        int64
}

func NewInventoryHandler(inventoryService service.InventoryService, maxUpload int64) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, maxUpload: maxUpload}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/items")
	{
		items.GET("", middleware.RequireAuth(), h.ListItems)
		items.GET("/:id", middleware.RequireAuth(), h.GetItem)
		items.POST("", middleware.RequirePermission(model.PermManageInventory), h.CreateItem)
		items.PUT("/:id", middleware.RequirePermission(model.PermManageInventory), h.UpdateItem)
		items.DELETE("/:id", middleware.RequirePermission(model.PermManageInventory), h.DeleteItem)
		items.PATCH("/:id/stock", middleware.RequirePermission(model.PermManageInventory), h.UpdateStock)
	}

	inventory := router.Group("/inventory")
	{
		inventory.GET("/low-stock", middleware.RequirePermission(model.PermViewInventory), h.LowStock)
		inventory.GET("/export", middleware.RequirePermission(model.PermViewInventory), h.Export)
		inventory.GET("/templates/new", middleware.RequirePermission(model.PermUploadExcel), h.NewItemsTemplate)
		inventory.GET("/templates/update", middleware.RequirePermission(model.PermUploadExcel), h.UpdateTemplate)
	}
}

// ItemQuery reads the list filters shared by the page and the action
func ItemQuery(c *gin.Context) service.ItemQuery {
	return service.ItemQuery{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
		Page:     pagination.Parse(c),
	}
}

// ListItems returns one page of the filtered, sorted item list
// @Summary      List items
// @Tags         inventory
// @Produce      json
// @Param        search    query     string  false  "Matches name or description"
// @Param        category  query     string  false  "Exact category"
// @Param        sort      query     string  false  "name, price, stock or category, optionally with _desc"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.Response{data=service.ItemsView}
// @Failure      502       {object}  response.Response
// @Router       /actions/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	view, err := h.inventoryService.ListItems(c.Request.Context(), middleware.CurrentTab(c), ItemQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// @Summary      Get item
// @Tags         inventory
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response{data=model.Item}
// @Router       /actions/items/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	item, err := h.inventoryService.GetItem(c.Request.Context(), middleware.CurrentTab(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// bindItem reads the item form and its optional image
func (h *InventoryHandler) bindItem(c *gin.Context) (service.ItemRequest, *service.ImageUpload, bool) {
	var req service.ItemRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return req, nil, false
	}
	image, _, err := formFile(c, "image", h.maxUpload)
	if err != nil {
		fail(c, err)
		return req, nil, false
	}
	return req, image, true
}

// CreateItem adds an item; an attached image is scaled and stored inline
// @Summary      Create item
// @Tags         inventory
// @Accept       multipart/form-data
// @Produce      json
// @Param        name            formData  string  true   "Name"
// @Param        category        formData  string  true   "Category"
// @Param        description     formData  string  false  "Description"
// @Param        price           formData  string  true   "Price"
// @Param        stock_quantity  formData  int     true   "Stock"
// @Param        image           formData  file    false  "Image, at most 5MB"
// @Success      201             {object}  response.Response{data=model.Item}
// @Failure      400             {object}  response.Response
// @Router       /actions/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	req, image, ok := h.bindItem(c)
	if !ok {
		return
	}
	item, err := h.inventoryService.CreateItem(c.Request.Context(), middleware.CurrentTab(c), req, image)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// @Summary      Update item
// @Tags         inventory
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response{data=model.Item}
// @Failure      400  {object}  response.Response
// @Router       /actions/items/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	req, image, ok := h.bindItem(c)
	if !ok {
		return
	}
	item, err := h.inventoryService.UpdateItem(c.Request.Context(), middleware.CurrentTab(c), id, req, image)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// @Summary      Delete item
// @Tags         inventory
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response
// @Router       /actions/items/{id} [delete]
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.inventoryService.DeleteItem(c.Request.Context(), middleware.CurrentTab(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}

// @Summary      Adjust stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id       path      int                   true  "Item ID"
// @Param        payload  body      service.StockRequest  true  "Quantity and operation (add, subtract, set)"
// @Success      200      {object}  response.Response{data=model.Item}
// @Router       /actions/items/{id}/stock [patch]
func (h *InventoryHandler) UpdateStock(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req service.StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.inventoryService.UpdateStock(c.Request.Context(), middleware.CurrentTab(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// @Summary      Low stock items
// @Tags         inventory
// @Produce      json
// @Param        sort  query     string  false  "stock, name, price or category, optionally with _desc"
// @Success      200   {object}  response.Response{data=service.LowStockView}
// @Router       /actions/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	view, err := h.inventoryService.LowStock(c.Request.Context(), middleware.CurrentTab(c), c.Query("sort"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// @Summary      Export inventory
// @Tags         inventory
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /actions/inventory/export [get]
func (h *InventoryHandler) Export(c *gin.Context) {
	data, err := h.inventoryService.ExportInventory(c.Request.Context(), middleware.CurrentTab(c))
	if err != nil {
		fail(c, err)
		return
	}
	sendFile(c, spreadsheet.FileName("inventory-export", time.Now()), contentTypeXLSX, data)
}

// @Summary      New inventory template
// @Tags         inventory
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /actions/inventory/templates/new [get]
func (h *InventoryHandler) NewItemsTemplate(c *gin.Context) {
	data, err := h.inventoryService.NewInventoryTemplate()
	if err != nil {
		fail(c, err)
		return
	}
	sendFile(c, spreadsheet.FileName("new-inventory-template", time.Now()), contentTypeXLSX, data)
}

// @Summary      Inventory update template
// @Description  Pre-filled with every current item
// @Tags         inventory
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /actions/inventory/templates/update [get]
func (h *InventoryHandler) UpdateTemplate(c *gin.Context) {
	data, err := h.inventoryService.UpdateTemplate(c.Request.Context(), middleware.CurrentTab(c))
	if err != nil {
		fail(c, err)
		return
	}
	sendFile(c, spreadsheet.FileName("inventory-update-template", time.Now()), contentTypeXLSX, data)
}
