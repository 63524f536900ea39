package handler

import (
	"net/http"
	"strconv"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/pagination"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	salesService service.SalesService
}

func NewSalesHandler(salesService service.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

func (h *SalesHandler) RegisterRoutes(router *gin.RouterGroup) {
	sell := middleware.RequirePermission(model.PermManageSales)
	cart := router.Group("/cart", sell)
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/items", h.AddToCart)
		cart.PUT("/items/:itemId", h.SetQuantity)
		cart.DELETE("/items/:itemId", h.RemoveFromCart)
		cart.POST("/checkout", h.Checkout)
	}

	sales := router.Group("/sales")
	{
		sales.GET("", middleware.RequirePermission(model.PermViewSalesHistory), h.History)
		sales.GET("/:id", middleware.RequireAuth(), h.GetSale)
		sales.GET("/:id/receipt", middleware.RequireAuth(), h.Receipt)
		sales.GET("/:id/receipt/preview", middleware.RequireAuth(), h.ReceiptPreview)
		sales.POST("/:id/void", middleware.RequireRole(model.RoleAdmin), h.Void)
	}

	reports := router.Group("/reports", middleware.RequirePermission(model.PermViewSalesHistory))
	{
		reports.GET("/sales", h.Export)
	}
}

// HistoryQuery reads the sales filters shared by the page and the actions
func HistoryQuery(c *gin.Context) service.HistoryQuery {
	staffID, _ := strconv.ParseInt(c.Query("staff_id"), 10, 64)
	return service.HistoryQuery{
		Search:    c.Query("search"),
		Range:     c.DefaultQuery("range", service.RangeAll),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		StaffID:   staffID,
		Sort:      c.Query("sort"),
		Page:      pagination.Parse(c),
	}
}

// @Summary      Current cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  response.Response{data=service.CartView}
// @Router       /actions/cart [get]
func (h *SalesHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.salesService.Cart(middleware.CurrentTab(c).ID)))
}

// @Summary      Add one unit of an item to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CartItemRequest  true  "Item"
// @Success      200      {object}  response.Response{data=service.CartView}
// @Failure      409      {object}  response.Response
// @Router       /actions/cart/items [post]
func (h *SalesHandler) AddToCart(c *gin.Context) {
	var req service.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view, err := h.salesService.AddToCart(c.Request.Context(), middleware.CurrentTab(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// SetQuantity caps the quantity at the item's stock; zero or less removes the line
// @Summary      Set cart line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        itemId   path      int                          true  "Item ID"
// @Param        payload  body      service.CartQuantityRequest  true  "Quantity"
// @Success      200      {object}  response.Response{data=service.CartView}
// @Router       /actions/cart/items/{itemId} [put]
func (h *SalesHandler) SetQuantity(c *gin.Context) {
	id, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	var req service.CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	view := h.salesService.SetQuantity(middleware.CurrentTab(c).ID, id, req.Quantity)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// @Summary      Remove cart line
// @Tags         cart
// @Produce      json
// @Param        itemId  path      int  true  "Item ID"
// @Success      200     {object}  response.Response{data=service.CartView}
// @Router       /actions/cart/items/{itemId} [delete]
func (h *SalesHandler) RemoveFromCart(c *gin.Context) {
	id, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.salesService.RemoveFromCart(middleware.CurrentTab(c).ID, id)))
}

// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  response.Response{data=service.CartView}
// @Router       /actions/cart [delete]
func (h *SalesHandler) ClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.salesService.ClearCart(middleware.CurrentTab(c).ID)))
}

// Checkout records the cart as a sale; the cart survives any failure
// @Summary      Checkout
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CheckoutRequest  true  "Payment and customer details"
// @Success      201      {object}  response.Response{data=model.Sale}
// @Failure      400      {object}  response.Response
// @Failure      502      {object}  response.Response
// @Router       /actions/cart/checkout [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sale, err := h.salesService.Checkout(c.Request.Context(), middleware.CurrentTab(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// @Summary      Sales history
// @Tags         sales
// @Produce      json
// @Param        search      query     string  false  "Sale id or item name"
// @Param        range       query     string  false  "today, yesterday, week, month or all"
// @Param        start_date  query     string  false  "YYYY-MM-DD, with end_date"
// @Param        end_date    query     string  false  "YYYY-MM-DD, with start_date"
// @Param        staff_id    query     int     false  "Only this staff member's sales"
// @Param        sort        query     string  false  "date, date_oldest, amount, amount_lowest, id, id_desc"
// @Success      200         {object}  response.Response{data=service.HistoryView}
// @Router       /actions/sales [get]
func (h *SalesHandler) History(c *gin.Context) {
	view, err := h.salesService.History(c.Request.Context(), middleware.CurrentTab(c), HistoryQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// @Summary      Get sale
// @Tags         sales
// @Produce      json
// @Param        id   path      int  true  "Sale ID"
// @Success      200  {object}  response.Response{data=model.Sale}
// @Router       /actions/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	sale, err := h.salesService.GetSale(c.Request.Context(), middleware.CurrentTab(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// @Summary      Download receipt PDF
// @Tags         sales
// @Produce      application/pdf
// @Param        id   path  int  true  "Sale ID"
// @Success      200
// @Failure      503  {object}  response.Response
// @Router       /actions/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, err := h.salesService.Receipt(c.Request.Context(), middleware.CurrentTab(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	sendFile(c, file.Name, contentTypePDF, file.Data)
}

// @Summary      Receipt as printable HTML
// @Tags         sales
// @Produce      html
// @Param        id   path  int  true  "Sale ID"
// @Success      200
// @Router       /actions/sales/{id}/receipt/preview [get]
func (h *SalesHandler) ReceiptPreview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	html, err := h.salesService.ReceiptHTML(c.Request.Context(), middleware.CurrentTab(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// @Summary      Void sale
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Sale ID"
// @Param        payload  body      service.VoidRequest  true  "Reason"
// @Success      200      {object}  response.Response
// @Router       /actions/sales/{id}/void [post]
func (h *SalesHandler) Void(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req service.VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.salesService.Void(c.Request.Context(), middleware.CurrentTab(c), id, req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}

// @Summary      Export sales spreadsheet
// @Tags         sales
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        detailed    query  bool    false  "One row per sold item instead of one per sale"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200
// @Router       /actions/reports/sales [get]
func (h *SalesHandler) Export(c *gin.Context) {
	detailed, _ := strconv.ParseBool(c.Query("detailed"))
	file, err := h.salesService.ExportSales(c.Request.Context(), middleware.CurrentTab(c), detailed, HistoryQuery(c))
	if err != nil {
		fail(c, err)
		return
	}
	sendFile(c, file.Name, contentTypeXLSX, file.Data)
}
