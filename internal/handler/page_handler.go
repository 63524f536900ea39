package handler

import (
	"errors"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/gin-gonic/gin"
)

// Header is the signed-in user's summary shown on every page
type Header struct {
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Page is the view model a navigable route answers with
type Page struct {
	Name   string  `json:"page"`
	Title  string  `json:"title"`
	Header *Header `json:"header,omitempty"`
	Data   any     `json:"data,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// PageServices are the services the pages read from
type PageServices struct {
	Auth       service.AuthService
	Inventory  service.InventoryService
	Categories service.CategoryService
	Sales      service.SalesService
	Approvals  service.ApprovalService
	Users      service.UserService
	Settings   service.SettingsService
	Statistics service.StatisticsService
}

type PageHandler struct {
	svc  PageServices
	demo []client.DemoCredential
}

// NewPageHandler builds the page routes; demo lists the logins hinted on the
// login page and may be empty
func NewPageHandler(svc PageServices, demo []client.DemoCredential) *PageHandler {
	return &PageHandler{svc: svc, demo: demo}
}

func (h *PageHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Root)
	router.GET(middleware.LoginPath, middleware.GuestOnly(), h.Login)
	router.GET(middleware.DashboardPath, middleware.RequireAuth(), h.Dashboard)
	router.GET("/view-items", middleware.RequireAuth(), h.ViewItems)
	router.GET("/profile", middleware.RequireAuth(), h.Profile)
	router.GET("/add-item", middleware.RequirePermission(model.PermManageInventory), h.AddItem)
	router.GET("/categories", middleware.RequirePermission(model.PermManageInventory), h.Categories)
	router.GET("/low-stock", middleware.RequirePermission(model.PermViewInventory), h.LowStock)
	router.GET("/sales-history", middleware.RequirePermission(model.PermViewSalesHistory), h.SalesHistory)
	router.GET("/approvals", middleware.RequirePermission(model.PermApproveUploads), h.Approvals)
	router.GET("/settings", middleware.RequirePermission(model.PermManageSystem), h.Settings)
	router.GET("/user-management", middleware.RequireRole(model.RoleAdmin), h.UserManagement)
	router.GET(middleware.NotFoundPath, h.NotFound)
	router.NoRoute(h.NotFound)
}

// render answers a page. A backend failure still renders the page, with the
// message in place of the data.
func (h *PageHandler) render(c *gin.Context, name, title string, data any, err error) {
	page := Page{Name: name, Title: title, Header: header(c), Data: data}
	if err != nil {
		page.Data = nil
		page.Error = errorMessage(err)
	}
	c.JSON(http.StatusOK, page)
}

func header(c *gin.Context) *Header {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	tab := middleware.CurrentTab(c)
	ctx := c.Request.Context()
	perms := user.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &Header{
		DisplayName: tab.Session.DisplayName(ctx),
		Email:       tab.Session.Email(ctx),
		Role:        tab.Session.RoleName(ctx),
		Permissions: perms,
	}
}

func errorMessage(err error) string {
	var backend *client.Error
	var validation *service.ValidationError
	switch {
	case errors.As(err, &backend):
		return backend.Message
	case errors.As(err, &validation):
		return validation.Message
	default:
		return "Something went wrong. Please try again."
	}
}

// Root sends the tab to its landing page
func (h *PageHandler) Root(c *gin.Context) {
	if middleware.CurrentTab(c).Session.IsAuthenticated(c.Request.Context()) {
		c.Redirect(http.StatusFound, middleware.DashboardPath)
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

func (h *PageHandler) Login(c *gin.Context) {
	h.render(c, "login", "Sign in", gin.H{"demo_credentials": h.demo}, nil)
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	h.render(c, "dashboard", "Dashboard", h.svc.Statistics.Dashboard(c.Request.Context(), middleware.CurrentTab(c)), nil)
}

func (h *PageHandler) ViewItems(c *gin.Context) {
	view, err := h.svc.Inventory.ListItems(c.Request.Context(), middleware.CurrentTab(c), ItemQuery(c))
	h.render(c, "view-items", "Inventory", view, err)
}

func (h *PageHandler) Profile(c *gin.Context) {
	view, err := h.svc.Auth.Profile(c.Request.Context(), middleware.CurrentTab(c))
	h.render(c, "profile", "Profile", view, err)
}

func (h *PageHandler) AddItem(c *gin.Context) {
	categories, err := h.svc.Categories.List(c.Request.Context(), middleware.CurrentTab(c))
	h.render(c, "add-item", "Add Item", gin.H{"categories": categories}, err)
}

func (h *PageHandler) Categories(c *gin.Context) {
	stats, err := h.svc.Categories.ListWithStats(c.Request.Context(), middleware.CurrentTab(c), c.Query("sort"))
	h.render(c, "categories", "Categories", gin.H{"categories": stats, "colors": model.CategoryColors}, err)
}

func (h *PageHandler) LowStock(c *gin.Context) {
	view, err := h.svc.Inventory.LowStock(c.Request.Context(), middleware.CurrentTab(c), c.Query("sort"))
	h.render(c, "low-stock", "Low Stock", view, err)
}

func (h *PageHandler) SalesHistory(c *gin.Context) {
	ctx := c.Request.Context()
	tab := middleware.CurrentTab(c)
	q := HistoryQuery(c)
	history, err := h.svc.Sales.History(ctx, tab, q)
	analytics := h.svc.Statistics.SalesAnalytics(ctx, tab, q.Range)
	h.render(c, "sales-history", "Sales History", gin.H{"records": history, "analytics": analytics}, err)
}

func (h *PageHandler) Approvals(c *gin.Context) {
	groups, err := h.svc.Approvals.List(c.Request.Context(), middleware.CurrentTab(c))
	h.render(c, "approvals", "Approvals", groups, err)
}

func (h *PageHandler) Settings(c *gin.Context) {
	h.render(c, "settings", "Store Settings", h.svc.Settings.Get(c.Request.Context(), middleware.CurrentTab(c)), nil)
}

func (h *PageHandler) UserManagement(c *gin.Context) {
	users, err := h.svc.Users.ListUsers(c.Request.Context(), middleware.CurrentTab(c))
	h.render(c, "user-management", "User Management", gin.H{"users": users, "permissions": model.AllPermissions}, err)
}

// NotFound doubles as the page for routes the user may not open
func (h *PageHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, Page{Name: "not-found", Title: "Page Not Found"})
}
