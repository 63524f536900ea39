package handler

import (
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", middleware.RequireAuth(), h.GetDashboard)

	reports := router.Group("/reports", middleware.RequirePermission(model.PermViewSalesHistory))
	{
		reports.GET("/analytics", h.GetSalesAnalytics)
		reports.GET("/backend", h.GetBackendReport)
	}
}

// GetDashboard never fails; sample figures replace backend data it cannot load
// @Summary      Dashboard statistics
// @Tags         statistics
// @Produce      json
// @Success      200  {object}  response.Response{data=model.DashboardStats}
// @Router       /actions/dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	stats := h.statisticsService.Dashboard(c.Request.Context(), middleware.CurrentTab(c))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// @Summary      Sales analytics
// @Tags         statistics
// @Produce      json
// @Param        range  query     string  false  "today, yesterday, week, month or all"
// @Success      200    {object}  response.Response{data=service.SalesAnalyticsView}
// @Router       /actions/reports/analytics [get]
func (h *StatisticsHandler) GetSalesAnalytics(c *gin.Context) {
	view := h.statisticsService.SalesAnalytics(c.Request.Context(), middleware.CurrentTab(c), c.DefaultQuery("range", service.RangeWeek))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// @Summary      Backend aggregates
// @Description  Passes the backend's dashboard, stats and top-items results through unchanged
// @Tags         statistics
// @Produce      json
// @Param        period  query     string  false  "Backend period name"
// @Success      200     {object}  response.Response{data=service.BackendReport}
// @Router       /actions/reports/backend [get]
func (h *StatisticsHandler) GetBackendReport(c *gin.Context) {
	report := h.statisticsService.BackendReport(c.Request.Context(), middleware.CurrentTab(c), c.DefaultQuery("period", "month"))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
