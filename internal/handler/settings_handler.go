package handler

import (
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
	maxUpload       int64
}

func NewSettingsHandler(settingsService service.SettingsService, maxUpload int64) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, maxUpload: maxUpload}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", middleware.RequireAuth(), h.Get)
		settings.PUT("", middleware.RequirePermission(model.PermManageSystem), h.Update)
	}
}

// @Summary      Store details
// @Tags         settings
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SettingsView}
// @Router       /actions/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.settingsService.Get(c.Request.Context(), middleware.CurrentTab(c))))
}

// Update saves the store details; an uploaded logo is normalized before it is stored
// @Summary      Update store details
// @Tags         settings
// @Accept       multipart/form-data
// @Produce      json
// @Param        name            formData  string  true   "Store name"
// @Param        contact         formData  string  false  "Phone"
// @Param        website         formData  string  false  "Website"
// @Param        address         formData  string  false  "Address"
// @Param        email           formData  string  false  "Email"
// @Param        tax_number      formData  string  false  "Tax number"
// @Param        receipt_footer  formData  string  false  "Receipt footer"
// @Param        remove_logo     formData  bool    false  "Drop the current logo"
// @Param        logo            formData  file    false  "Logo image"
// @Success      200             {object}  response.Response{data=model.StoreDetails}
// @Failure      400             {object}  response.Response
// @Router       /actions/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var req service.StoreSettingsRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	logo, _, err := formFile(c, "logo", h.maxUpload)
	if err != nil {
		fail(c, err)
		return
	}
	details, err := h.settingsService.Update(c.Request.Context(), middleware.CurrentTab(c), req, logo)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, details))
}
