package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
	maxUpload       int64
}

func NewApprovalHandler(approvalService service.ApprovalService, maxUpload int64) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService, maxUpload: maxUpload}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/approvals", middleware.RequirePermission(model.PermApproveUploads))
	{
		approvals.GET("", h.ListApprovals)
		approvals.PUT("/:id/approve", h.Approve)
		approvals.PUT("/:id/reject", h.Reject)
	}

	router.POST("/inventory/uploads/:kind", middleware.RequirePermission(model.PermUploadExcel), h.Upload)
}

// @Summary      List approvals grouped by status
// @Tags         approvals
// @Produce      json
// @Success      200  {object}  response.Response{data=model.ApprovalGroups}
// @Router       /actions/approvals [get]
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	groups, err := h.approvalService.List(c.Request.Context(), middleware.CurrentTab(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, groups))
}

// @Summary      Approve a pending upload
// @Tags         approvals
// @Produce      json
// @Param        id   path      int  true  "Approval ID"
// @Success      200  {object}  response.Response{data=model.Approval}
// @Failure      409  {object}  response.Response
// @Router       /actions/approvals/{id}/approve [put]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	approval, err := h.approvalService.Approve(c.Request.Context(), middleware.CurrentTab(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// @Summary      Reject a pending upload
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Param        id       path      int                    true  "Approval ID"
// @Param        payload  body      service.RejectRequest  true  "Reason shown to the uploader"
// @Success      200      {object}  response.Response{data=model.Approval}
// @Failure      409      {object}  response.Response
// @Router       /actions/approvals/{id}/reject [put]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req service.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Please provide a reason for rejection"))
		return
	}
	approval, err := h.approvalService.Reject(c.Request.Context(), middleware.CurrentTab(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, approval))
}

// Upload imports a filled-in template. Admin uploads apply at once; others
// wait for approval.
// @Summary      Upload inventory spreadsheet
// @Tags         approvals
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind  path      string  true  "new_items or inventory_update"
// @Param        file  formData  file    true  "Filled-in .xlsx template"
// @Success      200   {object}  response.Response{data=service.UploadResult}
// @Failure      400   {object}  response.Response
// @Router       /actions/inventory/uploads/{kind} [post]
func (h *ApprovalHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Please select a file to upload"))
			return
		}
		badRequest(c, err)
		return
	}
	data, err := readPart(header, h.maxUpload)
	if err != nil {
		fail(c, err)
		return
	}
	result, err := h.approvalService.Upload(c.Request.Context(), middleware.CurrentTab(c), c.Param("kind"), header.Filename, bytes.NewReader(data))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
