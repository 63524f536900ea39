// Package handler exposes the gateway's pages and JSON actions over gin.
package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/cart"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/logger"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/receipt"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// fail maps a service error to a status code and the shared envelope
func fail(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		backend    *client.Error
		render     *receipt.RenderError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, validation.Message, validation.Details))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Not found"))
	case errors.Is(err, model.ErrApprovalClosed),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, cart.ErrCheckoutInProgress):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, cart.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrDeleteSelf):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, receipt.ErrNoRenderer):
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, err.Error()))
	case errors.As(err, &render):
		logger.FromContext(c).Error("receipt rendering failed", zap.String("code", render.Code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to generate receipt"))
	case errors.As(err, &backend):
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, backend.Message))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}

// badRequest answers a binding failure, listing each invalid field
func badRequest(c *gin.Context, err error) {
	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, "Invalid request payload", middleware.ValidationMessages(invalid)))
		return
	}
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}

// idParam parses a positive integer path parameter, answering 400 otherwise
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, fmt.Sprintf("Invalid %s", name)))
		return 0, false
	}
	return id, true
}

// sendFile streams a generated download
func sendFile(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, contentType, data)
}

// formFile reads an optional uploaded file; a missing field is not an error
func formFile(c *gin.Context, field string, limit int64) (*service.ImageUpload, string, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	data, err := readPart(header, limit)
	if err != nil {
		return nil, "", err
	}
	return &service.ImageUpload{Data: data, ContentType: header.Header.Get("Content-Type")}, header.Filename, nil
}

func readPart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	if limit > 0 && header.Size > limit {
		return nil, &service.ValidationError{Message: fmt.Sprintf("File %s is too large", header.Filename)}
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
