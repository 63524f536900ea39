package service

import (
	"context"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/imaging"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"go.uber.org/zap"
)

type StoreSettingsRequest struct {
	Name          string `json:"name" form:"name" binding:"required,max=120"`
	Contact       string `json:"contact" form:"contact"`
	Website       string `json:"website" form:"website" binding:"omitempty,url"`
	Address       string `json:"address" form:"address"`
	Fax           string `json:"fax" form:"fax"`
	Email         string `json:"email" form:"email" binding:"omitempty,email"`
	TaxNumber     string `json:"tax_number" form:"tax_number"`
	ReceiptFooter string `json:"receipt_footer" form:"receipt_footer"`
	RemoveLogo    bool   `json:"remove_logo" form:"remove_logo"`
}

// SettingsView is the store settings page
type SettingsView struct {
	Details   model.StoreDetails `json:"details"`
	IsDefault bool               `json:"is_default"`
	Notice    string             `json:"notice,omitempty"`
}

type SettingsService interface {
	Get(ctx context.Context, tab Tab) SettingsView
	Update(ctx context.Context, tab Tab, req StoreSettingsRequest, logo *ImageUpload) (model.StoreDetails, error)
}

type settingsService struct {
	images *imaging.Normalizer
	log    *zap.Logger
}

func NewSettingsService(images *imaging.Normalizer, log *zap.Logger) SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &settingsService{images: images, log: log}
}

// Get falls back to the default details when the backend has none
func (s *settingsService) Get(ctx context.Context, tab Tab) SettingsView {
	details, err := tab.Backend.Store.Get(ctx).Unwrap()
	if err != nil {
		s.log.Debug("store details unavailable", zap.Error(err))
		return SettingsView{Details: model.DefaultStoreDetails(), IsDefault: true, Notice: err.Error()}
	}
	if details.Name == "" {
		details.Name = details.StoreName()
	}
	return SettingsView{Details: details}
}

func (s *settingsService) Update(ctx context.Context, tab Tab, req StoreSettingsRequest, logo *ImageUpload) (model.StoreDetails, error) {
	details := model.StoreDetails{
		Name:          strings.TrimSpace(req.Name),
		Contact:       strings.TrimSpace(req.Contact),
		Website:       strings.TrimSpace(req.Website),
		Address:       strings.TrimSpace(req.Address),
		Fax:           strings.TrimSpace(req.Fax),
		Email:         strings.TrimSpace(req.Email),
		TaxNumber:     strings.TrimSpace(req.TaxNumber),
		ReceiptFooter: req.ReceiptFooter,
	}

	switch {
	case logo != nil && len(logo.Data) > 0:
		uri, err := s.images.Normalize(logo.Data, logo.ContentType)
		if err != nil {
			return model.StoreDetails{}, &ValidationError{Message: imageMessage(err)}
		}
		details.Logo = uri
	case !req.RemoveLogo:
		if current, err := tab.Backend.Store.Get(ctx).Unwrap(); err == nil {
			details.Logo = current.Logo
		}
	}

	return tab.Backend.Store.Update(ctx, details).Unwrap()
}
