package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/imaging"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFallBackToDefaults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /store-details", failWith(http.StatusNotFound, "Store details not configured"))

	view := NewSettingsService(imaging.NewNormalizer(imaging.Options{}), nil).Get(context.Background(), newTab(t, mux, adminUser))
	assert.True(t, view.IsDefault)
	assert.Equal(t, model.DefaultStoreName, view.Details.Name)
	assert.Equal(t, "Store details not configured", view.Notice)
}

func storeBackend(t *testing.T, saved *model.StoreDetails) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /store-details", serveJSON(map[string]any{"storeDetails": map[string]any{
		"name": "Campus Books", "logo": "data:image/jpeg;base64,AAAA",
	}}))
	mux.HandleFunc("PUT /store-details", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(saved)
		writeJSON(w, http.StatusOK, map[string]any{"storeDetails": saved})
	})
	return mux
}

func TestSettingsUpdateLogo(t *testing.T) {
	svc := NewSettingsService(imaging.NewNormalizer(imaging.Options{}), nil)
	ctx := context.Background()

	t.Run("keeps current logo", func(t *testing.T) {
		var saved model.StoreDetails
		details, err := svc.Update(ctx, newTab(t, storeBackend(t, &saved), adminUser),
			StoreSettingsRequest{Name: "  Campus Books ", Email: "shop@campus.test"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Campus Books", details.Name)
		assert.Equal(t, "data:image/jpeg;base64,AAAA", saved.Logo)
	})

	t.Run("removes logo", func(t *testing.T) {
		var saved model.StoreDetails
		_, err := svc.Update(ctx, newTab(t, storeBackend(t, &saved), adminUser),
			StoreSettingsRequest{Name: "Campus Books", RemoveLogo: true}, nil)
		require.NoError(t, err)
		assert.Empty(t, saved.Logo)
	})

	t.Run("normalizes new logo", func(t *testing.T) {
		var saved model.StoreDetails
		_, err := svc.Update(ctx, newTab(t, storeBackend(t, &saved), adminUser),
			StoreSettingsRequest{Name: "Campus Books"}, &ImageUpload{Data: pngBytes(t, 1200, 900), ContentType: "image/png"})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(saved.Logo, "data:image/jpeg;base64,"))
	})

	t.Run("rejects non-image logo", func(t *testing.T) {
		var saved model.StoreDetails
		_, err := svc.Update(ctx, newTab(t, storeBackend(t, &saved), adminUser),
			StoreSettingsRequest{Name: "Campus Books"}, &ImageUpload{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"})
		var invalid *ValidationError
		require.ErrorAs(t, err, &invalid)
		assert.Empty(t, saved.Name)
	})
}
