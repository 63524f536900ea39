package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/imaging"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/pagination"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogue = map[string]any{"items": []map[string]any{
	{"id": 1, "name": "dune", "category": "Fiction", "description": "desert planet", "price": "12.50", "stock_quantity": 4},
	{"id": 2, "name": "Atlas", "category": "Reference", "price": "40", "stock_quantity": 0},
	{"id": 3, "name": "Calculus", "category": "Textbooks", "price": "55", "stock_quantity": 9},
	{"id": 4, "name": "Beowulf", "category": "Fiction", "price": "8", "stock_quantity": 30},
}}

func itemNames(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Name)
	}
	return out
}

func TestStockLevel(t *testing.T) {
	assert.Equal(t, LevelCritical, StockLevel(0))
	assert.Equal(t, LevelVeryLow, StockLevel(5))
	assert.Equal(t, LevelLow, StockLevel(6))
}

func TestListItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", serveJSON(catalogue))
	tab := newTab(t, mux, staffUser)
	svc := NewInventoryService(imaging.NewNormalizer(imaging.Options{}), nil, 10, nil)
	ctx := context.Background()

	view, err := svc.ListItems(ctx, tab, ItemQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Atlas", "Beowulf", "Calculus", "dune"}, itemNames(view.Items), "case-insensitive name order")
	assert.Equal(t, []string{"Fiction", "Reference", "Textbooks"}, view.Categories)

	view, err = svc.ListItems(ctx, tab, ItemQuery{Category: "Fiction", Sort: "price_desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dune", "Beowulf"}, itemNames(view.Items))

	view, err = svc.ListItems(ctx, tab, ItemQuery{Search: "DESERT"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dune"}, itemNames(view.Items))

	view, err = svc.ListItems(ctx, tab, ItemQuery{Sort: "stock", Page: pagination.New(2, 3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Beowulf"}, itemNames(view.Items))
	assert.Equal(t, 4, view.Total)
	assert.Equal(t, 2, view.TotalPages)
}

func TestLowStock(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", serveJSON(catalogue))
	svc := NewInventoryService(nil, nil, 10, nil)

	view, err := svc.LowStock(context.Background(), newTab(t, mux, staffUser), "")
	require.NoError(t, err)

	assert.Equal(t, 10, view.Threshold)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 1, view.OutOfStock)
	assert.Equal(t, 1, view.VeryLow)
	require.Len(t, view.Items, 3)
	assert.Equal(t, "Atlas", view.Items[0].Name)
	assert.Equal(t, LevelCritical, view.Items[0].Level)
	assert.Equal(t, LevelLow, view.Items[2].Level)
}

func TestCreateItemValidation(t *testing.T) {
	mux := http.NewServeMux()
	called := false
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) { called = true })
	svc := NewInventoryService(imaging.NewNormalizer(imaging.Options{}), nil, 10, nil)

	_, err := svc.CreateItem(context.Background(), newTab(t, mux, adminUser), ItemRequest{Price: "-3"}, nil)

	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, invalid.Details, "Name is required")
	assert.Contains(t, invalid.Details, "Price must be a non-negative number")
	assert.False(t, called)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateItemNormalizesImage(t *testing.T) {
	f := gofakeit.New(7)
	name := f.BookTitle()

	var got model.ItemInput
	mux := http.NewServeMux()
	mux.HandleFunc("POST /items", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]any{"item": map[string]any{"id": 9, "name": got.Name}})
	})
	hub := &recordingPublisher{}
	svc := NewInventoryService(imaging.NewNormalizer(imaging.Options{}), hub, 10, nil)

	item, err := svc.CreateItem(context.Background(), newTab(t, mux, adminUser), ItemRequest{
		Name: " " + name + " ", Category: "Fiction", Price: "12.499", StockQuantity: 3,
	}, &ImageUpload{Data: pngBytes(t, 1600, 400), ContentType: "image/png"})
	require.NoError(t, err)

	assert.Equal(t, int64(9), item.ID)
	assert.Equal(t, name, got.Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(got.Price))
	assert.True(t, strings.HasPrefix(got.ImageURL, "data:image/jpeg;base64,"))
	assert.Equal(t, []string{ws.EventInventoryChanged}, hub.types())
}

func TestCreateItemRejectsNonImage(t *testing.T) {
	svc := NewInventoryService(imaging.NewNormalizer(imaging.Options{}), nil, 10, nil)

	_, err := svc.CreateItem(context.Background(), newTab(t, http.NewServeMux(), adminUser), ItemRequest{
		Name: "Dune", Category: "Fiction", Price: "10",
	}, &ImageUpload{Data: []byte("%PDF-1.4"), ContentType: "application/pdf"})

	var invalid *ValidationError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Please select a valid image file", invalid.Message)
}

func TestUpdateStockAnnouncesLowStock(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /items/{id}/stock", serveJSON(map[string]any{"item": map[string]any{"id": 3, "name": "Calculus", "stock_quantity": 2}}))
	hub := &recordingPublisher{}
	svc := NewInventoryService(nil, hub, 10, nil)

	_, err := svc.UpdateStock(context.Background(), newTab(t, mux, adminUser), 3, StockRequest{Quantity: 2, Operation: model.StockOpSet})
	require.NoError(t, err)

	require.Equal(t, []string{ws.EventStockLow}, hub.types())
	assert.Equal(t, model.PermViewInventory, hub.events[0].Permission)
}

func TestCategoryStats(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", serveJSON(catalogue))
	mux.HandleFunc("GET /categories", serveJSON(map[string]any{"categories": []map[string]any{
		{"id": 1, "name": "Fiction", "color": model.CategoryColors["Green"]},
		{"id": 2, "name": "Reference"},
		{"id": 3, "name": "Textbooks"},
	}}))
	svc := NewCategoryService(10)

	stats, err := svc.ListWithStats(context.Background(), newTab(t, mux, adminUser), "value_desc")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "Textbooks", stats[0].Category.Name)
	assert.True(t, decimal.NewFromInt(495).Equal(stats[0].TotalValue))
	assert.Equal(t, "Fiction", stats[1].Category.Name)
	assert.Equal(t, 2, stats[1].TotalItems)
	assert.Equal(t, 1, stats[1].LowStockItems)
	assert.Equal(t, "Reference", stats[2].Category.Name)
}

func TestCategoryColor(t *testing.T) {
	var got model.Category
	mux := http.NewServeMux()
	mux.HandleFunc("POST /categories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusCreated, map[string]any{"category": got})
	})
	svc := NewCategoryService(10)
	tab := newTab(t, mux, adminUser)

	_, err := svc.Create(context.Background(), tab, CategoryRequest{Name: "Poetry"})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCategoryColor, got.Color)

	_, err = svc.Create(context.Background(), tab, CategoryRequest{Name: "Poetry", Color: "Pink"})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryColors["Pink"], got.Color)

	_, err = svc.Create(context.Background(), tab, CategoryRequest{Name: "Poetry", Color: "Plaid"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
