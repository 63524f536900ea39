package service

import (
	"cmp"
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/imaging"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/spreadsheet"
	ws "github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"
	"github.com/Daveman-1/BookstoreFrontEnd/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DTOs
type ItemRequest struct {
	Name          string `json:"name" form:"name" binding:"required"`
	Category      string `json:"category" form:"category" binding:"required"`
	Description   string `json:"description" form:"description"`
	Price         string `json:"price" form:"price" binding:"required,price"`
	StockQuantity int    `json:"stock_quantity" form:"stock_quantity" binding:"min=0"`
	MinStockLevel int    `json:"min_stock_level" form:"min_stock_level" binding:"min=0"`
	// KeepImage leaves the current image in place on update when no file is sent
	KeepImage bool `json:"keep_image" form:"keep_image"`
}

type StockRequest struct {
	Quantity  int    `json:"quantity" binding:"min=0"`
	Operation string `json:"operation" binding:"omitempty,oneof=add subtract set"`
}

// ImageUpload is a raw file as received from the browser
type ImageUpload struct {
	Data        []byte
	ContentType string
}

type ItemQuery struct {
	Search   string
	Category string
	Sort     string
	Page     pagination.Params
}

// ItemsView is the view-items page
type ItemsView struct {
	pagination.Page[model.Item]
	Categories []string `json:"categories"`
}

// LowStockView is the low-stock alerts page
type LowStockView struct {
	Items      []LowStockItem `json:"items"`
	Threshold  int            `json:"threshold"`
	Total      int            `json:"total"`
	OutOfStock int            `json:"out_of_stock"`
	VeryLow    int            `json:"very_low"`
}

// LowStockItem is an item with its alert level
type LowStockItem struct {
	model.Item
	Level string `json:"level"`
}

// Low stock alert levels
const (
	LevelCritical = "Critical"
	LevelVeryLow  = "Very Low"
	LevelLow      = "Low"
)

// StockLevel grades an item already known to be low on stock
func StockLevel(stock int) string {
	switch {
	case stock <= 0:
		return LevelCritical
	case stock <= 5:
		return LevelVeryLow
	default:
		return LevelLow
	}
}

type InventoryService interface {
	ListItems(ctx context.Context, tab Tab, q ItemQuery) (ItemsView, error)
	GetItem(ctx context.Context, tab Tab, id int64) (model.Item, error)
	CreateItem(ctx context.Context, tab Tab, req ItemRequest, image *ImageUpload) (model.Item, error)
	UpdateItem(ctx context.Context, tab Tab, id int64, req ItemRequest, image *ImageUpload) (model.Item, error)
	DeleteItem(ctx context.Context, tab Tab, id int64) error
	UpdateStock(ctx context.Context, tab Tab, id int64, req StockRequest) (model.Item, error)
	LowStock(ctx context.Context, tab Tab, sortBy string) (LowStockView, error)
	ExportInventory(ctx context.Context, tab Tab) ([]byte, error)
	NewInventoryTemplate() ([]byte, error)
	UpdateTemplate(ctx context.Context, tab Tab) ([]byte, error)
}

type inventoryService struct {
	images    *imaging.Normalizer
	hub       Publisher
	threshold int
	log       *zap.Logger
}

func NewInventoryService(images *imaging.Normalizer, hub Publisher, lowStockThreshold int, log *zap.Logger) InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = model.DefaultLowStockThreshold
	}
	return &inventoryService{images: images, hub: publisherOrNop(hub), threshold: lowStockThreshold, log: log}
}

// allItems fetches the full item collection
func allItems(ctx context.Context, tab Tab) ([]model.Item, error) {
	list, err := tab.Backend.Items.List(ctx, url.Values{}).Unwrap()
	if err != nil {
		return nil, err
	}
	if list.Items == nil {
		return []model.Item{}, nil
	}
	return list.Items, nil
}

func matchesSearch(item model.Item, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(item.Name), term) ||
		strings.Contains(strings.ToLower(item.Description), term)
}

// sortItems orders items by name, price, stock or category, with _desc variants.
// Unknown keys fall back to fallback.
func sortItems(items []model.Item, key, fallback string) {
	desc := strings.HasSuffix(key, "_desc")
	key = strings.TrimSuffix(key, "_desc")

	var less func(a, b model.Item) int
	switch key {
	case "name":
		less = func(a, b model.Item) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case "price":
		less = func(a, b model.Item) int { return a.Price.Cmp(b.Price) }
	case "stock":
		less = func(a, b model.Item) int { return cmp.Compare(a.StockQuantity, b.StockQuantity) }
	case "category":
		less = func(a, b model.Item) int { return strings.Compare(a.Category, b.Category) }
	default:
		if fallback == "" {
			return
		}
		sortItems(items, fallback, "")
		return
	}
	slices.SortStableFunc(items, func(a, b model.Item) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func (s *inventoryService) ListItems(ctx context.Context, tab Tab, q ItemQuery) (ItemsView, error) {
	items, err := allItems(ctx, tab)
	if err != nil {
		return ItemsView{}, err
	}

	categories := make([]string, 0)
	filtered := make([]model.Item, 0, len(items))
	for _, item := range items {
		if item.Category != "" && !slices.Contains(categories, item.Category) {
			categories = append(categories, item.Category)
		}
		if !matchesSearch(item, strings.TrimSpace(q.Search)) {
			continue
		}
		if q.Category != "" && item.Category != q.Category {
			continue
		}
		filtered = append(filtered, item)
	}
	slices.Sort(categories)

	sortKey := q.Sort
	if sortKey == "" {
		sortKey = "name"
	}
	sortItems(filtered, sortKey, "")

	if q.Page.Limit == 0 {
		q.Page = pagination.New(pagination.DefaultPage, pagination.DefaultLimit)
	}
	return ItemsView{Page: pagination.Apply(filtered, q.Page), Categories: categories}, nil
}

func (s *inventoryService) GetItem(ctx context.Context, tab Tab, id int64) (model.Item, error) {
	return tab.Backend.Items.Get(ctx, id).Unwrap()
}

func (s *inventoryService) toInput(req ItemRequest, image *ImageUpload) (model.ItemInput, error) {
	var problems []string
	if strings.TrimSpace(req.Name) == "" {
		problems = append(problems, "Name is required")
	}
	if strings.TrimSpace(req.Category) == "" {
		problems = append(problems, "Category is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		problems = append(problems, "Price must be a non-negative number")
	}
	if req.StockQuantity < 0 {
		problems = append(problems, "Stock must be a non-negative whole number")
	}
	if len(problems) > 0 {
		return model.ItemInput{}, &ValidationError{Message: "Please correct the highlighted fields", Details: problems}
	}

	in := model.ItemInput{
		Name:          strings.TrimSpace(req.Name),
		Category:      strings.TrimSpace(req.Category),
		Description:   strings.TrimSpace(req.Description),
		Price:         price.Round(2),
		StockQuantity: req.StockQuantity,
		MinStockLevel: req.MinStockLevel,
	}
	if image != nil && len(image.Data) > 0 {
		uri, err := s.images.Normalize(image.Data, image.ContentType)
		if err != nil {
			return model.ItemInput{}, &ValidationError{Message: imageMessage(err)}
		}
		in.ImageURL = uri
	}
	return in, nil
}

func (s *inventoryService) CreateItem(ctx context.Context, tab Tab, req ItemRequest, image *ImageUpload) (model.Item, error) {
	in, err := s.toInput(req, image)
	if err != nil {
		return model.Item{}, err
	}
	item, err := tab.Backend.Items.Create(ctx, in).Unwrap()
	if err != nil {
		return model.Item{}, err
	}
	s.hub.Publish(ws.Event{Type: ws.EventInventoryChanged, Data: map[string]any{"action": "created", "item": item}})
	return item, nil
}

func (s *inventoryService) UpdateItem(ctx context.Context, tab Tab, id int64, req ItemRequest, image *ImageUpload) (model.Item, error) {
	in, err := s.toInput(req, image)
	if err != nil {
		return model.Item{}, err
	}
	if in.ImageURL == "" && req.KeepImage {
		current, err := tab.Backend.Items.Get(ctx, id).Unwrap()
		if err != nil {
			return model.Item{}, err
		}
		in.ImageURL = current.ImageURL
	}
	item, err := tab.Backend.Items.Update(ctx, id, in).Unwrap()
	if err != nil {
		return model.Item{}, err
	}
	s.hub.Publish(ws.Event{Type: ws.EventInventoryChanged, Data: map[string]any{"action": "updated", "item": item}})
	s.checkStock(item)
	return item, nil
}

func (s *inventoryService) DeleteItem(ctx context.Context, tab Tab, id int64) error {
	if _, err := tab.Backend.Items.Delete(ctx, id).Unwrap(); err != nil {
		return err
	}
	s.hub.Publish(ws.Event{Type: ws.EventInventoryChanged, Data: map[string]any{"action": "deleted", "id": id}})
	return nil
}

func (s *inventoryService) UpdateStock(ctx context.Context, tab Tab, id int64, req StockRequest) (model.Item, error) {
	item, err := tab.Backend.Items.UpdateStock(ctx, id, req.Quantity, req.Operation).Unwrap()
	if err != nil {
		return model.Item{}, err
	}
	s.checkStock(item)
	return item, nil
}

// checkStock announces items that dropped to the low-stock threshold
func (s *inventoryService) checkStock(item model.Item) {
	if item.ID == 0 || !item.IsLowStock(s.threshold) {
		return
	}
	s.hub.Publish(ws.Event{
		Type:       ws.EventStockLow,
		Permission: model.PermViewInventory,
		Data: map[string]any{
			"item_id": item.ID,
			"name":    item.Name,
			"stock":   item.StockQuantity,
			"level":   StockLevel(item.StockQuantity),
		},
	})
}

func (s *inventoryService) LowStock(ctx context.Context, tab Tab, sortBy string) (LowStockView, error) {
	items, err := allItems(ctx, tab)
	if err != nil {
		return LowStockView{}, err
	}

	low := make([]model.Item, 0)
	for _, item := range items {
		if item.IsLowStock(s.threshold) {
			low = append(low, item)
		}
	}
	if sortBy == "" {
		sortBy = "stock"
	}
	sortItems(low, sortBy, "stock")

	view := LowStockView{Items: make([]LowStockItem, 0, len(low)), Threshold: s.threshold, Total: len(low)}
	for _, item := range low {
		level := StockLevel(item.StockQuantity)
		switch level {
		case LevelCritical:
			view.OutOfStock++
		case LevelVeryLow:
			view.VeryLow++
		}
		view.Items = append(view.Items, LowStockItem{Item: item, Level: level})
	}
	return view, nil
}

func (s *inventoryService) ExportInventory(ctx context.Context, tab Tab) ([]byte, error) {
	items, err := allItems(ctx, tab)
	if err != nil {
		return nil, err
	}
	data, err := spreadsheet.ExportInventory(items)
	if err != nil {
		return nil, fmt.Errorf("export inventory: %w", err)
	}
	return data, nil
}

func (s *inventoryService) NewInventoryTemplate() ([]byte, error) {
	return spreadsheet.NewInventoryTemplate()
}

func (s *inventoryService) UpdateTemplate(ctx context.Context, tab Tab) ([]byte, error) {
	items, err := allItems(ctx, tab)
	if err != nil {
		return nil, err
	}
	return spreadsheet.InventoryUpdateTemplate(items)
}
