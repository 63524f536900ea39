package service

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/shopspring/decimal"
)

type CategoryRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Color string `json:"color"`
}

type CategoryService interface {
	List(ctx context.Context, tab Tab) ([]model.Category, error)
	ListWithStats(ctx context.Context, tab Tab, sortBy string) ([]model.CategoryStats, error)
	Create(ctx context.Context, tab Tab, req CategoryRequest) (model.Category, error)
	Update(ctx context.Context, tab Tab, id int64, req CategoryRequest) (model.Category, error)
	Delete(ctx context.Context, tab Tab, id int64) error
}

type categoryService struct {
	threshold int
}

func NewCategoryService(lowStockThreshold int) CategoryService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = model.DefaultLowStockThreshold
	}
	return &categoryService{threshold: lowStockThreshold}
}

func (s *categoryService) List(ctx context.Context, tab Tab) ([]model.Category, error) {
	categories, err := tab.Backend.Categories.List(ctx).Unwrap()
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

// ListWithStats joins categories with the item list to count items, stock value
// and low-stock entries per category
func (s *categoryService) ListWithStats(ctx context.Context, tab Tab, sortBy string) ([]model.CategoryStats, error) {
	categories, err := s.List(ctx, tab)
	if err != nil {
		return nil, err
	}
	items, err := allItems(ctx, tab)
	if err != nil {
		return nil, err
	}

	stats := make([]model.CategoryStats, 0, len(categories))
	for _, c := range categories {
		st := model.CategoryStats{Category: c, TotalValue: decimal.Zero}
		for _, item := range items {
			if item.Category != c.Name {
				continue
			}
			st.TotalItems++
			st.TotalValue = st.TotalValue.Add(item.StockValue())
			if item.IsLowStock(s.threshold) {
				st.LowStockItems++
			}
		}
		stats = append(stats, st)
	}
	sortCategoryStats(stats, sortBy)
	return stats, nil
}

func sortCategoryStats(stats []model.CategoryStats, key string) {
	desc := strings.HasSuffix(key, "_desc")
	key = strings.TrimSuffix(key, "_desc")

	byName := func(a, b model.CategoryStats) int { return strings.Compare(a.Category.Name, b.Category.Name) }
	less := byName
	switch key {
	case "items":
		less = func(a, b model.CategoryStats) int { return cmp.Compare(a.TotalItems, b.TotalItems) }
	case "value":
		less = func(a, b model.CategoryStats) int { return a.TotalValue.Cmp(b.TotalValue) }
	case "low_stock":
		less = func(a, b model.CategoryStats) int { return cmp.Compare(a.LowStockItems, b.LowStockItems) }
	case "name":
	default:
		desc = false
	}
	slices.SortStableFunc(stats, func(a, b model.CategoryStats) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

func categoryInput(req CategoryRequest) (model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Category{}, &ValidationError{Message: "Category name is required"}
	}
	color := req.Color
	if tag, ok := model.CategoryColors[color]; ok {
		color = tag
	}
	if color == "" {
		color = model.DefaultCategoryColor
	}
	if !model.ValidCategoryColor(color) {
		return model.Category{}, &ValidationError{Message: "Unknown category color"}
	}
	return model.Category{Name: name, Color: color}, nil
}

func (s *categoryService) Create(ctx context.Context, tab Tab, req CategoryRequest) (model.Category, error) {
	in, err := categoryInput(req)
	if err != nil {
		return model.Category{}, err
	}
	return tab.Backend.Categories.Create(ctx, in).Unwrap()
}

func (s *categoryService) Update(ctx context.Context, tab Tab, id int64, req CategoryRequest) (model.Category, error) {
	in, err := categoryInput(req)
	if err != nil {
		return model.Category{}, err
	}
	in.ID = id
	return tab.Backend.Categories.Update(ctx, id, in).Unwrap()
}

func (s *categoryService) Delete(ctx context.Context, tab Tab, id int64) error {
	_, err := tab.Backend.Categories.Delete(ctx, id).Unwrap()
	return err
}
