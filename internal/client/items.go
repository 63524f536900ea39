package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// ItemList is the whole body of the item listing endpoints
type ItemList struct {
	Items      []model.Item `json:"items"`
	Total      int          `json:"total,omitempty"`
	Page       int          `json:"page,omitempty"`
	TotalPages int          `json:"totalPages,omitempty"`
}

// ItemsAPI wraps /items
type ItemsAPI struct {
	conn
}

// List passes params through as query filters
func (a ItemsAPI) List(ctx context.Context, params url.Values) Result[ItemList] {
	return call[ItemList](ctx, a.conn, request{
		op: "items.list", method: http.MethodGet, path: "/items", query: params, fallback: "Failed to fetch items",
	})
}

func (a ItemsAPI) Get(ctx context.Context, id int64) Result[model.Item] {
	return call[model.Item](ctx, a.conn, request{
		op: "items.get", method: http.MethodGet, path: idPath("/items/%d", id), fallback: "Failed to fetch item",
	}, "item")
}

func (a ItemsAPI) Create(ctx context.Context, in model.ItemInput) Result[model.Item] {
	return call[model.Item](ctx, a.conn, request{
		op: "items.create", method: http.MethodPost, path: "/items", body: in, fallback: "Failed to create item",
	}, "item")
}

func (a ItemsAPI) Update(ctx context.Context, id int64, in model.ItemInput) Result[model.Item] {
	return call[model.Item](ctx, a.conn, request{
		op: "items.update", method: http.MethodPut, path: idPath("/items/%d", id), body: in, fallback: "Failed to update item",
	}, "item")
}

func (a ItemsAPI) Delete(ctx context.Context, id int64) Result[struct{}] {
	return call[struct{}](ctx, a.conn, request{
		op: "items.delete", method: http.MethodDelete, path: idPath("/items/%d", id), fallback: "Failed to delete item",
	})
}

// UpdateStock applies an add, subtract or set operation to an item's stock
func (a ItemsAPI) UpdateStock(ctx context.Context, id int64, quantity int, operation string) Result[model.Item] {
	if operation == "" {
		operation = model.StockOpAdd
	}
	return call[model.Item](ctx, a.conn, request{
		op:       "items.update_stock",
		method:   http.MethodPatch,
		path:     idPath("/items/%d/stock", id),
		body:     map[string]any{"quantity": quantity, "operation": operation},
		fallback: "Failed to update stock",
	}, "item")
}

// LowStock lists items at or below threshold; zero means the default of 10
func (a ItemsAPI) LowStock(ctx context.Context, threshold int) Result[[]model.Item] {
	if threshold <= 0 {
		threshold = model.DefaultLowStockThreshold
	}
	return call[[]model.Item](ctx, a.conn, request{
		op:       "items.low_stock",
		method:   http.MethodGet,
		path:     "/items/low-stock",
		query:    url.Values{"threshold": {strconv.Itoa(threshold)}},
		fallback: "Failed to fetch low stock items",
	}, "items")
}

// Search merges the free-text query with any extra filters
func (a ItemsAPI) Search(ctx context.Context, query string, filters url.Values) Result[ItemList] {
	q := url.Values{}
	for k, v := range filters {
		q[k] = v
	}
	q.Set("q", query)
	return call[ItemList](ctx, a.conn, request{
		op: "items.search", method: http.MethodGet, path: "/items/search", query: q, fallback: "Search failed",
	})
}

// BulkUpdate sends several item patches in one call
func (a ItemsAPI) BulkUpdate(ctx context.Context, updates []model.ItemPatch) Result[map[string]any] {
	return call[map[string]any](ctx, a.conn, request{
		op:       "items.bulk_update",
		method:   http.MethodPost,
		path:     "/items/bulk-update",
		body:     map[string]any{"updates": updates},
		fallback: "Bulk update failed",
	})
}
