package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// SaleList is the whole body of the sale listing endpoints
type SaleList struct {
	Sales      []model.Sale `json:"sales"`
	Total      int          `json:"total,omitempty"`
	Page       int          `json:"page,omitempty"`
	TotalPages int          `json:"totalPages,omitempty"`
}

// SalesAPI wraps /sales
type SalesAPI struct {
	conn
}

func (a SalesAPI) List(ctx context.Context, params url.Values) Result[SaleList] {
	return call[SaleList](ctx, a.conn, request{
		op: "sales.list", method: http.MethodGet, path: "/sales", query: params, fallback: "Failed to fetch sales",
	})
}

func (a SalesAPI) Get(ctx context.Context, id int64) Result[model.Sale] {
	return call[model.Sale](ctx, a.conn, request{
		op: "sales.get", method: http.MethodGet, path: idPath("/sales/%d", id), fallback: "Failed to fetch sale",
	}, "sale")
}

// Create records a sale; the cart uses it at checkout
func (a SalesAPI) Create(ctx context.Context, sale model.NewSale) Result[model.Sale] {
	return call[model.Sale](ctx, a.conn, request{
		op: "sales.create", method: http.MethodPost, path: "/sales", body: sale, fallback: "Failed to create sale",
	}, "sale")
}

// Daily summarizes one day's sales; an empty date means today
func (a SalesAPI) Daily(ctx context.Context, date string) Result[SaleList] {
	var q url.Values
	if date != "" {
		q = url.Values{"date": {date}}
	}
	return call[SaleList](ctx, a.conn, request{
		op: "sales.daily", method: http.MethodGet, path: "/sales/daily", query: q, fallback: "Failed to fetch daily sales",
	})
}

func (a SalesAPI) ByDateRange(ctx context.Context, startDate, endDate string) Result[SaleList] {
	return call[SaleList](ctx, a.conn, request{
		op:       "sales.range",
		method:   http.MethodGet,
		path:     "/sales/range",
		query:    url.Values{"startDate": {startDate}, "endDate": {endDate}},
		fallback: "Failed to fetch sales by date range",
	})
}

func (a SalesAPI) Stats(ctx context.Context, period string) Result[map[string]any] {
	if period == "" {
		period = "month"
	}
	return call[map[string]any](ctx, a.conn, request{
		op:       "sales.stats",
		method:   http.MethodGet,
		path:     "/sales/stats",
		query:    url.Values{"period": {period}},
		fallback: "Failed to fetch sales statistics",
	})
}

func (a SalesAPI) TopItems(ctx context.Context, limit int, period string) Result[map[string]any] {
	if limit <= 0 {
		limit = 10
	}
	if period == "" {
		period = "month"
	}
	return call[map[string]any](ctx, a.conn, request{
		op:       "sales.top_items",
		method:   http.MethodGet,
		path:     "/sales/top-items",
		query:    url.Values{"limit": {strconv.Itoa(limit)}, "period": {period}},
		fallback: "Failed to fetch top selling items",
	})
}

func (a SalesAPI) ByStaff(ctx context.Context, staffID int64, params url.Values) Result[SaleList] {
	return call[SaleList](ctx, a.conn, request{
		op:       "sales.by_staff",
		method:   http.MethodGet,
		path:     idPath("/sales/staff/%d", staffID),
		query:    params,
		fallback: "Failed to fetch staff sales",
	})
}

func (a SalesAPI) Void(ctx context.Context, id int64, reason string) Result[map[string]any] {
	return call[map[string]any](ctx, a.conn, request{
		op:       "sales.void",
		method:   http.MethodPost,
		path:     idPath("/sales/%d/void", id),
		body:     map[string]string{"reason": reason},
		fallback: "Failed to void sale",
	})
}
