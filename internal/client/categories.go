package client

import (
	"context"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// CategoriesAPI wraps /categories
type CategoriesAPI struct {
	conn
}

func (a CategoriesAPI) List(ctx context.Context) Result[[]model.Category] {
	return call[[]model.Category](ctx, a.conn, request{
		op: "categories.list", method: http.MethodGet, path: "/categories", fallback: "Failed to fetch categories",
	}, "categories")
}

func (a CategoriesAPI) Create(ctx context.Context, in model.Category) Result[model.Category] {
	return call[model.Category](ctx, a.conn, request{
		op: "categories.create", method: http.MethodPost, path: "/categories", body: in, fallback: "Failed to add category",
	}, "category")
}

func (a CategoriesAPI) Update(ctx context.Context, id int64, in model.Category) Result[model.Category] {
	return call[model.Category](ctx, a.conn, request{
		op:       "categories.update",
		method:   http.MethodPut,
		path:     idPath("/categories/%d", id),
		body:     in,
		fallback: "Failed to update category",
	}, "category")
}

func (a CategoriesAPI) Delete(ctx context.Context, id int64) Result[struct{}] {
	return call[struct{}](ctx, a.conn, request{
		op: "categories.delete", method: http.MethodDelete, path: idPath("/categories/%d", id), fallback: "Failed to delete category",
	})
}
