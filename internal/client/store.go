package client

import (
	"context"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// StoreAPI wraps /store-details
type StoreAPI struct {
	conn
}

func (a StoreAPI) Get(ctx context.Context) Result[model.StoreDetails] {
	return call[model.StoreDetails](ctx, a.conn, request{
		op: "store.get", method: http.MethodGet, path: "/store-details", fallback: "Failed to fetch store details",
	}, "storeDetails")
}

// Update also carries the backend's confirmation in Result.Message
func (a StoreAPI) Update(ctx context.Context, details model.StoreDetails) Result[model.StoreDetails] {
	return call[model.StoreDetails](ctx, a.conn, request{
		op: "store.update", method: http.MethodPut, path: "/store-details", body: details, fallback: "Failed to update store details",
	}, "storeDetails")
}
