package client

import (
	"context"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// UsersAPI wraps /users
type UsersAPI struct {
	conn
}

func (a UsersAPI) List(ctx context.Context) Result[[]model.User] {
	return call[[]model.User](ctx, a.conn, request{
		op: "users.list", method: http.MethodGet, path: "/users", fallback: "Failed to fetch users",
	}, "users")
}

func (a UsersAPI) Create(ctx context.Context, in model.UserInput) Result[model.User] {
	return call[model.User](ctx, a.conn, request{
		op: "users.create", method: http.MethodPost, path: "/users", body: in, fallback: "Failed to save user",
	}, "user")
}

func (a UsersAPI) Update(ctx context.Context, id int64, in model.UserInput) Result[model.User] {
	return call[model.User](ctx, a.conn, request{
		op: "users.update", method: http.MethodPut, path: idPath("/users/%d", id), body: in, fallback: "Failed to save user",
	}, "user")
}

func (a UsersAPI) Delete(ctx context.Context, id int64) Result[struct{}] {
	return call[struct{}](ctx, a.conn, request{
		op: "users.delete", method: http.MethodDelete, path: idPath("/users/%d", id), fallback: "Failed to delete user",
	})
}
