package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUser(t *testing.T) {
	var deleted []string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		deleted = append(deleted, r.PathValue("id"))
		writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
	})
	tab := newTab(t, mux, adminUser)
	svc := NewUserService()

	err := svc.DeleteUser(context.Background(), tab, adminUser.ID)
	assert.True(t, errors.Is(err, ErrDeleteSelf))

	require.NoError(t, svc.DeleteUser(context.Background(), tab, 9))
	assert.Equal(t, []string{"9"}, deleted)
}

func TestCreateUser(t *testing.T) {
	var sent model.UserInput
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		writeJSON(w, http.StatusCreated, map[string]any{"user": map[string]any{
			"id": 12, "name": sent.Name, "username": sent.Username, "role": sent.Role, "permissions": sent.Permissions,
		}})
	})
	tab := newTab(t, mux, adminUser)
	svc := NewUserService()

	_, err := svc.CreateUser(context.Background(), tab, CreateUserRequest{
		Name: "Kofi", Username: "kofi", Email: "kofi@books.test", Role: model.RoleStaff, Password: "secret1",
		Permissions: []string{"launch_rockets"},
	})
	var invalid *ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "Unknown permission: launch_rockets", invalid.Message)

	user, err := svc.CreateUser(context.Background(), tab, CreateUserRequest{
		Name: " Kofi ", Username: "kofi", Email: "kofi@books.test", Role: model.RoleStaff, Password: "secret1",
		Permissions: []string{model.PermManageSales},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), user.ID)
	assert.Equal(t, "Kofi", sent.Name)
	assert.True(t, sent.IsActive)
	assert.Equal(t, []string{model.PermManageSales}, sent.Permissions)
}

func TestListUsersNeverNil(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", serveJSON(map[string]any{"users": nil}))
	users, err := NewUserService().ListUsers(context.Background(), newTab(t, mux, adminUser))
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}
