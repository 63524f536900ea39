package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Name        string   `json:"name" binding:"required"`
	Username    string   `json:"username" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Role        string   `json:"role" binding:"required,oneof=admin staff"`
	Password    string   `json:"password" binding:"required,min=6"`
	IsActive    *bool    `json:"is_active"`
	Permissions []string `json:"permissions"`
}

// UpdateUserRequest leaves the password unchanged when it is empty
type UpdateUserRequest struct {
	Name        string   `json:"name" binding:"required"`
	Username    string   `json:"username" binding:"required"`
	Email       string   `json:"email" binding:"required,email"`
	Role        string   `json:"role" binding:"required,oneof=admin staff"`
	Password    string   `json:"password" binding:"omitempty,min=6"`
	IsActive    *bool    `json:"is_active"`
	Permissions []string `json:"permissions"`
}

var ErrDeleteSelf = errors.New("you cannot delete your own account")

// UserService manages staff accounts; only admins reach it
type UserService interface {
	ListUsers(ctx context.Context, tab Tab) ([]model.User, error)
	CreateUser(ctx context.Context, tab Tab, req CreateUserRequest) (model.User, error)
	UpdateUser(ctx context.Context, tab Tab, id int64, req UpdateUserRequest) (model.User, error)
	DeleteUser(ctx context.Context, tab Tab, id int64) error
}

type userService struct{}

// NewUserService returns a new instance of UserService
func NewUserService() UserService {
	return &userService{}
}

func checkPermissions(perms []string) error {
	for _, p := range perms {
		if !slices.Contains(model.AllPermissions, p) {
			return &ValidationError{Message: "Unknown permission: " + p}
		}
	}
	return nil
}

func activeOrDefault(v *bool) bool {
	return v == nil || *v
}

func (s *userService) ListUsers(ctx context.Context, tab Tab) ([]model.User, error) {
	users, err := tab.Backend.Users.List(ctx).Unwrap()
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *userService) CreateUser(ctx context.Context, tab Tab, req CreateUserRequest) (model.User, error) {
	if err := checkPermissions(req.Permissions); err != nil {
		return model.User{}, err
	}
	return tab.Backend.Users.Create(ctx, model.UserInput{
		Name:        strings.TrimSpace(req.Name),
		Username:    strings.TrimSpace(req.Username),
		Email:       strings.TrimSpace(req.Email),
		Role:        req.Role,
		Password:    req.Password,
		IsActive:    activeOrDefault(req.IsActive),
		Permissions: req.Permissions,
	}).Unwrap()
}

func (s *userService) UpdateUser(ctx context.Context, tab Tab, id int64, req UpdateUserRequest) (model.User, error) {
	if err := checkPermissions(req.Permissions); err != nil {
		return model.User{}, err
	}
	return tab.Backend.Users.Update(ctx, id, model.UserInput{
		Name:        strings.TrimSpace(req.Name),
		Username:    strings.TrimSpace(req.Username),
		Email:       strings.TrimSpace(req.Email),
		Role:        req.Role,
		Password:    req.Password,
		IsActive:    activeOrDefault(req.IsActive),
		Permissions: req.Permissions,
	}).Unwrap()
}

func (s *userService) DeleteUser(ctx context.Context, tab Tab, id int64) error {
	if me := tab.Session.User(ctx); me != nil && me.ID == id {
		return ErrDeleteSelf
	}
	_, err := tab.Backend.Users.Delete(ctx, id).Unwrap()
	return err
}
