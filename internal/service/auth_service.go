package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/cart"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"go.uber.org/zap"
)

// DTOs
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

// ProfileView is what the header and profile page show
type ProfileView struct {
	User        model.User `json:"user"`
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
}

type AuthService interface {
	Login(ctx context.Context, tab Tab, req LoginRequest) (model.User, error)
	Logout(ctx context.Context, tab Tab)
	Profile(ctx context.Context, tab Tab) (ProfileView, error)
	Refresh(ctx context.Context, tab Tab) error
	CheckSession(ctx context.Context, tab Tab) (model.User, error)
	ChangePassword(ctx context.Context, tab Tab, req ChangePasswordRequest) error
}

type authService struct {
	carts *cart.Registry
	log   *zap.Logger
}

func NewAuthService(carts *cart.Registry, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{carts: carts, log: log}
}

// Login signs in against the backend (or the demo accounts) and stores the
// token and profile in the tab session
func (s *authService) Login(ctx context.Context, tab Tab, req LoginRequest) (model.User, error) {
	data, err := tab.Backend.Auth.Login(ctx, req.Username, req.Password).Unwrap()
	if err != nil {
		return model.User{}, err
	}
	if data.Token == "" || data.User.Role == "" {
		return model.User{}, errors.New("login response is missing token or role")
	}
	if err := tab.Session.Save(ctx, data.Token, data.User); err != nil {
		return model.User{}, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("user signed in", zap.String("username", data.User.Username), zap.String("role", data.User.Role))
	return data.User, nil
}

// Logout always ends the local session, whatever the backend answers
func (s *authService) Logout(ctx context.Context, tab Tab) {
	if r := tab.Backend.Auth.Logout(ctx); !r.Success {
		s.log.Debug("backend logout failed", zap.String("error", r.Error))
	}
	if err := tab.Session.Clear(ctx); err != nil {
		s.log.Warn("clear session", zap.Error(err))
	}
	if s.carts != nil {
		s.carts.Drop(tab.ID)
	}
}

// Profile prefers the backend's copy and falls back to the cached profile
func (s *authService) Profile(ctx context.Context, tab Tab) (ProfileView, error) {
	user, err := tab.Backend.Auth.Profile(ctx).Unwrap()
	if err != nil || user.Role == "" {
		cached := tab.Session.User(ctx)
		if cached == nil {
			if err == nil {
				err = errors.New("profile is missing role")
			}
			return ProfileView{}, err
		}
		s.log.Debug("using cached profile", zap.Error(err))
		user = *cached
	}
	if user.Name == "" {
		user.Name = user.FallbackName()
	}

	perms := user.Permissions
	if user.IsAdmin() {
		perms = model.AllPermissions
	}
	email := user.Email
	if email == "" {
		email = "No email"
	}
	return ProfileView{
		User:        user,
		DisplayName: user.FallbackName(),
		Email:       email,
		Role:        user.Role,
		Permissions: perms,
	}, nil
}

// Refresh swaps the bearer token for a new one
func (s *authService) Refresh(ctx context.Context, tab Tab) error {
	_, err := tab.Backend.Auth.Refresh(ctx).Unwrap()
	return err
}

// CheckSession asks the backend whether the token is still good; on success the
// cached profile is refreshed
func (s *authService) CheckSession(ctx context.Context, tab Tab) (model.User, error) {
	user, err := tab.Backend.Auth.CheckSession(ctx).Unwrap()
	if err != nil {
		return model.User{}, err
	}
	if user.Role != "" {
		if err := tab.Session.Save(ctx, tab.Session.Token(ctx), user); err != nil {
			s.log.Warn("refresh cached profile", zap.Error(err))
		}
	}
	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, tab Tab, req ChangePasswordRequest) error {
	if req.CurrentPassword == req.NewPassword {
		return &ValidationError{Message: "New password must be different from the current password"}
	}
	_, err := tab.Backend.Auth.ChangePassword(ctx, req.CurrentPassword, req.NewPassword).Unwrap()
	return err
}
