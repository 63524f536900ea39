// Package session holds the signed-in user's token and profile for one browser tab
// and answers the access questions the route guard asks.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"go.uber.org/zap"
)

// Storage keys, shared with the browser build
const (
	KeyToken = "authToken"
	KeyUser  = "authUser"
)

// ErrInvalidUser marks stored profile data that is not an object with a role
var ErrInvalidUser = errors.New("session: stored user is invalid")

// Session is the explicit, injected replacement for global sessionStorage lookups
type Session struct {
	store Storage
	log   *zap.Logger
}

// New binds a Session to tab-scoped storage
func New(store Storage, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{store: store, log: log}
}

// Token returns the bearer token, or "" when absent
func (s *Session) Token(ctx context.Context) string {
	token, err := s.store.Get(ctx, KeyToken)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("read session token", zap.Error(err))
		}
		return ""
	}
	return token
}

// User returns the stored profile. Corrupted or incomplete data is treated as a
// logout: both keys are cleared and nil is returned.
func (s *Session) User(ctx context.Context) *model.User {
	raw, err := s.store.Get(ctx, KeyUser)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("read session user", zap.Error(err))
		}
		return nil
	}

	user, err := ParseUser(raw)
	if err != nil {
		s.log.Info("clearing corrupted session data", zap.Error(err))
		if clearErr := s.Clear(ctx); clearErr != nil {
			s.log.Warn("clear session", zap.Error(clearErr))
		}
		return nil
	}
	return user
}

// ParseUser validates a serialized profile at the storage boundary
func ParseUser(raw string) (*model.User, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return nil, ErrInvalidUser
	}

	var role string
	if err := json.Unmarshal(fields["role"], &role); err != nil || role == "" {
		return nil, ErrInvalidUser
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, ErrInvalidUser
	}
	if strings.TrimSpace(user.Name) == "" {
		user.Name = user.FallbackName()
	}
	return &user, nil
}

// IsAuthenticated is true iff a token and a valid user are both present
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token := s.Token(ctx)
	user := s.User(ctx)
	return token != "" && user != nil
}

// HasPermission grants everything to admins, otherwise checks the explicit list
func (s *Session) HasPermission(ctx context.Context, permission string) bool {
	user := s.User(ctx)
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return slices.Contains(user.Permissions, permission)
}

// HasRole reports whether a user exists and holds one of the allowed roles
func (s *Session) HasRole(ctx context.Context, allowedRoles ...string) bool {
	user := s.User(ctx)
	return user != nil && slices.Contains(allowedRoles, user.Role)
}

// Save stores the token and profile after a successful login
func (s *Session) Save(ctx context.Context, token string, user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyToken, token); err != nil {
		return err
	}
	return s.store.Set(ctx, KeyUser, string(data))
}

// SetToken replaces the bearer token, keeping the profile
func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.store.Set(ctx, KeyToken, token)
}

// DropToken removes only the token, as happens when the backend answers 401
func (s *Session) DropToken(ctx context.Context) error {
	return s.store.Delete(ctx, KeyToken)
}

// Clear removes both keys together
func (s *Session) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, KeyToken, KeyUser)
}

// DisplayName returns a printable name for the header, "Guest" when signed out
func (s *Session) DisplayName(ctx context.Context) string {
	user := s.User(ctx)
	if user == nil {
		return "Guest"
	}
	return user.FallbackName()
}

// Email returns the user's email or a placeholder
func (s *Session) Email(ctx context.Context) string {
	user := s.User(ctx)
	if user == nil || user.Email == "" {
		return "No email"
	}
	return user.Email
}

// RoleName returns the user's role, "guest" when signed out
func (s *Session) RoleName(ctx context.Context) string {
	user := s.User(ctx)
	if user == nil {
		return "guest"
	}
	return user.Role
}
