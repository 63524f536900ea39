package model

import "strings"

// Role values understood by the gateway
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is the cached profile of the signed-in user, as returned by the backend on login
type User struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// UserInput is the create and update payload for the user management screen
type UserInput struct {
	Name        string   `json:"name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Password    string   `json:"password,omitempty"`
	IsActive    bool     `json:"is_active"`
	Permissions []string `json:"permissions,omitempty"`
}

// IsAdmin reports whether the user holds the implicit all-permissions role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// PermissionSet returns the user's explicit permissions as a set
func (u *User) PermissionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(u.Permissions))
	for _, p := range u.Permissions {
		set[p] = struct{}{}
	}
	return set
}

// FallbackName picks the first non-empty identity field, ending at "User"
func (u *User) FallbackName() string {
	for _, s := range []string{u.Name, u.Username, u.Email} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return "User"
}

// Session is the pair kept in a tab's ephemeral storage
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
