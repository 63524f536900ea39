package client

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for unknown users and wrong passwords alike
var ErrInvalidCredentials = errors.New("invalid username or password")

type demoAccount struct {
	user     model.User
	password string // shown on the login screen
	hash     []byte
}

// DemoCredential is one entry of the login screen's demo hint
type DemoCredential struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// DemoAuthenticator signs in the built-in demo accounts without a backend
type DemoAuthenticator struct {
	accounts []demoAccount
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewDemoAuthenticator hashes the demo passwords once at startup
func NewDemoAuthenticator(secret string, ttl time.Duration) (*DemoAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("demo authenticator requires a signing secret")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	seed := []struct {
		user     model.User
		password string
	}{
		{
			user: model.User{
				ID: 1, Username: "admin", Name: "Admin User", Email: "admin@bookstore.com", Role: model.RoleAdmin,
				Permissions: []string{
					model.PermManageInventory, model.PermViewInventory, model.PermManageSales,
					model.PermViewSalesHistory, model.PermManageUsers, model.PermApproveUploads,
					model.PermUploadExcel, model.PermManageCategories,
				},
			},
			password: "admin",
		},
		{
			user: model.User{
				ID: 2, Username: "staff", Name: "Staff User", Email: "staff@bookstore.com", Role: model.RoleStaff,
				Permissions: []string{
					model.PermViewInventory, model.PermManageSales, model.PermViewSalesHistory, model.PermUploadExcel,
				},
			},
			password: "staff",
		},
		{
			user: model.User{
				ID: 3, Username: "demo", Name: "Demo User", Email: "demo@bookstore.com", Role: model.RoleStaff,
				Permissions: []string{model.PermViewInventory, model.PermManageSales},
			},
			password: "demo",
		},
	}

	d := &DemoAuthenticator{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash demo password: %w", err)
		}
		d.accounts = append(d.accounts, demoAccount{user: s.user, password: s.password, hash: hash})
	}
	return d, nil
}

// Credentials lists the demo logins for the login screen
func (d *DemoAuthenticator) Credentials() []DemoCredential {
	out := make([]DemoCredential, 0, len(d.accounts))
	for _, a := range d.accounts {
		out = append(out, DemoCredential{Username: a.user.Username, Password: a.password, Role: a.user.Role, Name: a.user.Name})
	}
	return out
}

// Login checks the password and issues an HS256 token
func (d *DemoAuthenticator) Login(username, password string) (LoginData, error) {
	for _, a := range d.accounts {
		if a.user.Username != username {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
			return LoginData{}, ErrInvalidCredentials
		}

		now := d.now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":      strconv.FormatInt(a.user.ID, 10),
			"username": a.user.Username,
			"role":     a.user.Role,
			"iat":      now.Unix(),
			"exp":      now.Add(d.ttl).Unix(),
		})
		signed, err := token.SignedString(d.secret)
		if err != nil {
			return LoginData{}, fmt.Errorf("sign demo token: %w", err)
		}
		return LoginData{Token: signed, User: a.user}, nil
	}
	return LoginData{}, ErrInvalidCredentials
}

// Verify parses a demo token and returns the account it was issued to
func (d *DemoAuthenticator) Verify(tokenString string) (model.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return d.secret, nil
	}, jwt.WithTimeFunc(d.now))
	if err != nil || !token.Valid {
		return model.User{}, fmt.Errorf("invalid demo token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.User{}, errors.New("invalid demo token claims")
	}
	username, _ := claims["username"].(string)
	for _, a := range d.accounts {
		if a.user.Username == username {
			return a.user, nil
		}
	}
	return model.User{}, ErrInvalidCredentials
}
