package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Daveman-1/BookstoreFrontEnd/internal/model"
	"go.uber.org/zap"
)

// LoginData is the token and profile returned by a successful login
type LoginData struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// AuthAPI wraps /auth. Login and Refresh are the only calls that write the token.
type AuthAPI struct {
	conn
	demo *demoSettings
}

type demoSettings struct {
	auth     *DemoAuthenticator
	always   bool
	fallback bool
}

// Login posts the credentials and stores the returned token
func (a AuthAPI) Login(ctx context.Context, username, password string) Result[LoginData] {
	if a.demo != nil && a.demo.always {
		return a.demoLogin(ctx, username, password)
	}

	rep := a.do(ctx, request{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"username": username, "password": password},
	})
	if rep.status == 0 && a.demo != nil && a.demo.fallback {
		a.c.log.Info("backend unreachable, using demo login")
		return a.demoLogin(ctx, username, password)
	}
	if !rep.ok() {
		return Err[LoginData](errorMessage(rep, "Login failed"))
	}

	raw, err := extract(rep.body, []string{"data"})
	if err != nil || raw == nil {
		return Err[LoginData]("Login failed")
	}
	var data LoginData
	if err := json.Unmarshal(raw, &data); err != nil || data.Token == "" || data.User.Role == "" {
		return Err[LoginData]("Login failed")
	}
	if err := a.storeToken(ctx, data.Token); err != nil {
		return Err[LoginData]("Login failed")
	}
	return Ok(data)
}

func (a AuthAPI) demoLogin(ctx context.Context, username, password string) Result[LoginData] {
	data, err := a.demo.auth.Login(username, password)
	if err != nil {
		return Err[LoginData]("Invalid username or password")
	}
	if err := a.storeToken(ctx, data.Token); err != nil {
		return Err[LoginData]("Login failed")
	}
	return Ok(data)
}

func (a AuthAPI) storeToken(ctx context.Context, token string) error {
	if a.tokens == nil {
		return nil
	}
	if err := a.tokens.SetToken(ctx, token); err != nil {
		a.c.log.Error("store token", zap.Error(err))
		return err
	}
	return nil
}

// Logout notifies the backend and always drops the stored token
func (a AuthAPI) Logout(ctx context.Context) Result[struct{}] {
	if a.demo == nil || !a.demo.always {
		a.do(ctx, request{op: "auth.logout", method: http.MethodPost, path: "/auth/logout"})
	}
	if a.tokens != nil {
		if err := a.tokens.DropToken(ctx); err != nil {
			a.c.log.Warn("drop token on logout", zap.Error(err))
		}
	}
	return Ok(struct{}{})
}

// Profile fetches the signed-in user's profile
func (a AuthAPI) Profile(ctx context.Context) Result[model.User] {
	if a.demo != nil && a.demo.always {
		return a.demoProfile(ctx)
	}
	return call[model.User](ctx, a.conn, request{
		op: "auth.profile", method: http.MethodGet, path: "/auth/profile", fallback: "Failed to get profile",
	}, "data")
}

func (a AuthAPI) demoProfile(ctx context.Context) Result[model.User] {
	if a.tokens == nil {
		return Err[model.User]("Failed to get profile")
	}
	user, err := a.demo.auth.Verify(a.tokens.Token(ctx))
	if err != nil {
		return Err[model.User]("Failed to get profile")
	}
	return Ok(user)
}

// Refresh exchanges the current token for a new one
func (a AuthAPI) Refresh(ctx context.Context) Result[string] {
	res := call[string](ctx, a.conn, request{
		op: "auth.refresh", method: http.MethodPost, path: "/auth/refresh", fallback: "Token refresh failed",
	}, "token")
	if !res.Success {
		return res
	}
	if res.Data == "" {
		return Err[string]("Token refresh failed")
	}
	if err := a.storeToken(ctx, res.Data); err != nil {
		return Err[string]("Token refresh failed")
	}
	return res
}

// ChangePassword returns the backend's confirmation message on success
func (a AuthAPI) ChangePassword(ctx context.Context, current, next string) Result[struct{}] {
	return call[struct{}](ctx, a.conn, request{
		op:       "auth.change_password",
		method:   http.MethodPost,
		path:     "/auth/change-password",
		body:     map[string]string{"currentPassword": current, "newPassword": next},
		fallback: "Password change failed",
	})
}

// CheckSession asks the backend whether the token is still valid
func (a AuthAPI) CheckSession(ctx context.Context) Result[model.User] {
	if a.demo != nil && a.demo.always {
		return a.demoProfile(ctx)
	}
	return call[model.User](ctx, a.conn, request{
		op: "auth.session", method: http.MethodGet, path: "/auth/session", fallback: "Session check failed",
	}, "data", "user")
}
