package vap

import (
	"context"
	"net/http"

	"github.com/vaphq/vap/internal/session"
)

const (
	apiLoginPath    = "/auth/login"
	apiRegisterPath = "/auth/register"
)

// AuthResult is the body of a successful login or registration.
type AuthResult struct {
	User  *session.User `json:"user" validate:"required"`
	Token string        `json:"token" validate:"required"`
}

// Session converts the result into the persisted form.
func (r *AuthResult) Session() session.Session {
	return session.Session{User: r.User, Token: r.Token}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.sendJSON(ctx, call{
		op:        "sign in",
		fallback:  "Sign in failed",
		method:    http.MethodPost,
		path:      apiLoginPath,
		anonymous: true,
	}, loginRequest{Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.sendJSON(ctx, call{
		op:        "sign up",
		fallback:  "Sign up failed",
		method:    http.MethodPost,
		path:      apiRegisterPath,
		anonymous: true,
	}, registerRequest{Name: name, Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}

	return &result, nil
}
