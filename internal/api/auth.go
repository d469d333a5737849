package api

import (
	"context"
	"log/slog"
	"net/http"

	"chirp/internal/core"

	"resty.dev/v3"
)

// AuthClient talks to the unauthenticated endpoints. It implements
// core.AuthAPI and carries no session, so the session manager can depend
// on it without a cycle.
type AuthClient struct {
	Logger *slog.Logger
	Config *core.Config

	client *resty.Client
}

func (c *AuthClient) Init(_ context.Context) error {
	c.Logger = c.Logger.With("component", "api.AuthClient")
	c.client = newRestyClient(c.Config.BaseURL)
	return nil
}

func (c *AuthClient) Shutdown(_ context.Context) error {
	return c.client.Close()
}

func (c *AuthClient) Signup(ctx context.Context, username, password string) error {
	res, err := c.client.R().
		WithContext(ctx).
		SetError(&apiError{}).
		SetBody(map[string]string{"username": username, "password": password}).
		Post("/signup")

	return wireError(res, err)
}

func (c *AuthClient) Login(ctx context.Context, username, password string) (*core.Session, error) {
	res, err := c.client.R().
		WithContext(ctx).
		SetError(&apiError{}).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&core.Session{}).
		Post("/login")

	if res != nil && res.StatusCode() == http.StatusUnauthorized {
		return nil, core.ErrInvalidCredentials
	}
	if err := wireError(res, err); err != nil {
		return nil, err
	}

	sess := res.Result().(*core.Session)
	sess.Username = username

	return sess, nil
}
