package api

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login authenticates with the server and installs the returned
// bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}

	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, errors.Wrap(err, "login failed")
	}

	c.SetToken(resp.Token)
	return &resp.User, nil
}

// Me retrieves the profile of the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.doJSON(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, errors.Wrap(err, "failed to get profile")
	}
	return &u, nil
}
