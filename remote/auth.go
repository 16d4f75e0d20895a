package remote

import (
	"context"
	"net/http"

	"taskflow-client/domain"
)

type credentialsResponse struct {
	domain.User
	Token string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login exchanges credentials for the account and its bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	var resp credentialsResponse
	req := loginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, "An error occurred during login"); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

// Signup registers a new account. The role is always member; only an invite
// from an admin can grant anything else.
func (c *Client) Signup(ctx context.Context, name, email, password string) (domain.User, string, error) {
	var resp credentialsResponse
	req := registerRequest{Name: name, Email: email, Password: password, Role: domain.RoleMember}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp, "Failed to sign up"); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

// Profile fetches the account behind the current bearer token.
func (c *Client) Profile(ctx context.Context) (domain.User, error) {
	var user domain.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &user, "Failed to fetch profile"); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpdatePassword changes the account password.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	req := updatePasswordRequest{CurrentPassword: current, NewPassword: next}
	return c.do(ctx, http.MethodPut, "/auth/update-password", req, nil, "Failed to update password")
}
