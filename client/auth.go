package client

import (
	"context"
	"net/http"

	"github.com/International-Combat-Archery-Alliance/registration-client/users"
)

type SignUpRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	FullName string     `json:"fullName"`
	Role     users.Role `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email string, password string) (users.AuthResponse, error) {
	return do[users.AuthResponse](ctx, c, "/auth/login", RequestOptions{
		Method: http.MethodPost,
		Body:   loginRequest{Email: email, Password: password},
	})
}

func (c *Client) Register(ctx context.Context, req SignUpRequest) (users.AuthResponse, error) {
	return do[users.AuthResponse](ctx, c, "/auth/register", RequestOptions{
		Method: http.MethodPost,
		Body:   req,
	})
}

// Me returns the identity of the attached credential.
func (c *Client) Me(ctx context.Context) (users.User, error) {
	return do[users.User](ctx, c, "/auth/me", RequestOptions{})
}
