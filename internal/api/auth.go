package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/streakline/internal/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	User models.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, name, email, password string) (models.User, error) {
	var resp registerResponse
	err := c.do(ctx, call{
		op:          "register",
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        registerRequest{Name: name, Email: email, Password: password},
		credentials: true,
	}, &resp)
	if err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

// Login exchanges credentials for a bearer token and the user's profile.
func (c *Client) Login(ctx context.Context, email, password string) (string, models.User, error) {
	var resp loginResponse
	err := c.do(ctx, call{
		op:          "login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        loginRequest{Email: email, Password: password},
		credentials: true,
	}, &resp)
	if err != nil {
		return "", models.User{}, err
	}
	return resp.Token, resp.User, nil
}
