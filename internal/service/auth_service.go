package service

import (
	"context"
	"net/http"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/upstream"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Authenticatorはメールとパスワードからtokenを得る
type Authenticator interface {
	Authenticate(ctx context.Context, req LoginRequest) upstream.Envelope[LoginResult]
}

type AuthService struct {
	client *upstream.Client
}

// DI
func NewAuthService(client *upstream.Client) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) Authenticate(ctx context.Context, req LoginRequest) upstream.Envelope[LoginResult] {
	return upstream.Do[LoginResult](ctx, s.client, http.MethodPost, "/auth/login", req)
}
