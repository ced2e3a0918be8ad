package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/upstream"
)

type ProfileRequest struct {
	Names       string        `json:"names"`
	PhoneNumber string        `json:"phoneNumber"`
	Address     model.Address `json:"address"`
}

type UserService struct {
	client *upstream.Client
}

// DI
func NewUserService(client *upstream.Client) *UserService {
	return &UserService{client: client}
}

// 管理者向け
func (s *UserService) List(ctx context.Context) upstream.Envelope[[]model.User] {
	return upstream.Do[[]model.User](ctx, s.client, http.MethodGet, "/users", nil)
}

func (s *UserService) Me(ctx context.Context) upstream.Envelope[model.User] {
	return upstream.Do[model.User](ctx, s.client, http.MethodGet, "/users/me", nil)
}

func (s *UserService) UpdateProfile(ctx context.Context, req ProfileRequest) upstream.Envelope[model.User] {
	return upstream.Do[model.User](ctx, s.client, http.MethodPut, "/users/profile", req)
}

// Deleteは成功時に削除したidを返す
func (s *UserService) Delete(ctx context.Context, id string) upstream.Envelope[string] {
	env := upstream.Do[json.RawMessage](ctx, s.client, http.MethodDelete, "/users/"+url.PathEscape(id), nil)
	return upstream.Map(env, func(json.RawMessage) string { return id })
}
