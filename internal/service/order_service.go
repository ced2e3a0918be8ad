package service

import (
	"context"
	"net/http"
	"net/url"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/upstream"
)

type CreateOrderRequest struct {
	ProductID       string `json:"productId"`
	Quantity        int64  `json:"quantity"`
	DeliveryAddress string `json:"deliveryAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type OrderService struct {
	client *upstream.Client
}

// DI
func NewOrderService(client *upstream.Client) *OrderService {
	return &OrderService{client: client}
}

func (s *OrderService) ListFarmer(ctx context.Context) upstream.Envelope[[]model.Order] {
	return upstream.Do[[]model.Order](ctx, s.client, http.MethodGet, "/orders/farmer", nil)
}

func (s *OrderService) ListSupplier(ctx context.Context) upstream.Envelope[[]model.Order] {
	return upstream.Do[[]model.Order](ctx, s.client, http.MethodGet, "/orders/supplier", nil)
}

func (s *OrderService) ListBuyer(ctx context.Context) upstream.Envelope[[]model.Order] {
	return upstream.Do[[]model.Order](ctx, s.client, http.MethodGet, "/orders/buyer", nil)
}

// 管理者・行政向け
func (s *OrderService) ListAll(ctx context.Context) upstream.Envelope[[]model.Order] {
	return upstream.Do[[]model.Order](ctx, s.client, http.MethodGet, "/orders", nil)
}

func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) upstream.Envelope[model.Order] {
	return upstream.Do[model.Order](ctx, s.client, http.MethodPost, "/orders", req)
}

func (s *OrderService) Accept(ctx context.Context, id string) upstream.Envelope[model.Order] {
	return upstream.Do[model.Order](ctx, s.client, http.MethodPut, "/orders/"+url.PathEscape(id)+"/accept", nil)
}

func (s *OrderService) Cancel(ctx context.Context, id string) upstream.Envelope[model.Order] {
	return upstream.Do[model.Order](ctx, s.client, http.MethodPut, "/orders/"+url.PathEscape(id)+"/cancel", nil)
}

// 遷移の妥当性はバックエンドが判断する
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) upstream.Envelope[model.Order] {
	return upstream.Do[model.Order](ctx, s.client, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status", UpdateOrderStatusRequest{Status: status})
}
