package service

import (
	"context"
	"net/http"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/upstream"
)

type SupplierProfileRequest struct {
	BusinessName string        `json:"businessName"`
	SupplierType string        `json:"supplierType"`
	Address      model.Address `json:"address"`
}

type SupplierService struct {
	client *upstream.Client
}

// DI
func NewSupplierService(client *upstream.Client) *SupplierService {
	return &SupplierService{client: client}
}

func (s *SupplierService) List(ctx context.Context) upstream.Envelope[[]model.Supplier] {
	return upstream.Do[[]model.Supplier](ctx, s.client, http.MethodGet, "/suppliers", nil)
}

func (s *SupplierService) Profile(ctx context.Context) upstream.Envelope[model.Supplier] {
	return upstream.Do[model.Supplier](ctx, s.client, http.MethodGet, "/suppliers/profile", nil)
}

func (s *SupplierService) UpdateProfile(ctx context.Context, req SupplierProfileRequest) upstream.Envelope[model.Supplier] {
	return upstream.Do[model.Supplier](ctx, s.client, http.MethodPut, "/suppliers/profile", req)
}
