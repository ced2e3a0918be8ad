package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/proxy"
	"umuhinzilink/internal/upstream"

	"github.com/shopspring/decimal"
)

// 商品作成・更新の入力（農家・サプライヤー共通）
type ProductRequest struct {
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Quantity        int64           `json:"quantity"`
	MeasurementUnit string          `json:"measurementUnit"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Description     string          `json:"description"`
	Image           string          `json:"image"`
	Location        string          `json:"location"`
	IsNegotiable    bool            `json:"isNegotiable"`
	Certification   string          `json:"certification,omitempty"`
}

type ProductService struct {
	client   *upstream.Client
	resolver *proxy.Resolver
}

// DI
func NewProductService(client *upstream.Client, resolver *proxy.Resolver) *ProductService {
	return &ProductService{client: client, resolver: resolver}
}

// 農家の商品一覧（ルート候補を順に試す）
func (s *ProductService) ListFarmer(ctx context.Context) upstream.Envelope[[]model.Product] {
	env := resolved[[]model.Product](ctx, s.resolver, http.MethodGet, proxy.FarmerProductsList, nil)
	return upstream.Map(env, normalizeAll)
}

// 農家の商品作成（ルート候補を順に試す）
func (s *ProductService) CreateFarmer(ctx context.Context, req ProductRequest) upstream.Envelope[model.Product] {
	body, err := json.Marshal(req)
	if err != nil {
		return upstream.Fail[model.Product](0, "Invalid request payload")
	}
	env := resolved[model.Product](ctx, s.resolver, http.MethodPost, proxy.FarmerProductsCreate, body)
	return upstream.Map(env, model.Product.Normalize)
}

func (s *ProductService) ListSupplier(ctx context.Context) upstream.Envelope[[]model.Product] {
	env := upstream.Do[[]model.Product](ctx, s.client, http.MethodGet, "/products/supplier", nil)
	return upstream.Map(env, normalizeAll)
}

func (s *ProductService) CreateSupplier(ctx context.Context, req ProductRequest) upstream.Envelope[model.Product] {
	env := upstream.Do[model.Product](ctx, s.client, http.MethodPost, "/products/supplier", req)
	return upstream.Map(env, model.Product.Normalize)
}

// 購入者・管理者・行政向けの全商品
func (s *ProductService) ListAll(ctx context.Context) upstream.Envelope[[]model.Product] {
	env := upstream.Do[[]model.Product](ctx, s.client, http.MethodGet, "/products", nil)
	return upstream.Map(env, normalizeAll)
}

func (s *ProductService) Get(ctx context.Context, id string) upstream.Envelope[model.Product] {
	env := upstream.Do[model.Product](ctx, s.client, http.MethodGet, "/products/"+url.PathEscape(id), nil)
	return upstream.Map(env, model.Product.Normalize)
}

func (s *ProductService) Update(ctx context.Context, id string, req ProductRequest) upstream.Envelope[model.Product] {
	env := upstream.Do[model.Product](ctx, s.client, http.MethodPut, "/products/"+url.PathEscape(id), req)
	return upstream.Map(env, model.Product.Normalize)
}

// Deleteは成功時に削除したidを返す
func (s *ProductService) Delete(ctx context.Context, id string) upstream.Envelope[string] {
	env := upstream.Do[json.RawMessage](ctx, s.client, http.MethodDelete, "/products/"+url.PathEscape(id), nil)
	return upstream.Map(env, func(json.RawMessage) string { return id })
}

func normalizeAll(items []model.Product) []model.Product {
	out := make([]model.Product, 0, len(items))
	for _, p := range items {
		out = append(out, p.Normalize())
	}
	return out
}

// resolvedは候補パスの結果をEnvelopeにする
func resolved[T any](ctx context.Context, r *proxy.Resolver, method string, candidates []string, body []byte) upstream.Envelope[T] {
	header := http.Header{}
	if body != nil {
		header.Set("Content-Type", "application/json")
	}
	resp, err := r.Resolve(ctx, method, candidates, body, header)
	if err != nil {
		var ex *proxy.ExhaustedError
		if errors.As(err, &ex) {
			return upstream.Fail[T](http.StatusNotFound, ex.Message)
		}
		return upstream.Fail[T](0, upstream.NetworkErrorMessage(err))
	}
	return upstream.FromRaw[T](&upstream.RawResponse{Status: resp.Status, Header: resp.Header, Body: resp.Body})
}
