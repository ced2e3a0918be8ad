package usecase

import (
	"context"
	"net/http"
	"strings"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/notify"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/upstream"

	"github.com/labstack/gommon/log"
)

// 商品の操作（農家・サプライヤー）
type ProductActions struct {
	*runner
	products *service.ProductService
}

// DI
func NewProductActions(products *service.ProductService, notifier notify.Notifier, audit repo.AuditLogRepository, logger *log.Logger) *ProductActions {
	return &ProductActions{runner: newRunner(notifier, audit, logger), products: products}
}

// Createは出品者のロールで作成先を変える
func (a *ProductActions) Create(ctx context.Context, s *store.Session, req service.ProductRequest, idemKey string) Result[model.Product] {
	act := action{
		principal:    s.Principal,
		idemKey:      idemKey,
		auditAction:  model.AuditActionCreateProduct,
		resourceType: model.AuditResourceProduct,
		successTitle: "Product created",
		failureTitle: "Could not create product",
	}

	var create func(context.Context, service.ProductRequest) upstream.Envelope[model.Product]
	switch s.Principal.Role {
	case model.RoleFarmer:
		create = a.products.CreateFarmer
	case model.RoleSupplier:
		create = a.products.CreateSupplier
	default:
		r := failResult[model.Product](http.StatusForbidden, "Only farmers and suppliers can add products")
		a.notifier.Notify(s.Principal.UserID, notify.Error(act.failureTitle, r.Error))
		return r
	}

	req = trimProduct(req)
	if msg := validateProduct(req); msg != "" {
		return reject[model.Product](a.runner, act, msg)
	}
	if req.Image == "" {
		return reject[model.Product](a.runner, act, "Missing product photo")
	}

	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.Product] {
		return create(ctx, req)
	}, func(p model.Product) string {
		if s.Products != nil {
			s.Products.Add(p)
		}
		return p.ID
	})
}

// Updateは画像なしを許す（既存の画像を使い続ける）
func (a *ProductActions) Update(ctx context.Context, s *store.Session, id string, req service.ProductRequest) Result[model.Product] {
	act := action{
		principal:    s.Principal,
		auditAction:  model.AuditActionUpdateProduct,
		resourceType: model.AuditResourceProduct,
		resourceID:   id,
		successTitle: "Product updated",
		failureTitle: "Could not update product",
	}
	if id == "" {
		return reject[model.Product](a.runner, act, "Missing product id")
	}
	req = trimProduct(req)
	if msg := validateProduct(req); msg != "" {
		return reject[model.Product](a.runner, act, msg)
	}
	act.idemKey = payloadKey(id, req)

	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.Product] {
		return a.products.Update(ctx, id, req)
	}, func(p model.Product) string {
		if s.Products != nil && !s.Products.Replace(p) {
			s.Products.Add(p)
		}
		return p.ID
	})
}

// Deleteは成功したら一覧からも取り除く
func (a *ProductActions) Delete(ctx context.Context, s *store.Session, id string) Result[string] {
	act := action{
		principal:    s.Principal,
		idemKey:      id,
		auditAction:  model.AuditActionDeleteProduct,
		resourceType: model.AuditResourceProduct,
		resourceID:   id,
		successTitle: "Product deleted",
		failureTitle: "Could not delete product",
	}
	if id == "" {
		return reject[string](a.runner, act, "Missing product id")
	}
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[string] {
		return a.products.Delete(ctx, id)
	}, func(deleted string) string {
		if s.Products != nil {
			s.Products.Remove(deleted)
		}
		return deleted
	})
}

func (a *ProductActions) Refresh(ctx context.Context, s *store.Session) Result[[]model.Product] {
	return refresh(ctx, a.runner, s.Principal, s.Products, "Could not load products")
}

func trimProduct(req service.ProductRequest) service.ProductRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	req.MeasurementUnit = strings.TrimSpace(req.MeasurementUnit)
	req.Description = strings.TrimSpace(req.Description)
	req.Image = strings.TrimSpace(req.Image)
	req.Location = strings.TrimSpace(req.Location)
	return req
}

func validateProduct(req service.ProductRequest) string {
	if req.Name == "" {
		return "Product name is required"
	}
	if len(req.Name) > 255 {
		return "Product name is too long"
	}
	if req.Quantity <= 0 {
		return "Quantity must be greater than zero"
	}
	if !req.UnitPrice.IsPositive() {
		return "Unit price must be greater than zero"
	}
	return ""
}
