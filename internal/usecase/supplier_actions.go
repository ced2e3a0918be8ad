package usecase

import (
	"context"
	"strings"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/notify"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/upstream"

	"github.com/labstack/gommon/log"
)

// サプライヤーの操作。商品の操作はProductActionsに任せる。
type SupplierActions struct {
	*runner
	suppliers *service.SupplierService
	products  *ProductActions
}

// DI
func NewSupplierActions(suppliers *service.SupplierService, products *ProductActions, notifier notify.Notifier, audit repo.AuditLogRepository, logger *log.Logger) *SupplierActions {
	return &SupplierActions{runner: newRunner(notifier, audit, logger), suppliers: suppliers, products: products}
}

func (a *SupplierActions) Profile(ctx context.Context, s *store.Session) Result[model.Supplier] {
	act := action{principal: s.Principal, failureTitle: "Could not load supplier profile"}
	return run(ctx, a.runner, act, a.suppliers.Profile, nil)
}

func (a *SupplierActions) UpdateProfile(ctx context.Context, s *store.Session, req service.SupplierProfileRequest) Result[model.Supplier] {
	act := action{
		principal:    s.Principal,
		auditAction:  model.AuditActionUpdateProfile,
		resourceType: model.AuditResourceSupplier,
		successTitle: "Profile updated",
		failureTitle: "Could not update profile",
	}
	req.BusinessName = strings.TrimSpace(req.BusinessName)
	if req.BusinessName == "" {
		return reject[model.Supplier](a.runner, act, "Business name is required")
	}
	act.idemKey = payloadKey(s.Principal.UserID, req)
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.Supplier] {
		return a.suppliers.UpdateProfile(ctx, req)
	}, func(sp model.Supplier) string {
		if s.Suppliers != nil {
			s.Suppliers.Replace(sp)
		}
		return sp.ID
	})
}

func (a *SupplierActions) CreateProduct(ctx context.Context, s *store.Session, req service.ProductRequest, idemKey string) Result[model.Product] {
	return a.products.Create(ctx, s, req, idemKey)
}

func (a *SupplierActions) UpdateProduct(ctx context.Context, s *store.Session, id string, req service.ProductRequest) Result[model.Product] {
	return a.products.Update(ctx, s, id, req)
}

func (a *SupplierActions) DeleteProduct(ctx context.Context, s *store.Session, id string) Result[string] {
	return a.products.Delete(ctx, s, id)
}

func (a *SupplierActions) Refresh(ctx context.Context, s *store.Session) Result[[]model.Supplier] {
	return refresh(ctx, a.runner, s.Principal, s.Suppliers, "Could not load suppliers")
}
