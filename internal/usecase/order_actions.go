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

// 注文の操作
type OrderActions struct {
	*runner
	orders *service.OrderService
}

// DI
func NewOrderActions(orders *service.OrderService, notifier notify.Notifier, audit repo.AuditLogRepository, logger *log.Logger) *OrderActions {
	return &OrderActions{runner: newRunner(notifier, audit, logger), orders: orders}
}

func (a *OrderActions) Create(ctx context.Context, s *store.Session, req service.CreateOrderRequest, idemKey string) Result[model.Order] {
	act := action{
		principal:    s.Principal,
		idemKey:      idemKey,
		auditAction:  model.AuditActionCreateOrder,
		resourceType: model.AuditResourceOrder,
		successTitle: "Order placed",
		failureTitle: "Could not place order",
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		return reject[model.Order](a.runner, act, "Select a product to order")
	}
	if req.Quantity <= 0 {
		return reject[model.Order](a.runner, act, "Quantity must be greater than zero")
	}

	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.Order] {
		return a.orders.Create(ctx, req)
	}, func(o model.Order) string {
		if s.Orders != nil {
			s.Orders.Add(o)
		}
		return o.ID
	})
}

func (a *OrderActions) Accept(ctx context.Context, s *store.Session, id string) Result[model.Order] {
	act := a.transition(s, id, model.AuditActionAcceptOrder, "Order accepted", "Could not accept order")
	if id == "" {
		return reject[model.Order](a.runner, act, "Missing order id")
	}
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.Order] {
		return a.orders.Accept(ctx, id)
	}, a.replace(s))
}

func (a *OrderActions) Cancel(ctx context.Context, s *store.Session, id string) Result[model.Order] {
	act := a.transition(s, id, model.AuditActionCancelOrder, "Order cancelled", "Could not cancel order")
	if id == "" {
		return reject[model.Order](a.runner, act, "Missing order id")
	}
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.Order] {
		return a.orders.Cancel(ctx, id)
	}, a.replace(s))
}

// UpdateStatusは遷移の妥当性を見ない。未知の値だけ弾く。
func (a *OrderActions) UpdateStatus(ctx context.Context, s *store.Session, id string, status model.OrderStatus) Result[model.Order] {
	act := a.transition(s, id, model.AuditActionUpdateOrderStatus, "Order updated", "Could not update order")
	if id == "" {
		return reject[model.Order](a.runner, act, "Missing order id")
	}
	status = model.OrderStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if !status.Known() {
		return reject[model.Order](a.runner, act, "Unknown order status")
	}
	act.idemKey = payloadKey(id, status)
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.Order] {
		return a.orders.UpdateStatus(ctx, id, status)
	}, a.replace(s))
}

func (a *OrderActions) Refresh(ctx context.Context, s *store.Session) Result[[]model.Order] {
	return refresh(ctx, a.runner, s.Principal, s.Orders, "Could not load orders")
}

// 受付・取消は中身がないのでidだけでまとめる
func (a *OrderActions) transition(s *store.Session, id string, act model.AuditAction, ok string, ng string) action {
	return action{
		principal:    s.Principal,
		idemKey:      id,
		auditAction:  act,
		resourceType: model.AuditResourceOrder,
		resourceID:   id,
		successTitle: ok,
		failureTitle: ng,
	}
}

// サーバーが返した注文で置き換える
func (a *OrderActions) replace(s *store.Session) func(model.Order) string {
	return func(o model.Order) string {
		if s.Orders != nil && !s.Orders.Replace(o) {
			s.Orders.Add(o)
		}
		return o.ID
	}
}
