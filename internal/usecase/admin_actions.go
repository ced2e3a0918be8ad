package usecase

import (
	"context"
	"errors"
	"net/http"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/notify"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/upstream"

	"github.com/labstack/gommon/log"
)

// 管理画面で見る一覧一式
type AdminSnapshot struct {
	Users     []model.User     `json:"users"`
	Orders    []model.Order    `json:"orders"`
	Products  []model.Product  `json:"products"`
	Suppliers []model.Supplier `json:"suppliers"`
}

// 管理者の操作
type AdminActions struct {
	*runner
	users *service.UserService
}

// DI
func NewAdminActions(users *service.UserService, notifier notify.Notifier, audit repo.AuditLogRepository, logger *log.Logger) *AdminActions {
	return &AdminActions{runner: newRunner(notifier, audit, logger), users: users}
}

func (a *AdminActions) DeleteUser(ctx context.Context, s *store.Session, id string) Result[string] {
	act := action{
		principal:    s.Principal,
		idemKey:      id,
		auditAction:  model.AuditActionDeleteUser,
		resourceType: model.AuditResourceUser,
		resourceID:   id,
		successTitle: "User deleted",
		failureTitle: "Could not delete user",
	}
	if id == "" {
		return reject[string](a.runner, act, "Missing user id")
	}
	if id == s.Principal.UserID {
		return reject[string](a.runner, act, "You cannot delete your own account")
	}
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[string] {
		return a.users.Delete(ctx, id)
	}, func(deleted string) string {
		if s.Users != nil {
			s.Users.Remove(deleted)
		}
		return deleted
	})
}

// RefreshAllは管理画面の一覧をまとめて取り直す
func (a *AdminActions) RefreshAll(ctx context.Context, s *store.Session) Result[AdminSnapshot] {
	a.begin(s.Principal.UserID)
	defer a.end(s.Principal.UserID)

	if err := s.RefreshAll(ctx); err != nil {
		msg := upstream.GenericFailureMessage
		status := http.StatusBadGateway
		var le *store.LoadError
		if errors.As(err, &le) {
			msg, status = le.Message, le.Status
		}
		a.notifier.Notify(s.Principal.UserID, notify.Error("Could not load dashboard", msg))
		return failResult[AdminSnapshot](status, msg)
	}
	return okResult(Snapshot(s))
}

// Snapshotは今のスナップショットを取り出す（取得はしない）
func Snapshot(s *store.Session) AdminSnapshot {
	out := AdminSnapshot{
		Users:     []model.User{},
		Orders:    []model.Order{},
		Products:  []model.Product{},
		Suppliers: []model.Supplier{},
	}
	if s.Users != nil {
		out.Users = s.Users.Items()
	}
	if s.Orders != nil {
		out.Orders = s.Orders.Items()
	}
	if s.Products != nil {
		out.Products = s.Products.Items()
	}
	if s.Suppliers != nil {
		out.Suppliers = s.Suppliers.Items()
	}
	return out
}
