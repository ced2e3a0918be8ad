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

// 自分のプロフィール
type ProfileActions struct {
	*runner
	users *service.UserService
}

// DI
func NewProfileActions(users *service.UserService, notifier notify.Notifier, audit repo.AuditLogRepository, logger *log.Logger) *ProfileActions {
	return &ProfileActions{runner: newRunner(notifier, audit, logger), users: users}
}

// Meはキャッシュがあればそれを返す
func (a *ProfileActions) Me(ctx context.Context, s *store.Session) Result[model.User] {
	if u, ok := s.Profile(); ok {
		return okResult(u)
	}
	act := action{principal: s.Principal, failureTitle: "Could not load profile"}
	return run(ctx, a.runner, act, a.users.Me, func(u model.User) string {
		s.SetProfile(u)
		return u.ID
	})
}

func (a *ProfileActions) UpdateProfile(ctx context.Context, s *store.Session, req service.ProfileRequest) Result[model.User] {
	act := action{
		principal:    s.Principal,
		auditAction:  model.AuditActionUpdateProfile,
		resourceType: model.AuditResourceUser,
		resourceID:   s.Principal.UserID,
		successTitle: "Profile updated",
		failureTitle: "Could not update profile",
	}
	req.Names = strings.TrimSpace(req.Names)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	if req.Names == "" {
		return reject[model.User](a.runner, act, "Name is required")
	}
	act.idemKey = payloadKey(s.Principal.UserID, req)
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[model.User] {
		return a.users.UpdateProfile(ctx, req)
	}, func(u model.User) string {
		s.SetProfile(u)
		if s.Users != nil {
			s.Users.Replace(u)
		}
		return u.ID
	})
}
