package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/notify"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/store"
	"umuhinzilink/internal/upstream"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/singleflight"
)

// Resultはアクションの結果。OKを見てからDataを使う。
type Result[T any] struct {
	OK     bool   `json:"ok"`
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status,omitempty"`
}

func okResult[T any](data T) Result[T] {
	return Result[T]{OK: true, Data: data}
}

func failResult[T any](status int, msg string) Result[T] {
	return Result[T]{OK: false, Error: msg, Status: status}
}

// Errはhandler向けにHTTPErrorへ変換する。成功ならnil。
func (r Result[T]) Err() error {
	if r.OK {
		return nil
	}
	status := r.Status
	if status == 0 {
		status = http.StatusBadGateway
	}
	return NewHTTPError(status, r.Error)
}

// actionは1回の操作の説明
type action struct {
	principal model.Principal

	// 同じキーの操作が進行中なら結果を共有する。空なら共有しない。
	// 中身の違う操作が同じキーにならないようにする（payloadKey）。
	idemKey string

	auditAction  model.AuditAction
	resourceType model.AuditResourceType
	resourceID   string

	successTitle string
	failureTitle string
}

// runnerはアクション群が共有する部品と進行中カウンタ
type runner struct {
	notifier notify.Notifier
	audit    repo.AuditLogRepository
	logger   *log.Logger

	inflight atomic.Int64
	group    singleflight.Group
	now      func() time.Time

	mu   sync.Mutex
	busy map[string]int
}

func newRunner(notifier notify.Notifier, audit repo.AuditLogRepository, logger *log.Logger) *runner {
	return &runner{notifier: notifier, audit: audit, logger: logger, now: time.Now, busy: map[string]int{}}
}

// Loadingはそのユーザーの操作が進行中か
func (r *runner) Loading(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.busy[userID] > 0
}

func (r *runner) begin(userID string) {
	r.inflight.Add(1)
	r.mu.Lock()
	r.busy[userID]++
	r.mu.Unlock()
}

func (r *runner) end(userID string) {
	r.inflight.Add(-1)
	r.mu.Lock()
	if r.busy[userID]--; r.busy[userID] <= 0 {
		delete(r.busy, userID)
	}
	r.mu.Unlock()
}

// payloadKeyは対象idと送る中身から共有キーを作る。
// 同じ対象への別の編集はまとめない。
func payloadKey(id string, payload interface{}) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return id + "#" + hex.EncodeToString(sum[:8])
}

// rejectはネットワークに出る前の入力エラー
func reject[T any](r *runner, a action, msg string) Result[T] {
	r.notifier.Notify(a.principal.UserID, notify.Error(a.failureTitle, msg))
	return failResult[T](http.StatusBadRequest, msg)
}

// runは1回のアクションを実行する。
// 失敗時はエラートーストだけ出してスナップショットには触れない。
// 成功時はapplyでスナップショットを更新してから成功トーストを出す。
func run[T any](ctx context.Context, r *runner, a action, call func(ctx context.Context) upstream.Envelope[T], apply func(T) string) Result[T] {
	r.begin(a.principal.UserID)
	defer r.end(a.principal.UserID)

	exec := func() Result[T] {
		env := call(ctx)
		if !env.Success {
			msg := env.Message
			if msg == "" {
				msg = upstream.GenericFailureMessage
			}
			r.notifier.Notify(a.principal.UserID, notify.Error(a.failureTitle, msg))
			r.record(ctx, a, a.resourceID, model.AuditOutcomeFailure, msg)
			return failResult[T](env.Status, msg)
		}

		id := a.resourceID
		if apply != nil {
			if got := apply(env.Data); got != "" {
				id = got
			}
		}
		if a.successTitle != "" {
			r.notifier.Notify(a.principal.UserID, notify.Success(a.successTitle, env.Message))
		}
		r.record(ctx, a, id, model.AuditOutcomeSuccess, "")
		return okResult(env.Data)
	}

	if a.idemKey == "" {
		return exec()
	}
	key := a.principal.UserID + "|" + string(a.auditAction) + "|" + a.idemKey
	v, _, shared := r.group.Do(key, func() (interface{}, error) {
		return exec(), nil
	})
	if shared {
		r.logger.Debugf("coalesced duplicate %s for user %s", a.auditAction, a.principal.UserID)
	}
	return v.(Result[T])
}

// refreshは一覧を取り直す。失敗はエラートーストにする。
func refresh[T store.Keyed](ctx context.Context, r *runner, p model.Principal, prov *store.Provider[T], title string) Result[[]T] {
	if prov == nil {
		return failResult[[]T](http.StatusForbidden, "Not available for your role")
	}
	r.begin(p.UserID)
	defer r.end(p.UserID)

	if err := prov.Refresh(ctx); err != nil {
		var le *store.LoadError
		if errors.As(err, &le) {
			r.notifier.Notify(p.UserID, notify.Error(title, le.Message))
			return failResult[[]T](le.Status, le.Message)
		}
		r.notifier.Notify(p.UserID, notify.Error(title, upstream.GenericFailureMessage))
		return failResult[[]T](0, upstream.GenericFailureMessage)
	}
	return okResult(prov.Items())
}

func (r *runner) record(ctx context.Context, a action, resourceID string, outcome model.AuditOutcome, msg string) {
	if r.audit == nil || a.auditAction == "" {
		return
	}
	//操作ログの失敗で結果は変えない
	if err := r.audit.Create(context.WithoutCancel(ctx), model.AuditLog{
		ActorUserID:  a.principal.UserID,
		ActorRole:    a.principal.Role,
		Action:       a.auditAction,
		ResourceType: a.resourceType,
		ResourceID:   resourceID,
		Outcome:      outcome,
		Message:      msg,
		CreatedAt:    r.now(),
	}); err != nil {
		r.logger.Warnf("audit log %s: %v", a.auditAction, err)
	}
}
