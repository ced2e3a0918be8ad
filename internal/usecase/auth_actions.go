package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/notify"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/upstream"

	"github.com/labstack/gommon/log"
)

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	ClientKey  string // ブラウザ単位の識別子（Cookie）
}

// ログインと「ログイン情報を記憶する」
type AuthActions struct {
	*runner
	auth  service.Authenticator
	prefs repo.PreferenceRepository
}

// DI
func NewAuthActions(auth service.Authenticator, prefs repo.PreferenceRepository, notifier notify.Notifier, logger *log.Logger) *AuthActions {
	return &AuthActions{runner: newRunner(notifier, nil, logger), auth: auth, prefs: prefs}
}

// Loginはトークンとユーザーを返す。トーストはまだ接続がないので結果だけ。
func (a *AuthActions) Login(ctx context.Context, in LoginInput) Result[service.LoginResult] {
	act := action{failureTitle: "Login failed"}
	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return reject[service.LoginResult](a.runner, act, "Enter a valid email address")
	}
	if in.Password == "" {
		return reject[service.LoginResult](a.runner, act, "Password is required")
	}

	// ログインはまとめない（パスワードごとに結果が違う）
	res := run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[service.LoginResult] {
		return a.auth.Authenticate(ctx, service.LoginRequest{Email: email, Password: in.Password})
	}, nil)
	if res.OK {
		a.remember(ctx, in.ClientKey, email, in.RememberMe)
	}
	return res
}

// Rememberedは記憶しているメールアドレス。なければ空。
func (a *AuthActions) Remembered(ctx context.Context, clientKey string) model.Preference {
	if a.prefs == nil || clientKey == "" {
		return model.Preference{ClientKey: clientKey}
	}
	pref, err := a.prefs.Find(ctx, clientKey)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			a.logger.Warnf("find preference: %v", err)
		}
		return model.Preference{ClientKey: clientKey}
	}
	return pref
}

func (a *AuthActions) remember(ctx context.Context, clientKey string, email string, on bool) {
	if a.prefs == nil || clientKey == "" {
		return
	}
	var err error
	if on {
		err = a.prefs.Save(ctx, model.Preference{ClientKey: clientKey, RememberedEmail: email, RememberMe: true})
	} else {
		err = a.prefs.Delete(ctx, clientKey)
	}
	if err != nil {
		a.logger.Warnf("save preference: %v", err)
	}
}
