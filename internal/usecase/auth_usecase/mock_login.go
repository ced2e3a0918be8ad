package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/upstream"
)

// 開発用ユーザーの共通パスワード
const MockPassword = "umuhinzi-dev-pass"

// 現在の時間
type Clock interface {
	Now() time.Time
}

type mockAccount struct {
	user   model.User
	hashed string
}

// MockAuthenticatorはバックエンドなしでログインを試すためのもの。
// ロールごとに1人ずつ用意する。本番では使えない（config側で弾く）。
type MockAuthenticator struct {
	mu       sync.RWMutex
	accounts map[string]mockAccount
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
	clock    Clock
}

// DI
func NewMockAuthenticator(hasher PasswordHasher, verifier PasswordVerifier, issuer AccessTokenIssuer, clock Clock) (*MockAuthenticator, error) {
	m := &MockAuthenticator{
		accounts: map[string]mockAccount{},
		verifier: verifier,
		issuer:   issuer,
		clock:    clock,
	}
	hashed, err := hasher.Hash(MockPassword)
	if err != nil {
		return nil, err
	}
	now := clock.Now()
	for i, role := range []model.Role{model.RoleFarmer, model.RoleSupplier, model.RoleBuyer, model.RoleAdmin, model.RoleGovernment} {
		name := strings.ToLower(string(role))
		u := model.User{
			ID:        fmt.Sprintf("mock-%s-%d", name, i+1),
			Names:     "Demo " + strings.ToUpper(name[:1]) + name[1:],
			Email:     name + "@umuhinzilink.dev",
			Role:      role,
			Verified:  true,
			Address:   model.Address{Province: "Kigali", District: "Gasabo"},
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.accounts[u.Email] = mockAccount{user: u, hashed: hashed}
	}
	return m, nil
}

// Usersは用意したユーザー
func (m *MockAuthenticator) Users() []model.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.User, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a.user)
	}
	return out
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, req service.LoginRequest) upstream.Envelope[service.LoginResult] {
	m.mu.RLock()
	acc, ok := m.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	m.mu.RUnlock()

	//メールかパスワードが違う
	if !ok || !m.verifier.Verify(req.Password, acc.hashed) {
		return upstream.Fail[service.LoginResult](http.StatusUnauthorized, "Invalid email or password")
	}

	token, _, err := m.issuer.Issue(acc.user, m.clock.Now())
	if err != nil {
		return upstream.Fail[service.LoginResult](http.StatusInternalServerError, upstream.GenericFailureMessage)
	}
	return upstream.Envelope[service.LoginResult]{
		Success: true,
		Data:    service.LoginResult{Token: token, User: acc.user},
		Message: "Login successful",
		Status:  http.StatusOK,
	}
}
