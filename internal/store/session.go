package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"umuhinzilink/internal/domain/model"

	"golang.org/x/sync/errgroup"
)

// Sourcesはロールごとの一覧取得方法。nilのものはそのロールに出さない。
type Sources struct {
	Products      func(role model.Role) Loader[model.Product]
	Orders        func(role model.Role) Loader[model.Order]
	Users         func(role model.Role) Loader[model.User]
	Suppliers     func(role model.Role) Loader[model.Supplier]
	Conversations func(p model.Principal) ([]model.Conversation, []model.Message)
}

// Sessionは1ユーザー分のスナップショット一式
type Session struct {
	Principal model.Principal

	Products  *Provider[model.Product]
	Orders    *Provider[model.Order]
	Users     *Provider[model.User]
	Suppliers *Provider[model.Supplier]
	Messages  *MessageStore

	profileMu sync.RWMutex
	profile   *model.User

	lastSeen atomic.Int64
	// 初回の取得が終わったら閉じる
	ready chan struct{}
}

func newSession(p model.Principal, src Sources) *Session {
	s := &Session{Principal: p, ready: make(chan struct{})}
	if src.Products != nil {
		if l := src.Products(p.Role); l != nil {
			s.Products = NewProvider(l)
		}
	}
	if src.Orders != nil {
		if l := src.Orders(p.Role); l != nil {
			s.Orders = NewProvider(l)
		}
	}
	if src.Users != nil {
		if l := src.Users(p.Role); l != nil {
			s.Users = NewProvider(l)
		}
	}
	if src.Suppliers != nil {
		if l := src.Suppliers(p.Role); l != nil {
			s.Suppliers = NewProvider(l)
		}
	}
	var convs []model.Conversation
	var msgs []model.Message
	if src.Conversations != nil {
		convs, msgs = src.Conversations(p)
	}
	s.Messages = NewMessageStore(p.UserID, convs, msgs)
	return s
}

// RefreshAllは持っている一覧をまとめて取り直す。
// 失敗はそれぞれのエラー枠に残り、最初のエラーを返す。
func (s *Session) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	if s.Products != nil {
		g.Go(func() error { return s.Products.Refresh(ctx) })
	}
	if s.Orders != nil {
		g.Go(func() error { return s.Orders.Refresh(ctx) })
	}
	if s.Users != nil {
		g.Go(func() error { return s.Users.Refresh(ctx) })
	}
	if s.Suppliers != nil {
		g.Go(func() error { return s.Suppliers.Refresh(ctx) })
	}
	return g.Wait()
}

func (s *Session) Profile() (model.User, bool) {
	s.profileMu.RLock()
	defer s.profileMu.RUnlock()
	if s.profile == nil {
		return model.User{}, false
	}
	return *s.profile, true
}

func (s *Session) SetProfile(u model.User) {
	s.profileMu.Lock()
	defer s.profileMu.Unlock()
	s.profile = &u
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastSeen.Load()))
}
