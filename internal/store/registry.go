package store

import (
	"context"
	"sync"
	"time"

	"umuhinzilink/internal/domain/model"

	"github.com/labstack/gommon/log"
)

// Registryはユーザーごとのセッションを持つ。
// 初回アクセスで一覧を取得し、以降は同じスナップショットを共有する。
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	online   map[string]bool
	src      Sources
	idleTTL  time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// DI
func NewRegistry(src Sources, idleTTL time.Duration, logger *log.Logger) *Registry {
	return &Registry{
		sessions: map[string]*Session{},
		online:   map[string]bool{},
		src:      src,
		idleTTL:  idleTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// Openはセッションを返す。なければ作って初回の取得を行う。
// 同時に来た呼び出しは初回の取得が終わるまで待つ。ctxが先に切れたら
// 取得中のセッションをそのまま返す（各一覧はLoadingのまま）。
// 取得の失敗は各一覧のエラー枠に入るので、ここではエラーにしない。
func (r *Registry) Open(ctx context.Context, p model.Principal) *Session {
	r.mu.Lock()
	s, ok := r.sessions[p.UserID]
	if ok && s.Principal.Role != p.Role {
		// ロールが変わったら作り直す
		ok = false
	}
	if ok {
		s.touch(r.now())
		r.mu.Unlock()
		select {
		case <-s.ready:
		case <-ctx.Done():
		}
		return s
	}
	s = newSession(p, r.src)
	s.touch(r.now())
	for id := range r.online {
		s.Messages.SetOnline(id, true)
	}
	r.sessions[p.UserID] = s
	r.mu.Unlock()

	// 初回の取得は呼び出し元のキャンセルに引きずられない
	err := s.RefreshAll(context.WithoutCancel(ctx))
	close(s.ready)
	if err != nil {
		r.logger.Warnf("initial load for user %s (%s): %v", p.UserID, p.Role, err)
	}
	return s
}

// SetOnlineは在席の変化を全セッションの会話一覧に流す
func (r *Registry) SetOnline(userID string, online bool) {
	r.mu.Lock()
	if online {
		r.online[userID] = true
	} else {
		delete(r.online, userID)
	}
	sessions := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		if id != userID {
			sessions = append(sessions, s)
		}
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Messages.SetOnline(userID, online)
	}
}

// Deliverは送った発言を相手のセッションに届ける。
// 相手がセッションを持っていないか、送り手との会話がなければfalse。
func (r *Registry) Deliver(to string, msg model.Message) bool {
	s, ok := r.Get(to)
	if !ok {
		return false
	}
	convID, ok := s.Messages.ConversationWith(msg.SenderID)
	if !ok {
		return false
	}
	msg.ConversationID = convID
	return s.Messages.Receive(msg) == nil
}

func (r *Registry) Get(userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Closeはログアウト時に破棄する
func (r *Registry) Close(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweepはしばらく使われていないセッションを破棄し、件数を返す
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince(now) > r.idleTTL {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeperはctxが終わるまで定期的にSweepする
func (r *Registry) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Infof("evicted %d idle sessions", n)
			}
		}
	}
}
