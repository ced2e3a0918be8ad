package notify

import (
	"encoding/json"
	"sync"
	"time"

	"umuhinzilink/internal/domain/model"

	"github.com/gorilla/websocket"
	"github.com/labstack/gommon/log"
)

const (
	historySize = 50
	sendBuffer  = 16
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hubはユーザーごとの直近トーストを持ち、接続中のwebsocketへ配信する
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	history map[string][]model.Notification
	seen    map[string]time.Time
	logger  *log.Logger

	// 最初の接続と最後の切断で呼ばれる
	presence func(userID string, online bool)
	now      func() time.Time
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: map[string]map[*client]struct{}{},
		history: map[string][]model.Notification{},
		seen:    map[string]time.Time{},
		logger:  logger,
		now:     time.Now,
	}
}

// OnPresenceは在席の変化を受け取る関数を登録する。接続を受ける前に呼ぶ。
func (h *Hub) OnPresence(fn func(userID string, online bool)) {
	h.presence = fn
}

// Notifyは履歴に残してから配信する。宛先のないトーストは捨てる。
func (h *Hub) Notify(userID string, n model.Notification) {
	if userID == "" {
		return
	}
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Errorf("marshal notification: %v", err)
		return
	}

	h.mu.Lock()
	// 進捗は件数が多いので履歴に残さない
	if n.Level != model.NotificationProgress {
		hist := append(h.history[userID], n)
		if len(hist) > historySize {
			hist = hist[len(hist)-historySize:]
		}
		h.history[userID] = hist
		h.seen[userID] = h.now()
	}
	var slow []*client
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	// 読めていない接続は切る
	for _, c := range slow {
		h.logger.Warnf("dropping slow notification client for user %s", userID)
		h.detachLocked(userID, c)
	}
	h.mu.Unlock()
}

// Recentは直近のトースト（古い順）
func (h *Hub) Recent(userID string) []model.Notification {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.Notification, len(h.history[userID]))
	copy(out, h.history[userID])
	return out
}

// Serveは接続を登録し、切断されるまでブロックする
func (h *Hub) Serve(userID string, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if len(h.clients[userID]) == 0 {
		h.clients[userID] = map[*client]struct{}{}
		h.setPresence(userID, true)
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(userID, c)
}

func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// SweepHistoryは接続がなく、しばらくトーストもないユーザーの履歴を捨てる
func (h *Hub) SweepHistory(idle time.Duration) int {
	now := h.now()
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, at := range h.seen {
		if len(h.clients[id]) > 0 || now.Sub(at) <= idle {
			continue
		}
		delete(h.seen, id)
		delete(h.history, id)
		n++
	}
	return n
}

func (h *Hub) detach(userID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(userID, c)
}

func (h *Hub) detachLocked(userID string, c *client) {
	set := h.clients[userID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, userID)
		h.setPresence(userID, false)
	}
}

// setPresenceはh.muを持ったまま呼ぶので、中からHubを触らないこと
func (h *Hub) setPresence(userID string, online bool) {
	if h.presence != nil {
		h.presence(userID, online)
	}
}

// 受信は切断検知とpongのためだけ
func (h *Hub) readPump(userID string, c *client) {
	defer func() {
		h.detach(userID, c)
		_ = c.conn.Close()
	}()
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
