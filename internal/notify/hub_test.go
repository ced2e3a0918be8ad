package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/logging"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RecentKeepsLastN(t *testing.T) {
	h := NewHub(logging.Discard())
	for i := 0; i < historySize+5; i++ {
		h.Notify("u1", Success("Saved", ""))
	}
	h.Notify("u1", Progress("Uploading", 50))
	h.Notify("", Error("ignored", ""))

	assert.Len(t, h.Recent("u1"), historySize)
	assert.Empty(t, h.Recent(""))
	assert.Empty(t, h.Recent("u2"))
}

func TestHub_DeliversOverWebsocket(t *testing.T) {
	h := NewHub(logging.Discard())
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve("u1", conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Connections("u1") == 1 }, time.Second, 10*time.Millisecond)

	h.Notify("u1", Error("Order failed", "Out of stock"))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got model.Notification
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, model.NotificationError, got.Level)
	assert.Equal(t, "Order failed", got.Title)
	assert.Equal(t, "Out of stock", got.Description)

	_ = conn.Close()
	require.Eventually(t, func() bool { return h.Connections("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_PresenceOnFirstAndLastConnection(t *testing.T) {
	h := NewHub(logging.Discard())
	var mu sync.Mutex
	var events []bool
	h.OnPresence(func(userID string, online bool) {
		mu.Lock()
		defer mu.Unlock()
		if userID == "u1" {
			events = append(events, online)
		}
	})
	got := func() []bool {
		mu.Lock()
		defer mu.Unlock()
		return append([]bool(nil), events...)
	}

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve("u1", conn)
	}))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	a, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Connections("u1") == 1 }, time.Second, 10*time.Millisecond)
	b, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return h.Connections("u1") == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []bool{true}, got())

	// 片方が切れてもまだオンライン
	_ = a.Close()
	require.Eventually(t, func() bool { return h.Connections("u1") == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []bool{true}, got())

	_ = b.Close()
	require.Eventually(t, func() bool { return len(got()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []bool{true, false}, got())
}

func TestHub_SweepHistoryDropsIdleUsers(t *testing.T) {
	h := NewHub(logging.Discard())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	h.Notify("old", Success("Saved", ""))
	now = now.Add(time.Hour)
	h.Notify("fresh", Success("Saved", ""))
	// 接続中のユーザーは古くても残す
	h.Notify("live", Success("Saved", ""))
	h.clients["live"] = map[*client]struct{}{{send: make(chan []byte, 1)}: {}}
	now = now.Add(time.Hour)

	assert.Equal(t, 1, h.SweepHistory(90*time.Minute))
	assert.Empty(t, h.Recent("old"))
	assert.Len(t, h.Recent("fresh"), 1)

	now = now.Add(time.Hour)
	assert.Equal(t, 1, h.SweepHistory(90*time.Minute))
	assert.Empty(t, h.Recent("fresh"))
	assert.Len(t, h.Recent("live"), 1)
}

func TestRecorder_Count(t *testing.T) {
	r := NewRecorder()
	r.Notify("u", Success("a", ""))
	r.Notify("u", Error("b", ""))
	r.Notify("u", Error("c", ""))

	assert.Equal(t, 1, r.Count("u", model.NotificationSuccess))
	assert.Equal(t, 2, r.Count("u", model.NotificationError))
	assert.Len(t, r.For("u"), 3)
}
