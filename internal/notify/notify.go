package notify

import (
	"sync"
	"time"

	"umuhinzilink/internal/domain/model"

	"github.com/google/uuid"
)

// Notifierはユーザーにトーストを届ける
type Notifier interface {
	Notify(userID string, n model.Notification)
}

func newNotification(level model.NotificationLevel, title string, desc string) model.Notification {
	return model.Notification{
		ID:          uuid.NewString(),
		Level:       level,
		Title:       title,
		Description: desc,
		CreatedAt:   time.Now(),
	}
}

func Success(title string, desc string) model.Notification {
	return newNotification(model.NotificationSuccess, title, desc)
}

func Error(title string, desc string) model.Notification {
	return newNotification(model.NotificationError, title, desc)
}

func Info(title string, desc string) model.Notification {
	return newNotification(model.NotificationInfo, title, desc)
}

func Progress(title string, percent int) model.Notification {
	n := newNotification(model.NotificationProgress, title, "")
	n.Progress = &percent
	return n
}

// Recorderは届いたトーストを記録するだけのNotifier
type Recorder struct {
	mu    sync.Mutex
	items map[string][]model.Notification
}

func NewRecorder() *Recorder {
	return &Recorder{items: map[string][]model.Notification{}}
}

func (r *Recorder) Notify(userID string, n model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[userID] = append(r.items[userID], n)
}

func (r *Recorder) For(userID string) []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Notification, len(r.items[userID]))
	copy(out, r.items[userID])
	return out
}

// Countは指定レベルの件数
func (r *Recorder) Count(userID string, level model.NotificationLevel) int {
	n := 0
	for _, it := range r.For(userID) {
		if it.Level == level {
			n++
		}
	}
	return n
}
