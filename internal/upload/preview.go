package upload

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrPreviewNotFound = errors.New("preview not found")

// Previewは確定前に表示するための一時データ
type Preview struct {
	ID          string
	OwnerID     string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// Previewsは一時プレビューの置き場。
// Revokeされるか、Closeで全部破棄される。
type Previews struct {
	mu     sync.Mutex
	items  map[string]Preview
	closed bool
}

func NewPreviews() *Previews {
	return &Previews{items: map[string]Preview{}}
}

func (p *Previews) Create(ownerID string, contentType string, data []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", errors.New("previews closed")
	}
	id := uuid.NewString()
	p.items[id] = Preview{
		ID:          id,
		OwnerID:     ownerID,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}
	return id, nil
}

// Getは持ち主以外には見せない
func (p *Previews) Get(ownerID string, id string) (Preview, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pv, ok := p.items[id]
	if !ok || pv.OwnerID != ownerID {
		return Preview{}, ErrPreviewNotFound
	}
	return pv, nil
}

func (p *Previews) Revoke(ownerID string, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pv, ok := p.items[id]
	if !ok || pv.OwnerID != ownerID {
		return false
	}
	delete(p.items, id)
	return true
}

// RevokeOwnerはログアウト時にそのユーザーの分を全部消す
func (p *Previews) RevokeOwner(ownerID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for id, pv := range p.items {
		if pv.OwnerID == ownerID {
			delete(p.items, id)
			n++
		}
	}
	return n
}

func (p *Previews) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = map[string]Preview{}
	p.closed = true
}

func (p *Previews) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
