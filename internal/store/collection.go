package store

import (
	"sync"
)

// Keyedはidで同一性を判定できるもの
type Keyed interface {
	Key() string
}

// Ticketは読み込み要求の発行順
type Ticket uint64

// Collectionはクライアントに見せるスナップショット1つ分。
// 同じidは常に1件だけ。追加は末尾、編集はidで置換、削除はidで除去。
// ネットワークには触れない。
type Collection[T Keyed] struct {
	mu       sync.RWMutex
	items    []T
	inflight int
	err      error
	issued   Ticket
	applied  Ticket
}

func NewCollection[T Keyed]() *Collection[T] {
	return &Collection[T]{items: []T{}}
}

// Itemsはコピーを返す
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Addは末尾に追加する。既に同じidがあれば置き換える。
func (c *Collection[T]) Add(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(item.Key()); i >= 0 {
		c.items[i] = item
		return
	}
	c.items = append(c.items, item)
}

// Replaceはidが一致する1件を置き換える。見つからなければfalse。
func (c *Collection[T]) Replace(item T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(item.Key())
	if i < 0 {
		return false
	}
	c.items[i] = item
	return true
}

// Removeはidが一致する1件を取り除く
func (c *Collection[T]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return true
}

// Beginは読み込み開始。返したTicketをApplyに渡す。
func (c *Collection[T]) Begin() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.inflight++
	return c.issued
}

// Applyは読み込み結果を反映する。
// 後から発行された要求の結果が既に反映されていれば捨ててfalseを返す。
// errがあれば一覧はそのまま残してエラーだけ記録する。
func (c *Collection[T]) Apply(t Ticket, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		c.inflight--
	}
	if t < c.applied {
		return false
	}
	c.applied = t
	if err != nil {
		c.err = err
		return true
	}
	c.items = dedupe(items)
	c.err = nil
	return true
}

// Loadingは読み込み中の要求があるか
func (c *Collection[T]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight > 0
}

func (c *Collection[T]) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Collection[T]) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].Key() == id {
			return i
		}
	}
	return -1
}

// 最初に出た位置に、最後に出た値を残す
func dedupe[T Keyed](items []T) []T {
	out := make([]T, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := pos[it.Key()]; ok {
			out[i] = it
			continue
		}
		pos[it.Key()] = len(out)
		out = append(out, it)
	}
	return out
}
