package store

import (
	"context"
	"fmt"

	"umuhinzilink/internal/upstream"
)

// Loaderは一覧を1回取得する
type Loader[T any] func(ctx context.Context) upstream.Envelope[[]T]

// LoadErrorは読み込み失敗をエラー枠に入れるための型
type LoadError struct {
	Status  int
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed (%d): %s", e.Status, e.Message)
}

// Providerはスナップショットと、その取得方法をまとめたもの
type Provider[T Keyed] struct {
	*Collection[T]
	load Loader[T]
}

func NewProvider[T Keyed](load Loader[T]) *Provider[T] {
	return &Provider[T]{Collection: NewCollection[T](), load: load}
}

// Refreshは一覧を取り直す。
// 先に出した要求の応答が後から届いても、新しい結果を上書きしない。
func (p *Provider[T]) Refresh(ctx context.Context) error {
	t := p.Begin()
	env := p.load(ctx)
	if !env.Success {
		err := &LoadError{Status: env.Status, Message: env.Message}
		p.Apply(t, nil, err)
		return err
	}
	p.Apply(t, env.Data, nil)
	return nil
}
