package repository

import (
	"context"

	"umuhinzilink/internal/domain/model"
)

// 「ログイン情報を記憶する」の保存を約束
type PreferenceRepository interface {
	// 見つからなければErrNotFound
	Find(ctx context.Context, clientKey string) (model.Preference, error)
	Save(ctx context.Context, pref model.Preference) error
	Delete(ctx context.Context, clientKey string) error
}
