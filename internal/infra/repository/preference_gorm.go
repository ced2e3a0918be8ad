package repository

import (
	"context"
	"errors"

	"umuhinzilink/internal/domain/model"
	repo "umuhinzilink/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceGormRepository struct {
	db *gorm.DB
}

// DI
func NewPreferenceGormRepository(db *gorm.DB) *PreferenceGormRepository {
	return &PreferenceGormRepository{db: db}
}

func (r *PreferenceGormRepository) Find(ctx context.Context, clientKey string) (model.Preference, error) {
	var p model.Preference
	err := r.db.WithContext(ctx).Where("client_key = ?", clientKey).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Preference{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Preference{}, err
	}
	return p, nil
}

// 同じclient_keyがあれば上書き
func (r *PreferenceGormRepository) Save(ctx context.Context, pref model.Preference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"remembered_email", "remember_me", "updated_at"}),
	}).Create(&pref).Error
}

func (r *PreferenceGormRepository) Delete(ctx context.Context, clientKey string) error {
	return r.db.WithContext(ctx).Where("client_key = ?", clientKey).Delete(&model.Preference{}).Error
}
