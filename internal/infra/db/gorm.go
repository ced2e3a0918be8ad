package db

import (
	"umuhinzilink/internal/config"
	"umuhinzilink/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.IsProduction() {
		level = logger.Error
	}
	return gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
}

// Migrateはこのサービスが持つテーブルだけを作る
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.AuditLog{},
		&model.Preference{},
	)
}
