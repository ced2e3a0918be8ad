package model

import "time"

// 「ログイン情報を記憶する」の保存先。client_keyはブラウザ単位の識別子。
type Preference struct {
	ClientKey       string    `gorm:"primaryKey;type:varchar(64)" json:"client_key"`
	RememberedEmail string    `gorm:"type:varchar(255)" json:"remembered_email"`
	RememberMe      bool      `gorm:"not null;default:false" json:"remember_me"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
