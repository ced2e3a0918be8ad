package model

import "time"

// 商品作成、注文承認など。
type AuditAction string

const (
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionCreateOrder       AuditAction = "CREATE_ORDER"
	AuditActionAcceptOrder       AuditAction = "ACCEPT_ORDER"
	AuditActionCancelOrder       AuditAction = "CANCEL_ORDER"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionDeleteUser        AuditAction = "DELETE_USER"
	AuditActionUpdateProfile     AuditAction = "UPDATE_PROFILE"
	AuditActionUploadFile        AuditAction = "UPLOAD_FILE"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct  AuditResourceType = "product"
	AuditResourceOrder    AuditResourceType = "order"
	AuditResourceUser     AuditResourceType = "user"
	AuditResourceSupplier AuditResourceType = "supplier"
	AuditResourceFile     AuditResourceType = "file"
)

type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "SUCCESS"
	AuditOutcomeFailure AuditOutcome = "FAILURE"
)

// 操作ログ。
// 「誰が」「何を」「どの対象に」「結果どうなったか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID（バックエンドのID）。
	ActorUserID string `gorm:"type:varchar(64);not null;index" json:"actor_user_id"`

	ActorRole Role `gorm:"type:varchar(20);not null" json:"actor_role"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//作成前はIDがないので空文字のこともある。
	ResourceID string `gorm:"type:varchar(64);index" json:"resource_id"`

	Outcome AuditOutcome `gorm:"type:varchar(20);not null;index" json:"outcome"`

	//失敗時はバックエンドのメッセージ
	Message string `gorm:"type:text" json:"message"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
