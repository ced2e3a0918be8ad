package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusInStock    ProductStatus = "in_stock"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
	ProductStatusPending    ProductStatus = "pending"
)

// 出品者の種類
type OwnerKind string

const (
	OwnerFarmer   OwnerKind = "farmer"
	OwnerSupplier OwnerKind = "supplier"
)

type Product struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Quantity        int64           `json:"quantity"`
	MeasurementUnit string          `json:"measurementUnit"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Description     string          `json:"description"`
	Image           string          `json:"image"`
	Location        string          `json:"location"`
	IsNegotiable    bool            `json:"isNegotiable"`
	Certification   string          `json:"certification"`
	ProductStatus   ProductStatus   `json:"productStatus"`
	OwnerKind       OwnerKind       `json:"ownerKind,omitempty"`
	OwnerID         string          `json:"ownerId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (p Product) Key() string { return p.ID }

// DeriveStatusはバックエンドが状態を返さなかったときに数量から決める。
// pendingはバックエンドの判断なのでそのまま残す。
func (p Product) DeriveStatus() ProductStatus {
	if p.ProductStatus == ProductStatusPending {
		return ProductStatusPending
	}
	if p.Quantity > 0 {
		return ProductStatusInStock
	}
	return ProductStatusOutOfStock
}

// Normalizeは表示用の派生項目を埋める
func (p Product) Normalize() Product {
	p.ProductStatus = p.DeriveStatus()
	return p
}
