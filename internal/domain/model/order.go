package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusPendingPayment OrderStatus = "PENDING_PAYMENT"
	OrderStatusActive         OrderStatus = "ACTIVE"
	OrderStatusProcessing     OrderStatus = "PROCESSING"
	OrderStatusShipped        OrderStatus = "SHIPPED"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// 遷移の可否はバックエンドが決める。ここでは既知の値かどうかだけ。
func (s OrderStatus) Known() bool {
	switch s {
	case OrderStatusPending, OrderStatusPendingPayment, OrderStatusActive, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// 出品者（農家またはサプライヤー）とそのユーザー
type Seller struct {
	ID   string `json:"id"`
	User User   `json:"user"`
}

type OrderProduct struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	MeasurementUnit string          `json:"measurementUnit"`
	Image           string          `json:"image"`
	Farmer          *Seller         `json:"farmer,omitempty"`
	Supplier        *Seller         `json:"supplier,omitempty"`
}

type Order struct {
	ID         string          `json:"id"`
	Buyer      User            `json:"buyer"`
	Product    OrderProduct    `json:"product"`
	Quantity   int64           `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     OrderStatus     `json:"status"`
	IsPaid     bool            `json:"isPaid"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (o Order) Key() string { return o.ID }
