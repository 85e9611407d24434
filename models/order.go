package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

type Address struct {
	Address string `json:"address" validate:"notblank"`
	City    string `json:"city" validate:"notblank"`
	ZipCode string `json:"zip_code" validate:"notblank"`
}

// CreateOrderInput is everything checkout knows when it finalizes a cart.
type CreateOrderInput struct {
	UserID          string
	CustomerName    string
	Items           []CartLine
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
	DeliveryAddress Address
	Phone           string
	PaymentMethod   PaymentMethod
	Notes           string
}

// Order totals are fixed at creation and never recomputed.
type Order struct {
	ID                int64           `json:"id"`
	UserID            string          `json:"user_id"`
	CustomerName      string          `json:"customer_name"`
	Items             []CartLine      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DeliveryFee       decimal.Decimal `json:"delivery_fee"`
	Tax               decimal.Decimal `json:"tax"`
	Total             decimal.Decimal `json:"total"`
	DeliveryAddress   Address         `json:"delivery_address"`
	Phone             string          `json:"phone"`
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	Notes             string          `json:"notes,omitempty"`
	Status            OrderStatus     `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	EstimatedDelivery time.Time       `json:"estimated_delivery"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Clone returns a copy whose items are not shared with o.
func (o Order) Clone() Order {
	items := make([]CartLine, len(o.Items))
	for i, l := range o.Items {
		l.Item = l.Item.Clone()
		items[i] = l
	}
	o.Items = items
	return o
}

type OrderStats struct {
	TotalOrders     int             `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	PendingOrders   int             `json:"pending_orders"`
	CompletedOrders int             `json:"completed_orders"`
}
