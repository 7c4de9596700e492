package models

import (
	"github.com/shopspring/decimal"

	"github.com/minshop/minshop-backend/pkg/enums"
	"github.com/minshop/minshop-backend/pkg/store"
	"github.com/minshop/minshop-backend/pkg/types"
)

// OrderItem is a frozen snapshot of a cart line at checkout time. Later
// price or stock changes never affect it.
type OrderItem struct {
	ProductID      string          `json:"productId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Specifications types.Specs     `json:"specifications"`
}

// Amount is the computed pricing block of an order.
type Amount struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

// Order is created once per checkout and never deleted. RequestID is the
// client-supplied idempotency key; CartCleared records whether the owning
// user's cart was emptied after the order was persisted, so a restart can
// finish the job.
type Order struct {
	store.Meta
	OrderNumber     string               `json:"orderNumber"`
	RequestID       string               `json:"requestId,omitempty"`
	UserID          string               `json:"userId"`
	UserName        string               `json:"userName"`
	Items           []OrderItem          `json:"items"`
	ShippingAddress string               `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	PaymentStatus   enums.PaymentStatus  `json:"paymentStatus"`
	Amount          Amount               `json:"amount"`
	DeliveryMethod  enums.DeliveryMethod `json:"deliveryMethod"`
	DeliveryStatus  enums.DeliveryStatus `json:"deliveryStatus"`
	Status          enums.OrderStatus    `json:"status"`
	Notes           string               `json:"notes"`
	CartCleared     bool                 `json:"cartCleared"`
}
