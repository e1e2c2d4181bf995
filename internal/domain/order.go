package domain

import (
	"github.com/google/uuid"
	"time"
)

type Order struct {
	ID              uuid.UUID
	Marketplace     MarketplaceID
	BuyerID         string
	SellerIDs       []string
	Items           []OrderItem
	Total           Money
	DeliveryAddress string
	DeliveryPhone   string
	Notes           string
	Status          OrderStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ProductID    uuid.UUID
	SellerID     string
	ProductName  string
	Unit         string
	Quantity     int
	PriceAtOrder Money
}

func (i OrderItem) Subtotal() Money {
	return i.PriceAtOrder.Mul(i.Quantity)
}

type DeliveryInfo struct {
	Address string
	Phone   string
	Notes   string
}
