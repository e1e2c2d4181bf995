package domain

import (
	"fmt"
	"github.com/google/uuid"
	"time"
)

type Cart struct {
	BuyerID string
	Items   []CartItem
}

// TotalPrice sums the line subtotals; currency comes from the marketplace for empty carts.
// A line priced in another currency is reported instead of summed.
func (c Cart) TotalPrice(m Marketplace) (Money, error) {
	total := ZeroMoney(m.Currency)
	for _, item := range c.Items {
		var err error
		if total, err = total.Add(item.Subtotal()); err != nil {
			return Money{}, fmt.Errorf("cart item %s: %w", item.ID, err)
		}
	}
	return total, nil
}

func (c Cart) TotalItems() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

type CartItem struct {
	ID              uuid.UUID
	BuyerID         string
	ProductID       uuid.UUID
	Quantity        int
	PriceAtAddition Money

	// read-only view of the live product
	ProductName  string
	Unit         string
	CurrentPrice Money
	Available    bool

	CreatedAt time.Time
}

func (i CartItem) Subtotal() Money {
	return i.PriceAtAddition.Mul(i.Quantity)
}
