package domain

import (
	"errors"
	"fmt"
	"time"
)

// OrderFilter has AND semantics across fields, OR semantics within Statuses.
// Empty BuyerID and SellerID list every order of the marketplace.
type OrderFilter struct {
	Marketplace MarketplaceID
	BuyerID     string
	SellerID    string
	Statuses    []OrderStatus
	CreatedAt   *TimeRange
}

func (f OrderFilter) Validate() error {
	if f.Marketplace == "" {
		return errors.New("marketplace is empty")
	}

	for _, s := range f.Statuses {
		if _, err := ToOrderStatus(string(s)); err != nil {
			return fmt.Errorf("status[%s]: %w", s, err)
		}
	}

	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	return nil
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}
