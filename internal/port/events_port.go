package port

import (
	"context"
	"github.com/nikolayk812/agromarket/internal/domain"
)

const (
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
)

// EventPublisher emits order events after the owning transaction has committed.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order domain.Order) error
}

// IdempotencyStore maps a client supplied key to the order it produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, market domain.MarketplaceID, buyerID, key string) (string, bool, error)
	Remember(ctx context.Context, market domain.MarketplaceID, buyerID, key, orderID string) error
}
