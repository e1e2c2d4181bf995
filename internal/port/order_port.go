package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, market domain.MarketplaceID, orderID uuid.UUID) (domain.Order, error)
	// GetOrderForUpdate locks the order row until the surrounding transaction ends.
	GetOrderForUpdate(ctx context.Context, market domain.MarketplaceID, orderID uuid.UUID) (domain.Order, error)

	SearchOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error)

	InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error)

	UpdateOrderStatus(ctx context.Context, market domain.MarketplaceID, orderID uuid.UUID, status domain.OrderStatus) error
}
