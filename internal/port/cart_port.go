package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, market domain.MarketplaceID, buyerID string) (domain.Cart, error)
	// GetCartForUpdate locks the buyer's cart lines until the surrounding transaction ends.
	GetCartForUpdate(ctx context.Context, market domain.MarketplaceID, buyerID string) (domain.Cart, error)
	GetItem(ctx context.Context, market domain.MarketplaceID, itemID uuid.UUID) (domain.CartItem, error)

	// AddItem inserts a line or increments the quantity of the existing (buyer, product) line.
	// The price of an existing line is left untouched.
	AddItem(ctx context.Context, market domain.MarketplaceID, item domain.CartItem) (domain.CartItem, error)
	SetQuantity(ctx context.Context, market domain.MarketplaceID, itemID uuid.UUID, qty int) error

	DeleteItem(ctx context.Context, market domain.MarketplaceID, buyerID string, itemID uuid.UUID) (bool, error)
	ClearCart(ctx context.Context, market domain.MarketplaceID, buyerID string) (int64, error)
}
