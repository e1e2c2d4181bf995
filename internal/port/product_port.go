package port

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
)

type ProductRepository interface {
	GetProduct(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID) (domain.Product, error)
	SearchProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error)

	InsertProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	SetActive(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID, active bool) error

	// DecrementStock subtracts qty only if the product is active and holds at least qty units.
	DecrementStock(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID, qty int) (domain.Product, error)
	IncrementStock(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID, qty int) error

	IsOrdered(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID) (bool, error)
	DeleteProduct(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID) error
}
