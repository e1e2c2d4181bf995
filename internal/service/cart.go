package service

import (
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/rs/zerolog"
)

type Cart struct {
	market domain.Marketplace
	store  port.Store
	logger zerolog.Logger
}

func NewCart(market domain.Marketplace, store port.Store, logger zerolog.Logger) *Cart {
	return &Cart{
		market: market,
		store:  store,
		logger: logger.With().Str("component", "cart").Str("marketplace", string(market.ID)).Logger(),
	}
}

// AddItem puts qty units of an active product into the buyer's cart. A repeated add
// increments the existing line and keeps the price captured the first time.
func (s *Cart) AddItem(ctx context.Context, buyer domain.Caller, productID uuid.UUID, qty int) (domain.CartItem, error) {
	if err := requireBuyer(s.market, buyer); err != nil {
		return domain.CartItem{}, err
	}

	if qty < 1 || qty > domain.MaxQuantity {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrValidation, domain.MaxQuantity)
	}

	var added domain.CartItem

	err := s.store.InTx(ctx, func(r port.Repositories) error {
		p, err := r.Products.GetProduct(ctx, s.market.ID, productID)
		if err != nil {
			return fmt.Errorf("Products.GetProduct: %w", err)
		}

		if !p.Active {
			return fmt.Errorf("product %s is inactive: %w", productID, domain.ErrNotFound)
		}

		added, err = r.Carts.AddItem(ctx, s.market.ID, domain.CartItem{
			BuyerID:         buyer.ID,
			ProductID:       productID,
			Quantity:        qty,
			PriceAtAddition: p.Price,
		})
		if err != nil {
			return fmt.Errorf("Carts.AddItem: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	return added, nil
}

// SetQuantity replaces the line quantity; anything below 1 is stored as 1.
func (s *Cart) SetQuantity(ctx context.Context, buyer domain.Caller, itemID uuid.UUID, qty int) (domain.CartItem, error) {
	if err := requireBuyer(s.market, buyer); err != nil {
		return domain.CartItem{}, err
	}

	if qty > domain.MaxQuantity {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must not exceed %d", domain.ErrValidation, domain.MaxQuantity)
	}

	qty = max(qty, 1)

	var updated domain.CartItem

	err := s.store.InTx(ctx, func(r port.Repositories) error {
		item, err := r.Carts.GetItem(ctx, s.market.ID, itemID)
		if err != nil {
			return fmt.Errorf("Carts.GetItem: %w", err)
		}

		if item.BuyerID != buyer.ID {
			return fmt.Errorf("%w: cart item %s belongs to another buyer", domain.ErrForbidden, itemID)
		}

		if err := r.Carts.SetQuantity(ctx, s.market.ID, itemID, qty); err != nil {
			return fmt.Errorf("Carts.SetQuantity: %w", err)
		}

		updated, err = r.Carts.GetItem(ctx, s.market.ID, itemID)
		if err != nil {
			return fmt.Errorf("Carts.GetItem: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.CartItem{}, err
	}

	return updated, nil
}

// RemoveItem is unconditional: removing an unknown or foreign line changes nothing.
func (s *Cart) RemoveItem(ctx context.Context, buyer domain.Caller, itemID uuid.UUID) error {
	if err := requireBuyer(s.market, buyer); err != nil {
		return err
	}

	removed, err := s.store.Repositories().Carts.DeleteItem(ctx, s.market.ID, buyer.ID, itemID)
	if err != nil {
		return fmt.Errorf("Carts.DeleteItem: %w", err)
	}

	if !removed {
		s.logger.Debug().Str("item_id", itemID.String()).Str("buyer_id", buyer.ID).Msg("cart item not removed")
	}

	return nil
}

func (s *Cart) Clear(ctx context.Context, buyer domain.Caller) error {
	if err := requireBuyer(s.market, buyer); err != nil {
		return err
	}

	if _, err := s.store.Repositories().Carts.ClearCart(ctx, s.market.ID, buyer.ID); err != nil {
		return fmt.Errorf("Carts.ClearCart: %w", err)
	}

	return nil
}

// View returns the cart with every line joined to the live product state.
func (s *Cart) View(ctx context.Context, buyer domain.Caller) (domain.Cart, error) {
	if err := requireBuyer(s.market, buyer); err != nil {
		return domain.Cart{}, err
	}

	cart, err := s.store.Repositories().Carts.GetCart(ctx, s.market.ID, buyer.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("Carts.GetCart: %w", err)
	}

	return cart, nil
}
