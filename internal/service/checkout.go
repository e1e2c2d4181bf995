package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"slices"
	"strings"
)

type Checkout struct {
	market domain.Marketplace
	store  port.Store
	events port.EventPublisher
	idem   port.IdempotencyStore
	logger zerolog.Logger
}

func NewCheckout(
	market domain.Marketplace,
	store port.Store,
	events port.EventPublisher,
	idem port.IdempotencyStore,
	logger zerolog.Logger,
) *Checkout {
	return &Checkout{
		market: market,
		store:  store,
		events: events,
		idem:   idem,
		logger: logger.With().Str("component", "checkout").Str("marketplace", string(market.ID)).Logger(),
	}
}

// Checkout converts the buyer's cart into one PENDING order. Stock of every line is
// decremented, the order is inserted and the cart is cleared in a single transaction;
// the first shortage rolls all of it back.
//
// A non-empty idempotencyKey that already produced an order returns that order again.
func (s *Checkout) Checkout(ctx context.Context, buyer domain.Caller, info domain.DeliveryInfo, idempotencyKey string) (domain.Order, error) {
	if err := requireBuyer(s.market, buyer); err != nil {
		return domain.Order{}, err
	}

	info.Address = strings.TrimSpace(info.Address)
	if info.Address == "" {
		return domain.Order{}, fmt.Errorf("%w: delivery address is required", domain.ErrValidation)
	}

	if order, ok := s.replay(ctx, buyer, idempotencyKey); ok {
		return order, nil
	}

	var placed domain.Order

	err := s.store.InTx(ctx, func(r port.Repositories) error {
		cart, err := r.Carts.GetCartForUpdate(ctx, s.market.ID, buyer.ID)
		if err != nil {
			return fmt.Errorf("Carts.GetCartForUpdate: %w", err)
		}

		if cart.IsEmpty() {
			return domain.ErrEmptyCart
		}

		products, err := s.reserve(ctx, r.Products, cart.Items)
		if err != nil {
			return err
		}

		order, err := s.buildOrder(buyer, info, cart.Items, products)
		if err != nil {
			return err
		}

		placed, err = r.Orders.InsertOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("Orders.InsertOrder: %w", err)
		}

		if _, err := r.Carts.ClearCart(ctx, s.market.ID, buyer.ID); err != nil {
			return fmt.Errorf("Carts.ClearCart: %w", err)
		}

		return nil
	})
	if errors.Is(err, domain.ErrEmptyCart) {
		// a concurrent submit with the same key may have emptied the cart
		if order, ok := s.replay(ctx, buyer, idempotencyKey); ok {
			return order, nil
		}
	}
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info().
		Str("order_id", placed.ID.String()).
		Str("buyer_id", buyer.ID).
		Int("items", len(placed.Items)).
		Str("total", placed.Total.String()).
		Msg("order placed")

	s.remember(ctx, buyer, idempotencyKey, placed)

	if err := s.events.PublishOrderEvent(ctx, port.EventOrderPlaced, placed); err != nil {
		s.logger.Warn().Err(err).Str("order_id", placed.ID.String()).Msg("publish order placed")
	}

	return placed, nil
}

// reserve decrements stock in product id order so that concurrent checkouts
// over overlapping carts lock rows in the same sequence.
func (s *Checkout) reserve(ctx context.Context, products port.ProductRepository, items []domain.CartItem) (map[uuid.UUID]domain.Product, error) {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b domain.CartItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	reserved := make(map[uuid.UUID]domain.Product, len(sorted))
	for _, item := range sorted {
		p, err := products.DecrementStock(ctx, s.market.ID, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("Products.DecrementStock[%s]: %w", item.ProductID, err)
		}
		reserved[item.ProductID] = p
	}

	return reserved, nil
}

// buildOrder snapshots the current product state; later catalog edits never reach the order.
func (s *Checkout) buildOrder(buyer domain.Caller, info domain.DeliveryInfo, items []domain.CartItem, products map[uuid.UUID]domain.Product) (domain.Order, error) {
	orderItems := lo.Map(items, func(item domain.CartItem, _ int) domain.OrderItem {
		p := products[item.ProductID]
		return domain.OrderItem{
			ProductID:    p.ID,
			SellerID:     p.SellerID,
			ProductName:  p.Name,
			Unit:         p.Unit,
			Quantity:     item.Quantity,
			PriceAtOrder: p.Price,
		}
	})

	total := domain.ZeroMoney(s.market.Currency)
	for _, item := range orderItems {
		var err error
		if total, err = total.Add(item.Subtotal()); err != nil {
			return domain.Order{}, fmt.Errorf("product %s: %w", item.ProductID, err)
		}
	}

	return domain.Order{
		ID:          uuid.New(),
		Marketplace: s.market.ID,
		BuyerID:     buyer.ID,
		SellerIDs: lo.Uniq(lo.Map(orderItems, func(item domain.OrderItem, _ int) string {
			return item.SellerID
		})),
		Items:           orderItems,
		Total:           total,
		DeliveryAddress: info.Address,
		DeliveryPhone:   strings.TrimSpace(info.Phone),
		Notes:           strings.TrimSpace(info.Notes),
		Status:          domain.OrderStatusPending,
	}, nil
}

func (s *Checkout) replay(ctx context.Context, buyer domain.Caller, key string) (domain.Order, bool) {
	if key == "" || s.idem == nil {
		return domain.Order{}, false
	}

	orderID, found, err := s.idem.Lookup(ctx, s.market.ID, buyer.ID, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", buyer.ID).Msg("idempotency lookup")
		return domain.Order{}, false
	}
	if !found {
		return domain.Order{}, false
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("idempotency record is not an order id")
		return domain.Order{}, false
	}

	order, err := s.store.Repositories().Orders.GetOrder(ctx, s.market.ID, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("idempotency replay")
		return domain.Order{}, false
	}

	if order.BuyerID != buyer.ID {
		return domain.Order{}, false
	}

	s.logger.Info().Str("order_id", orderID).Str("buyer_id", buyer.ID).Msg("checkout replayed")

	return order, true
}

func (s *Checkout) remember(ctx context.Context, buyer domain.Caller, key string, order domain.Order) {
	if key == "" || s.idem == nil {
		return
	}

	if err := s.idem.Remember(ctx, s.market.ID, buyer.ID, key, order.ID.String()); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID.String()).Msg("idempotency remember")
	}
}
