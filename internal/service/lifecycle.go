package service

import (
	"bytes"
	"context"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/rs/zerolog"
	"slices"
)

type Lifecycle struct {
	market domain.Marketplace
	store  port.Store
	events port.EventPublisher
	logger zerolog.Logger
}

func NewLifecycle(market domain.Marketplace, store port.Store, events port.EventPublisher, logger zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		market: market,
		store:  store,
		events: events,
		logger: logger.With().Str("component", "lifecycle").Str("marketplace", string(market.ID)).Logger(),
	}
}

// UpdateStatus moves an order along the status graph on behalf of a seller of the order or an admin.
// A transition to CANCELLED puts the ordered quantities back into stock.
func (s *Lifecycle) UpdateStatus(ctx context.Context, caller domain.Caller, orderID uuid.UUID, status string) (domain.Order, error) {
	to, err := domain.ToOrderStatus(status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	return s.transition(ctx, orderID, to, func(o domain.Order) error {
		actor, ok := s.market.ActorFor(caller, o)
		if !ok || actor == domain.ActorBuyer {
			return fmt.Errorf("%w: caller is not a seller of order %s", domain.ErrForbidden, orderID)
		}

		if o.Status.IsTerminal() {
			return fmt.Errorf("%w: order %s is already %s", domain.ErrInvalidTransition, orderID, o.Status)
		}

		if !domain.IsLegalTransition(o.Status, to) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, o.Status, to)
		}

		if !domain.CanTransition(actor, o.Status, to) {
			return fmt.Errorf("%w: %s may not move order from %s to %s", domain.ErrForbidden, actor, o.Status, to)
		}

		return nil
	})
}

// Cancel lets the buyer withdraw an order that no seller has confirmed yet.
func (s *Lifecycle) Cancel(ctx context.Context, buyer domain.Caller, orderID uuid.UUID) (domain.Order, error) {
	return s.transition(ctx, orderID, domain.OrderStatusCancelled, func(o domain.Order) error {
		if buyer.ID == "" || o.BuyerID != buyer.ID {
			return fmt.Errorf("%w: order %s belongs to another buyer", domain.ErrForbidden, orderID)
		}

		if !domain.CanTransition(domain.ActorBuyer, o.Status, domain.OrderStatusCancelled) {
			return fmt.Errorf("%w: only PENDING orders can be cancelled, order is %s", domain.ErrInvalidTransition, o.Status)
		}

		return nil
	})
}

// transition locks the order row, lets check authorize the move and applies it.
func (s *Lifecycle) transition(ctx context.Context, orderID uuid.UUID, to domain.OrderStatus, check func(domain.Order) error) (domain.Order, error) {
	var (
		updated domain.Order
		from    domain.OrderStatus
	)

	err := s.store.InTx(ctx, func(r port.Repositories) error {
		o, err := r.Orders.GetOrderForUpdate(ctx, s.market.ID, orderID)
		if err != nil {
			return fmt.Errorf("Orders.GetOrderForUpdate: %w", err)
		}

		if err := check(o); err != nil {
			return err
		}

		if err := r.Orders.UpdateOrderStatus(ctx, s.market.ID, orderID, to); err != nil {
			return fmt.Errorf("Orders.UpdateOrderStatus: %w", err)
		}

		if to == domain.OrderStatusCancelled {
			if err := s.restock(ctx, r.Products, o.Items); err != nil {
				return err
			}
		}

		from = o.Status

		updated, err = r.Orders.GetOrder(ctx, s.market.ID, orderID)
		if err != nil {
			return fmt.Errorf("Orders.GetOrder: %w", err)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("order status changed")

	if err := s.events.PublishOrderEvent(ctx, port.EventOrderStatusChanged, updated); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("publish order status changed")
	}

	return updated, nil
}

// restock returns ordered quantities in product id order, the same order
// checkout locks product rows in.
func (s *Lifecycle) restock(ctx context.Context, products port.ProductRepository, items []domain.OrderItem) error {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b domain.OrderItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	for _, item := range sorted {
		if err := products.IncrementStock(ctx, s.market.ID, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("Products.IncrementStock[%s]: %w", item.ProductID, err)
		}
	}

	return nil
}

// GetOrder returns one order to its buyer, one of its sellers or an admin.
func (s *Lifecycle) GetOrder(ctx context.Context, caller domain.Caller, orderID uuid.UUID) (domain.Order, error) {
	o, err := s.store.Repositories().Orders.GetOrder(ctx, s.market.ID, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("Orders.GetOrder: %w", err)
	}

	if _, ok := s.market.ActorFor(caller, o); !ok {
		return domain.Order{}, fmt.Errorf("%w: order %s", domain.ErrForbidden, orderID)
	}

	return o, nil
}

// GetForBuyer lists the caller's own orders, newest first.
func (s *Lifecycle) GetForBuyer(ctx context.Context, buyer domain.Caller, page domain.PageRequest) (domain.Page[domain.Order], error) {
	if err := requireBuyer(s.market, buyer); err != nil {
		return domain.Page[domain.Order]{}, err
	}

	return s.search(ctx, domain.OrderFilter{
		Marketplace: s.market.ID,
		BuyerID:     buyer.ID,
	}, page)
}

// GetForSeller lists orders containing at least one of the caller's products.
// Admins see every order of the marketplace.
func (s *Lifecycle) GetForSeller(ctx context.Context, seller domain.Caller, page domain.PageRequest, statuses ...domain.OrderStatus) (domain.Page[domain.Order], error) {
	filter := domain.OrderFilter{
		Marketplace: s.market.ID,
		Statuses:    statuses,
	}

	switch {
	case seller.IsAdmin():
	case s.market.IsSeller(seller):
		filter.SellerID = seller.ID
	default:
		return domain.Page[domain.Order]{}, requireSeller(s.market, seller)
	}

	return s.search(ctx, filter, page)
}

func (s *Lifecycle) search(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error) {
	if err := filter.Validate(); err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	result, err := s.store.Repositories().Orders.SearchOrders(ctx, filter, page)
	if err != nil {
		return result, fmt.Errorf("Orders.SearchOrders: %w", err)
	}

	return result, nil
}
