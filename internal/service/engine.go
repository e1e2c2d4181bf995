package service

import (
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/events"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/rs/zerolog"
)

// Engine bundles the four components of one marketplace over a shared store.
type Engine struct {
	Market    domain.Marketplace
	Catalog   *Catalog
	Cart      *Cart
	Checkout  *Checkout
	Lifecycle *Lifecycle
}

type Deps struct {
	Store       port.Store
	Events      port.EventPublisher
	Idempotency port.IdempotencyStore
	Logger      zerolog.Logger
}

func NewEngine(market domain.Marketplace, deps Deps) *Engine {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Engine{
		Market:    market,
		Catalog:   NewCatalog(market, deps.Store, deps.Logger),
		Cart:      NewCart(market, deps.Store, deps.Logger),
		Checkout:  NewCheckout(market, deps.Store, publisher, deps.Idempotency, deps.Logger),
		Lifecycle: NewLifecycle(market, deps.Store, publisher, deps.Logger),
	}
}
