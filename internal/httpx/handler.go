package httpx

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/service"
	"net/http"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, seller domain.Caller, in domain.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, seller domain.Caller, productID uuid.UUID, in domain.ProductInput) (domain.Product, error)
	Deactivate(ctx context.Context, seller domain.Caller, productID uuid.UUID) error
	DeleteProduct(ctx context.Context, seller domain.Caller, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error)
	ListActive(ctx context.Context, q service.ProductQuery, page domain.PageRequest) (domain.Page[domain.Product], error)
	ListMine(ctx context.Context, seller domain.Caller, page domain.PageRequest) (domain.Page[domain.Product], error)
}

type CartService interface {
	AddItem(ctx context.Context, buyer domain.Caller, productID uuid.UUID, qty int) (domain.CartItem, error)
	SetQuantity(ctx context.Context, buyer domain.Caller, itemID uuid.UUID, qty int) (domain.CartItem, error)
	RemoveItem(ctx context.Context, buyer domain.Caller, itemID uuid.UUID) error
	Clear(ctx context.Context, buyer domain.Caller) error
	View(ctx context.Context, buyer domain.Caller) (domain.Cart, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, buyer domain.Caller, info domain.DeliveryInfo, idempotencyKey string) (domain.Order, error)
}

type LifecycleService interface {
	UpdateStatus(ctx context.Context, caller domain.Caller, orderID uuid.UUID, status string) (domain.Order, error)
	Cancel(ctx context.Context, buyer domain.Caller, orderID uuid.UUID) (domain.Order, error)
	GetOrder(ctx context.Context, caller domain.Caller, orderID uuid.UUID) (domain.Order, error)
	GetForBuyer(ctx context.Context, buyer domain.Caller, page domain.PageRequest) (domain.Page[domain.Order], error)
	GetForSeller(ctx context.Context, seller domain.Caller, page domain.PageRequest, statuses ...domain.OrderStatus) (domain.Page[domain.Order], error)
}

// MarketplaceHandler serves the REST surface of one marketplace.
type MarketplaceHandler struct {
	market    domain.Marketplace
	catalog   CatalogService
	cart      CartService
	checkout  CheckoutService
	lifecycle LifecycleService
	validate  *validator.Validate
}

func NewMarketplaceHandler(
	market domain.Marketplace,
	catalog CatalogService,
	cart CartService,
	checkout CheckoutService,
	lifecycle LifecycleService,
) *MarketplaceHandler {
	return &MarketplaceHandler{
		market:    market,
		catalog:   catalog,
		cart:      cart,
		checkout:  checkout,
		lifecycle: lifecycle,
		validate:  newValidator(),
	}
}

func HandlerFor(e *service.Engine) *MarketplaceHandler {
	return NewMarketplaceHandler(e.Market, e.Catalog, e.Cart, e.Checkout, e.Lifecycle)
}

func (h *MarketplaceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/products", h.listProducts)
	r.Get("/products/seller/{sellerId}", h.listSellerProducts)

	r.Group(func(r chi.Router) {
		r.Use(RequireCaller)

		r.Get("/products/my", h.listMyProducts)
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Patch("/products/{id}/deactivate", h.deactivateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Get("/cart", h.viewCart)
		r.Post("/cart/items", h.addCartItem)
		r.Put("/cart/items/{id}", h.setCartQuantity)
		r.Delete("/cart/items/{id}", h.removeCartItem)
		r.Delete("/cart", h.clearCart)

		r.Post("/orders/checkout", h.placeOrder)
		r.Get("/orders/my", h.listMyOrders)
		r.Get("/orders/my/{id}", h.getMyOrder)
		r.Patch("/orders/my/{id}/cancel", h.cancelOrder)
		r.Get("/orders", h.listSellerOrders)
		r.Patch("/orders/{id}/status", h.updateOrderStatus)
	})

	r.Get("/products/{id}", h.getProduct)

	return r
}

// caller is only called behind RequireCaller.
func caller(r *http.Request) domain.Caller {
	c, _ := CallerFrom(r.Context())
	return c
}

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, validationErr("id is not a valid uuid")
	}
	return id, nil
}
