package httpx

import (
	"context"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/service"
	"github.com/stretchr/testify/mock"
)

type catalogMock struct {
	mock.Mock
}

func (m *catalogMock) CreateProduct(ctx context.Context, seller domain.Caller, in domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, seller, in)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *catalogMock) UpdateProduct(ctx context.Context, seller domain.Caller, productID uuid.UUID, in domain.ProductInput) (domain.Product, error) {
	args := m.Called(ctx, seller, productID, in)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *catalogMock) Deactivate(ctx context.Context, seller domain.Caller, productID uuid.UUID) error {
	args := m.Called(ctx, seller, productID)
	return args.Error(0)
}

func (m *catalogMock) DeleteProduct(ctx context.Context, seller domain.Caller, productID uuid.UUID) error {
	args := m.Called(ctx, seller, productID)
	return args.Error(0)
}

func (m *catalogMock) GetProduct(ctx context.Context, productID uuid.UUID) (domain.Product, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *catalogMock) ListActive(ctx context.Context, q service.ProductQuery, page domain.PageRequest) (domain.Page[domain.Product], error) {
	args := m.Called(ctx, q, page)
	return args.Get(0).(domain.Page[domain.Product]), args.Error(1)
}

func (m *catalogMock) ListMine(ctx context.Context, seller domain.Caller, page domain.PageRequest) (domain.Page[domain.Product], error) {
	args := m.Called(ctx, seller, page)
	return args.Get(0).(domain.Page[domain.Product]), args.Error(1)
}

type cartMock struct {
	mock.Mock
}

func (m *cartMock) AddItem(ctx context.Context, buyer domain.Caller, productID uuid.UUID, qty int) (domain.CartItem, error) {
	args := m.Called(ctx, buyer, productID, qty)
	return args.Get(0).(domain.CartItem), args.Error(1)
}

func (m *cartMock) SetQuantity(ctx context.Context, buyer domain.Caller, itemID uuid.UUID, qty int) (domain.CartItem, error) {
	args := m.Called(ctx, buyer, itemID, qty)
	return args.Get(0).(domain.CartItem), args.Error(1)
}

func (m *cartMock) RemoveItem(ctx context.Context, buyer domain.Caller, itemID uuid.UUID) error {
	args := m.Called(ctx, buyer, itemID)
	return args.Error(0)
}

func (m *cartMock) Clear(ctx context.Context, buyer domain.Caller) error {
	args := m.Called(ctx, buyer)
	return args.Error(0)
}

func (m *cartMock) View(ctx context.Context, buyer domain.Caller) (domain.Cart, error) {
	args := m.Called(ctx, buyer)
	return args.Get(0).(domain.Cart), args.Error(1)
}

type checkoutMock struct {
	mock.Mock
}

func (m *checkoutMock) Checkout(ctx context.Context, buyer domain.Caller, info domain.DeliveryInfo, idempotencyKey string) (domain.Order, error) {
	args := m.Called(ctx, buyer, info, idempotencyKey)
	return args.Get(0).(domain.Order), args.Error(1)
}

type lifecycleMock struct {
	mock.Mock
}

func (m *lifecycleMock) UpdateStatus(ctx context.Context, caller domain.Caller, orderID uuid.UUID, status string) (domain.Order, error) {
	args := m.Called(ctx, caller, orderID, status)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *lifecycleMock) Cancel(ctx context.Context, buyer domain.Caller, orderID uuid.UUID) (domain.Order, error) {
	args := m.Called(ctx, buyer, orderID)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *lifecycleMock) GetOrder(ctx context.Context, caller domain.Caller, orderID uuid.UUID) (domain.Order, error) {
	args := m.Called(ctx, caller, orderID)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *lifecycleMock) GetForBuyer(ctx context.Context, buyer domain.Caller, page domain.PageRequest) (domain.Page[domain.Order], error) {
	args := m.Called(ctx, buyer, page)
	return args.Get(0).(domain.Page[domain.Order]), args.Error(1)
}

func (m *lifecycleMock) GetForSeller(ctx context.Context, seller domain.Caller, page domain.PageRequest, statuses ...domain.OrderStatus) (domain.Page[domain.Order], error) {
	args := m.Called(ctx, seller, page, statuses)
	return args.Get(0).(domain.Page[domain.Order]), args.Error(1)
}
