package service_test

import (
	"errors"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/nikolayk812/agromarket/internal/service"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
	"sync"
)

func (suite *engineSuite) TestCheckout_LastUnitsGoToFirstBuyer() {
	t := suite.T()
	ctx := t.Context()
	e := suite.fertilizer

	seller := suite.sellerOf(e)
	buyerA := suite.buyerOf(e)
	buyerB := suite.buyerOf(e)

	p := suite.createProduct(e, seller, "100", 5)
	suite.addToCart(e, buyerA, p.ID, 3)
	suite.addToCart(e, buyerB, p.ID, 3)

	order, err := e.Checkout.Checkout(ctx, buyerA, delivery(), "")
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, buyerA.ID, order.BuyerID)
	assert.Equal(t, []string{seller.ID}, order.SellerIDs)
	assert.True(t, order.Total.Equal(money(e.Market, "300")))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.Equal(t, 2, suite.stored(e, p.ID).StockQuantity)

	cartA, err := e.Cart.View(ctx, buyerA)
	require.NoError(t, err)
	assert.True(t, cartA.IsEmpty())

	_, err = e.Checkout.Checkout(ctx, buyerB, delivery(), "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var shortage *domain.StockShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, p.ID, shortage.ProductID)
	assert.Equal(t, 3, shortage.Requested)
	assert.Equal(t, 2, shortage.Available)

	assert.Equal(t, 2, suite.stored(e, p.ID).StockQuantity)

	cartB, err := e.Cart.View(ctx, buyerB)
	require.NoError(t, err)
	require.Len(t, cartB.Items, 1)
	assert.Equal(t, 3, cartB.Items[0].Quantity)

	suite.events.AssertCalled(t, "PublishOrderEvent", mock.Anything, port.EventOrderPlaced, mock.MatchedBy(func(o domain.Order) bool {
		return o.ID == order.ID
	}))
	suite.events.AssertNumberOfCalls(t, "PublishOrderEvent", 1)
}

func (suite *engineSuite) TestCheckout_Rejected() {
	e := suite.produce

	tests := []struct {
		name      string
		caller    func() domain.Caller
		info      domain.DeliveryInfo
		wantError error
	}{
		{
			name:      "empty cart",
			caller:    func() domain.Caller { return suite.buyerOf(e) },
			info:      delivery(),
			wantError: domain.ErrEmptyCart,
		},
		{
			name: "blank address",
			caller: func() domain.Caller {
				buyer := suite.buyerOf(e)
				p := suite.createProduct(e, suite.sellerOf(e), "1", 1)
				suite.addToCart(e, buyer, p.ID, 1)
				return buyer
			},
			info:      domain.DeliveryInfo{Address: "  \t"},
			wantError: domain.ErrValidation,
		},
		{
			name:      "seller role",
			caller:    func() domain.Caller { return suite.sellerOf(e) },
			info:      delivery(),
			wantError: domain.ErrForbidden,
		},
		{
			name: "deactivated product in cart",
			caller: func() domain.Caller {
				buyer := suite.buyerOf(e)
				seller := suite.sellerOf(e)
				p := suite.createProduct(e, seller, "1", 1)
				suite.addToCart(e, buyer, p.ID, 1)
				suite.Require().NoError(e.Catalog.Deactivate(suite.T().Context(), seller, p.ID))
				return buyer
			},
			info:      delivery(),
			wantError: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			_, err := e.Checkout.Checkout(t.Context(), tt.caller(), tt.info, "")
			require.ErrorIs(t, err, tt.wantError)
		})
	}

	suite.events.AssertNotCalled(suite.T(), "PublishOrderEvent", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *engineSuite) TestCheckout_ShortageRollsBackEveryLine() {
	t := suite.T()
	ctx := t.Context()
	e := suite.produce

	seller := suite.sellerOf(e)
	buyer := suite.buyerOf(e)

	plenty := suite.createProduct(e, seller, "10", 50)
	scarce := suite.createProduct(e, seller, "10", 1)
	suite.addToCart(e, buyer, plenty.ID, 10)
	suite.addToCart(e, buyer, scarce.ID, 2)

	_, err := e.Checkout.Checkout(ctx, buyer, delivery(), "")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 50, suite.stored(e, plenty.ID).StockQuantity)
	assert.Equal(t, 1, suite.stored(e, scarce.ID).StockQuantity)

	cart, err := e.Cart.View(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)

	orders, err := e.Lifecycle.GetForBuyer(ctx, buyer, domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, orders.Content)
}

func (suite *engineSuite) TestCheckout_MultipleSellers() {
	t := suite.T()
	e := suite.produce

	sellerA := suite.sellerOf(e)
	sellerB := suite.sellerOf(e)
	buyer := suite.buyerOf(e)

	a1 := suite.createProduct(e, sellerA, "2.50", 10)
	a2 := suite.createProduct(e, sellerA, "4", 10)
	b1 := suite.createProduct(e, sellerB, "10", 10)
	suite.addToCart(e, buyer, a1.ID, 2)
	suite.addToCart(e, buyer, b1.ID, 1)
	suite.addToCart(e, buyer, a2.ID, 3)

	order := suite.checkout(e, buyer)

	assert.ElementsMatch(t, []string{sellerA.ID, sellerB.ID}, order.SellerIDs)
	assert.Len(t, order.Items, 3)
	assert.True(t, order.Total.Equal(money(e.Market, "27")))

	for _, seller := range []domain.Caller{sellerA, sellerB} {
		page, err := e.Lifecycle.GetForSeller(t.Context(), seller, domain.PageRequest{})
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		assert.Equal(t, order.ID, page.Content[0].ID)
	}
}

func (suite *engineSuite) TestCheckout_PricesAtCheckoutTime() {
	t := suite.T()
	ctx := t.Context()
	e := suite.fertilizer

	seller := suite.sellerOf(e)
	buyer := suite.buyerOf(e)

	p := suite.createProduct(e, seller, "100", 10)
	suite.addToCart(e, buyer, p.ID, 2)

	_, err := e.Catalog.UpdateProduct(ctx, seller, p.ID, priceChange(e.Market, p, "120"))
	require.NoError(t, err)

	order := suite.checkout(e, buyer)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].PriceAtOrder.Equal(money(e.Market, "120")))
	assert.True(t, order.Total.Equal(money(e.Market, "240")))

	renamed := priceChange(e.Market, suite.stored(e, p.ID), "999")
	renamed.Name = "renamed"
	_, err = e.Catalog.UpdateProduct(ctx, seller, p.ID, renamed)
	require.NoError(t, err)

	fetched, err := e.Lifecycle.GetOrder(ctx, buyer, order.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Items[0].PriceAtOrder.Equal(money(e.Market, "120")))
	assert.Equal(t, p.Name, fetched.Items[0].ProductName)
	assert.True(t, fetched.Total.Equal(money(e.Market, "240")))
}

func (suite *engineSuite) TestCheckout_Concurrent() {
	t := suite.T()
	ctx := t.Context()
	e := suite.fertilizer

	const (
		stock   = 4
		buyers  = 10
		perCart = 1
	)

	p := suite.createProduct(e, suite.sellerOf(e), "10", stock)

	callers := make([]domain.Caller, buyers)
	for i := range callers {
		callers[i] = suite.buyerOf(e)
		suite.addToCart(e, callers[i], p.ID, perCart)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)

	for _, buyer := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := e.Checkout.Checkout(ctx, buyer, delivery(), "")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, placed)
	assert.Equal(t, buyers-stock, rejected)
	assert.Equal(t, 0, suite.stored(e, p.ID).StockQuantity)
}

func (suite *engineSuite) TestCheckout_IdempotencyKey() {
	t := suite.T()
	ctx := t.Context()
	e := suite.produce

	idem := &idempotencyMock{}
	checkout := service.NewCheckout(e.Market, suite.store, suite.events, idem, zerolog.Nop())

	buyer := suite.buyerOf(e)
	p := suite.createProduct(e, suite.sellerOf(e), "3", 10)
	suite.addToCart(e, buyer, p.ID, 2)

	var rememberedID string
	idem.On("Lookup", mock.Anything, e.Market.ID, buyer.ID, "key-1").Return("", false, nil).Once()
	idem.On("Remember", mock.Anything, e.Market.ID, buyer.ID, "key-1", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { rememberedID = args.String(4) }).
		Return(nil).Once()

	first, err := checkout.Checkout(ctx, buyer, delivery(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID.String(), rememberedID)

	idem.On("Lookup", mock.Anything, e.Market.ID, buyer.ID, "key-1").Return(first.ID.String(), true, nil).Once()

	again, err := checkout.Checkout(ctx, buyer, delivery(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 8, suite.stored(e, p.ID).StockQuantity)

	idem.AssertExpectations(t)
	suite.events.AssertNumberOfCalls(t, "PublishOrderEvent", 1)
}

func (suite *engineSuite) TestCheckout_IdempotencyStoreDown() {
	t := suite.T()
	e := suite.produce

	idem := &idempotencyMock{}
	idem.On("Lookup", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", false, errors.New("connection refused"))
	idem.On("Remember", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	checkout := service.NewCheckout(e.Market, suite.store, suite.events, idem, zerolog.Nop())

	buyer := suite.buyerOf(e)
	p := suite.createProduct(e, suite.sellerOf(e), "3", 10)
	suite.addToCart(e, buyer, p.ID, 1)

	order, err := checkout.Checkout(t.Context(), buyer, delivery(), "key-2")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, order.ID)
}

func (suite *engineSuite) TestCheckout_PublishFailureKeepsOrder() {
	t := suite.T()
	e := suite.fertilizer

	events := &publisherMock{}
	events.On("PublishOrderEvent", mock.Anything, port.EventOrderPlaced, mock.Anything).Return(errors.New("broker unavailable")).Once()

	checkout := service.NewCheckout(e.Market, suite.store, events, nil, zerolog.Nop())

	buyer := suite.buyerOf(e)
	p := suite.createProduct(e, suite.sellerOf(e), "3", 10)
	suite.addToCart(e, buyer, p.ID, 4)

	order, err := checkout.Checkout(t.Context(), buyer, delivery(), "")
	require.NoError(t, err)

	stored, err := e.Lifecycle.GetOrder(t.Context(), buyer, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, stored.Status)
	assert.Equal(t, 6, suite.stored(e, p.ID).StockQuantity)
	assert.Equal(t, []uuid.UUID{p.ID}, lo.Map(stored.Items, func(i domain.OrderItem, _ int) uuid.UUID { return i.ProductID }))

	events.AssertExpectations(t)
}

func (suite *engineSuite) TestCheckout_SameCartSubmittedTwice() {
	t := suite.T()
	ctx := t.Context()
	e := suite.produce

	buyer := suite.buyerOf(e)
	p := suite.createProduct(e, suite.sellerOf(e), "15", 10)
	suite.addToCart(e, buyer, p.ID, 2)

	const submits = 2

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed []domain.Order
		empty  int
	)

	for range submits {
		wg.Add(1)
		go func() {
			defer wg.Done()

			order, err := e.Checkout.Checkout(ctx, buyer, delivery(), "double-click")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed = append(placed, order)
			case errors.Is(err, domain.ErrEmptyCart):
				empty++
			default:
				t.Errorf("unexpected checkout error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Len(t, placed, 1)
	assert.Equal(t, 1, empty)
	assert.Equal(t, 8, suite.stored(e, p.ID).StockQuantity)

	orders, err := e.Lifecycle.GetForBuyer(ctx, buyer, domain.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), orders.TotalElements)
}

func (suite *engineSuite) TestCheckout_SameKeyReplaysAfterEmptyCart() {
	t := suite.T()
	ctx := t.Context()
	e := suite.fertilizer

	buyer := suite.buyerOf(e)
	order, p := suite.placeOrder(e, suite.sellerOf(e), buyer, 10, 3)

	// the record lands while the retry is already past the first lookup
	idem := &idempotencyMock{}
	idem.On("Lookup", mock.Anything, e.Market.ID, buyer.ID, "retry").Return("", false, nil).Once()
	idem.On("Lookup", mock.Anything, e.Market.ID, buyer.ID, "retry").Return(order.ID.String(), true, nil).Once()

	checkout := service.NewCheckout(e.Market, suite.store, suite.events, idem, zerolog.Nop())

	again, err := checkout.Checkout(ctx, buyer, delivery(), "retry")
	require.NoError(t, err)
	assert.Equal(t, order.ID, again.ID)
	assert.Equal(t, 7, p.StockQuantity)
	assert.Equal(t, 7, suite.stored(e, p.ID).StockQuantity)

	idem.AssertExpectations(t)
}

func (suite *engineSuite) TestCheckout_CurrencyMismatchRollsBack() {
	t := suite.T()
	ctx := t.Context()
	e := suite.produce

	buyer := suite.buyerOf(e)
	p := suite.createProduct(e, suite.sellerOf(e), "40", 5)
	suite.addToCart(e, buyer, p.ID, 2)

	// same rows, but the marketplace now trades in another currency
	checkout := service.NewCheckout(e.Market.WithCurrency(currency.EUR), suite.store, suite.events, nil, zerolog.Nop())

	assert.NotPanics(t, func() {
		_, err := checkout.Checkout(ctx, buyer, delivery(), "")
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	assert.Equal(t, 5, suite.stored(e, p.ID).StockQuantity)

	cart, err := e.Cart.View(ctx, buyer)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	_, err = cart.TotalPrice(e.Market.WithCurrency(currency.EUR))
	require.ErrorIs(t, err, domain.ErrValidation)

	suite.events.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, port.EventOrderPlaced, mock.Anything)
}
