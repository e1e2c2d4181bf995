package service_test

import (
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/service"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *engineSuite) TestCreateProduct() {
	tests := []struct {
		name      string
		engine    func() *service.Engine
		caller    domain.Caller
		inputFunc func(m domain.Marketplace) domain.ProductInput
		wantError error
	}{
		{
			name:      "provider in fertilizer: ok",
			engine:    func() *service.Engine { return suite.fertilizer },
			caller:    newCaller(domain.RoleProvider),
			inputFunc: func(m domain.Marketplace) domain.ProductInput { return productInput(m, "500", 100) },
		},
		{
			name:      "farmer in produce: ok",
			engine:    func() *service.Engine { return suite.produce },
			caller:    newCaller(domain.RoleFarmer),
			inputFunc: func(m domain.Marketplace) domain.ProductInput { return productInput(m, "40.50", 20) },
		},
		{
			name:      "farmer in fertilizer: forbidden",
			engine:    func() *service.Engine { return suite.fertilizer },
			caller:    newCaller(domain.RoleFarmer),
			inputFunc: func(m domain.Marketplace) domain.ProductInput { return productInput(m, "500", 100) },
			wantError: domain.ErrForbidden,
		},
		{
			name:   "produce category in fertilizer: validation",
			engine: func() *service.Engine { return suite.fertilizer },
			caller: newCaller(domain.RoleProvider),
			inputFunc: func(m domain.Marketplace) domain.ProductInput {
				in := productInput(m, "500", 100)
				in.Category = "VEGETABLE"
				return in
			},
			wantError: domain.ErrValidation,
		},
		{
			name:   "negative price: validation",
			engine: func() *service.Engine { return suite.produce },
			caller: newCaller(domain.RoleFarmer),
			inputFunc: func(m domain.Marketplace) domain.ProductInput {
				return productInput(m, "-1", 10)
			},
			wantError: domain.ErrValidation,
		},
		{
			name:   "negative stock: validation",
			engine: func() *service.Engine { return suite.produce },
			caller: newCaller(domain.RoleFarmer),
			inputFunc: func(m domain.Marketplace) domain.ProductInput {
				return productInput(m, "1", -1)
			},
			wantError: domain.ErrValidation,
		},
		{
			name:   "blank name: validation",
			engine: func() *service.Engine { return suite.produce },
			caller: newCaller(domain.RoleFarmer),
			inputFunc: func(m domain.Marketplace) domain.ProductInput {
				in := productInput(m, "1", 1)
				in.Name = "   "
				return in
			},
			wantError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()
			e := tt.engine()
			in := tt.inputFunc(e.Market)

			p, err := e.Catalog.CreateProduct(t.Context(), tt.caller, in)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, e.Market.ID, p.Marketplace)
			assert.Equal(t, tt.caller.ID, p.SellerID)
			assert.Equal(t, in.Name, p.Name)
			assert.True(t, in.Price.Equal(p.Price))
			assert.Equal(t, in.StockQuantity, p.StockQuantity)
			assert.True(t, p.Active)

			fetched, err := e.Catalog.GetProduct(t.Context(), p.ID)
			require.NoError(t, err)
			assert.Equal(t, p.ID, fetched.ID)
		})
	}
}

func (suite *engineSuite) TestUpdateProduct() {
	t := suite.T()
	ctx := t.Context()

	owner := suite.sellerOf(suite.fertilizer)
	p := suite.createProduct(suite.fertilizer, owner, "500", 10)

	in := productInput(suite.fertilizer.Market, "650", 7)

	updated, err := suite.fertilizer.Catalog.UpdateProduct(ctx, owner, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, in.Name, updated.Name)
	assert.True(t, updated.Price.Equal(in.Price))
	assert.Equal(t, 7, updated.StockQuantity)

	_, err = suite.fertilizer.Catalog.UpdateProduct(ctx, suite.sellerOf(suite.fertilizer), p.ID, in)
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = suite.fertilizer.Catalog.UpdateProduct(ctx, owner, uuid.New(), in)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = suite.produce.Catalog.UpdateProduct(ctx, owner, p.ID, in)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func (suite *engineSuite) TestDeactivate() {
	t := suite.T()
	ctx := t.Context()
	catalog := suite.produce.Catalog

	owner := suite.sellerOf(suite.produce)
	p := suite.createProduct(suite.produce, owner, "25", 10)

	err := catalog.Deactivate(ctx, suite.sellerOf(suite.produce), p.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, catalog.Deactivate(ctx, owner, p.ID))
	// a second call is a no-op
	require.NoError(t, catalog.Deactivate(ctx, owner, p.ID))

	_, err = catalog.GetProduct(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	listed, err := catalog.ListActive(ctx, service.ProductQuery{}, domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, listed.Content)

	mine, err := catalog.ListMine(ctx, owner, domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, mine.Content, 1)
	assert.False(t, mine.Content[0].Active)

	other := suite.createProduct(suite.produce, owner, "30", 1)
	require.NoError(t, catalog.Deactivate(ctx, newCaller(domain.RoleAdmin), other.ID))
	assert.False(t, suite.stored(suite.produce, other.ID).Active)
}

func (suite *engineSuite) TestDeleteProduct() {
	t := suite.T()
	ctx := t.Context()
	catalog := suite.fertilizer.Catalog

	owner := suite.sellerOf(suite.fertilizer)
	buyer := suite.buyerOf(suite.fertilizer)

	fresh := suite.createProduct(suite.fertilizer, owner, "10", 10)
	_, ordered := suite.placeOrder(suite.fertilizer, owner, buyer, 10, 1)

	err := catalog.DeleteProduct(ctx, suite.sellerOf(suite.fertilizer), fresh.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, catalog.DeleteProduct(ctx, owner, fresh.ID))

	err = catalog.DeleteProduct(ctx, owner, fresh.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = catalog.DeleteProduct(ctx, owner, ordered.ID)
	require.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, catalog.Deactivate(ctx, owner, ordered.ID))
}

func (suite *engineSuite) TestListActive() {
	t := suite.T()
	ctx := t.Context()

	seller := suite.sellerOf(suite.fertilizer)

	in := productInput(suite.fertilizer.Market, "300", 5)
	in.Category = "organic"
	compost, err := suite.fertilizer.Catalog.CreateProduct(ctx, seller, in)
	require.NoError(t, err)

	in = productInput(suite.fertilizer.Market, "100", 5)
	in.Category = "NITROGEN"
	urea, err := suite.fertilizer.Catalog.CreateProduct(ctx, seller, in)
	require.NoError(t, err)

	suite.createProduct(suite.produce, suite.sellerOf(suite.produce), "1", 1)

	other := suite.sellerOf(suite.fertilizer)
	in = productInput(suite.fertilizer.Market, "50", 5)
	in.Category = "POTASSIUM"
	potash, err := suite.fertilizer.Catalog.CreateProduct(ctx, other, in)
	require.NoError(t, err)

	hidden := suite.createProduct(suite.fertilizer, other, "60", 5)
	require.NoError(t, suite.fertilizer.Catalog.Deactivate(ctx, other, hidden.ID))

	tests := []struct {
		name      string
		query     service.ProductQuery
		wantIDs   []uuid.UUID
		wantError error
	}{
		{
			name:    "sorted by price: ok",
			query:   service.ProductQuery{SortBy: "price"},
			wantIDs: []uuid.UUID{potash.ID, urea.ID, compost.ID},
		},
		{
			name:    "one seller: ok",
			query:   service.ProductQuery{SellerID: seller.ID, SortBy: "price"},
			wantIDs: []uuid.UUID{urea.ID, compost.ID},
		},
		{
			name:    "other seller, active only: ok",
			query:   service.ProductQuery{SellerID: other.ID},
			wantIDs: []uuid.UUID{potash.ID},
		},
		{
			name:    "unknown seller: ok",
			query:   service.ProductQuery{SellerID: "nobody"},
			wantIDs: []uuid.UUID{},
		},
		{
			name:    "by category, lower case: ok",
			query:   service.ProductQuery{Category: "organic"},
			wantIDs: []uuid.UUID{compost.ID},
		},
		{
			name:      "category of the other marketplace: validation",
			query:     service.ProductQuery{Category: "FRUIT"},
			wantError: domain.ErrValidation,
		},
		{
			name:      "unknown sort key: validation",
			query:     service.ProductQuery{SortBy: "popularity"},
			wantError: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			page, err := suite.fertilizer.Catalog.ListActive(t.Context(), tt.query, domain.PageRequest{})
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, lo.Map(page.Content, func(p domain.Product, _ int) uuid.UUID { return p.ID }))
			assert.Equal(t, domain.DefaultPageSize, page.Size)
		})
	}
}

func (suite *engineSuite) TestAllActive() {
	t := suite.T()
	ctx := t.Context()

	seller := suite.sellerOf(suite.produce)
	for range 5 {
		suite.createProduct(suite.produce, seller, "10", 1)
	}

	var seen []uuid.UUID
	for p, err := range suite.produce.Catalog.AllActive(ctx, service.ProductQuery{}, 2) {
		require.NoError(t, err)
		seen = append(seen, p.ID)
	}
	assert.Len(t, seen, 5)
	assert.Len(t, lo.Uniq(seen), 5)

	var first int
	for _, err := range suite.produce.Catalog.AllActive(ctx, service.ProductQuery{}, 2) {
		require.NoError(t, err)
		first++
		if first == 3 {
			break
		}
	}
	assert.Equal(t, 3, first)

	for _, err := range suite.produce.Catalog.AllActive(ctx, service.ProductQuery{SortBy: "bogus"}, 2) {
		require.ErrorIs(t, err, domain.ErrValidation)
	}
}

func (suite *engineSuite) TestListMine_RequiresSellerRole() {
	t := suite.T()

	_, err := suite.fertilizer.Catalog.ListMine(t.Context(), suite.buyerOf(suite.fertilizer), domain.PageRequest{})
	require.ErrorIs(t, err, domain.ErrForbidden)
}
