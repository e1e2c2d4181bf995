package repository_test

import (
	"context"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func fakeMoney(m domain.Marketplace) domain.Money {
	return domain.Money{
		Amount:   decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		Currency: m.Currency,
	}
}

func fakeProduct(m domain.Marketplace) domain.Product {
	return domain.Product{
		ID:            uuid.New(),
		Marketplace:   m.ID,
		SellerID:      gofakeit.UUID(),
		Name:          gofakeit.ProductName(),
		Description:   gofakeit.ProductDescription(),
		Brand:         gofakeit.Company(),
		Category:      m.Categories[gofakeit.Number(0, len(m.Categories)-1)],
		Price:         fakeMoney(m),
		StockQuantity: gofakeit.Number(10, 100),
		Unit:          gofakeit.RandomString([]string{"kg", "bag", "litre", "crate"}),
		ImageURL:      gofakeit.URL(),
		Active:        true,
	}
}

func insertProduct(t *testing.T, repo port.ProductRepository, p domain.Product) domain.Product {
	t.Helper()

	inserted, err := repo.InsertProduct(t.Context(), p)
	require.NoError(t, err)

	return inserted
}

// fakeOrder builds an order over the given products, one unit of each.
func fakeOrder(m domain.Marketplace, buyerID string, products ...domain.Product) domain.Order {
	total := domain.ZeroMoney(m.Currency)

	var (
		items   []domain.OrderItem
		sellers []string
	)

	for _, p := range products {
		item := domain.OrderItem{
			ProductID:    p.ID,
			SellerID:     p.SellerID,
			ProductName:  p.Name,
			Unit:         p.Unit,
			Quantity:     gofakeit.Number(1, 5),
			PriceAtOrder: p.Price,
		}
		total = lo.Must(total.Add(item.Subtotal()))
		items = append(items, item)
		sellers = append(sellers, p.SellerID)
	}

	return domain.Order{
		Marketplace:     m.ID,
		BuyerID:         buyerID,
		SellerIDs:       sellers,
		Items:           items,
		Total:           total,
		DeliveryAddress: gofakeit.Address().Address,
		DeliveryPhone:   gofakeit.Phone(),
		Notes:           gofakeit.Sentence(5),
	}
}

func insertOrder(ctx context.Context, t *testing.T, repo port.OrderRepository, o domain.Order) domain.Order {
	t.Helper()

	inserted, err := repo.InsertOrder(ctx, o)
	require.NoError(t, err)

	return inserted
}

func assertProduct(t *testing.T, expected, actual domain.Product) {
	t.Helper()

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Product{}, "CreatedAt", "UpdatedAt"),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
	assert.False(t, actual.UpdatedAt.IsZero())
}

func assertOrder(t *testing.T, expected, actual domain.Order) {
	t.Helper()

	// Treat empty slices as equal to nil
	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Order{}, "CreatedAt", "UpdatedAt"),
		cmpopts.EquateEmpty(),
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
	assert.False(t, actual.UpdatedAt.IsZero())
	assert.NotEqual(t, uuid.Nil, actual.ID)
}

func orderIDs(orders []domain.Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}
