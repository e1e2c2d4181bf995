package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

// Storage limits: quantities are INTEGER columns, prices NUMERIC(12,2).
const (
	MaxQuantity      = 1_000_000
	MaxStockQuantity = 1_000_000_000
	PriceScale       = 2
)

// MaxPrice is the first amount that no longer fits a price column.
var MaxPrice = decimal.New(1, 10)

type Product struct {
	ID            uuid.UUID
	Marketplace   MarketplaceID
	SellerID      string
	Name          string
	Description   string
	Brand         string
	Category      Category
	Price         Money
	StockQuantity int
	Unit          string
	ImageURL      string
	Active        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProductInput carries the seller-mutable fields of a product.
type ProductInput struct {
	Name          string
	Description   string
	Brand         string
	Category      string
	Price         Money
	StockQuantity int
	Unit          string
	ImageURL      string
}

// Apply validates the input against the marketplace and copies it onto p.
func (in ProductInput) Apply(m Marketplace, p *Product) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return validationError("name is empty")
	}

	if in.Price.IsNegative() {
		return validationError("price must not be negative")
	}

	if in.Price.Amount.GreaterThanOrEqual(MaxPrice) {
		return validationError("price must be below %s", MaxPrice)
	}

	if !in.Price.Amount.Equal(in.Price.Amount.Round(PriceScale)) {
		return validationError("price %s has more than %d decimal places", in.Price.Amount, PriceScale)
	}

	if in.Price.Currency != m.Currency {
		return validationError("price currency %s, marketplace trades in %s", in.Price.Currency, m.Currency)
	}

	if in.StockQuantity < 0 || in.StockQuantity > MaxStockQuantity {
		return validationError("stock quantity must be between 0 and %d", MaxStockQuantity)
	}

	category, err := m.ParseCategory(in.Category)
	if err != nil {
		return err
	}

	p.Name = name
	p.Description = in.Description
	p.Brand = in.Brand
	p.Category = category
	p.Price = in.Price
	p.StockQuantity = in.StockQuantity
	p.Unit = in.Unit
	p.ImageURL = in.ImageURL

	return nil
}
