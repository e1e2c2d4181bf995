package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

const productColumns = `id, marketplace, seller_id, name, description, brand, category,
	price_amount, price_currency, stock_quantity, unit, image_url, active, created_at, updated_at`

const (
	getProductSQL = `SELECT ` + productColumns + ` FROM products WHERE marketplace = $1 AND id = $2`

	insertProductSQL = `INSERT INTO products (id, marketplace, seller_id, name, description, brand, category,
		price_amount, price_currency, stock_quantity, unit, image_url, active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING ` + productColumns

	updateProductSQL = `UPDATE products
	SET name = $3, description = $4, brand = $5, category = $6, price_amount = $7, price_currency = $8,
		stock_quantity = $9, unit = $10, image_url = $11, updated_at = now()
	WHERE marketplace = $1 AND id = $2
	RETURNING ` + productColumns

	setActiveSQL = `UPDATE products SET active = $3, updated_at = now() WHERE marketplace = $1 AND id = $2`

	// the WHERE guard is the compare-and-swap: the row lock taken by UPDATE serializes racing decrements
	decrementStockSQL = `UPDATE products
	SET stock_quantity = stock_quantity - $3, updated_at = now()
	WHERE marketplace = $1 AND id = $2 AND active AND stock_quantity >= $3
	RETURNING ` + productColumns

	incrementStockSQL = `UPDATE products
	SET stock_quantity = stock_quantity + $3, updated_at = now()
	WHERE marketplace = $1 AND id = $2`

	isOrderedSQL = `SELECT EXISTS (
		SELECT 1 FROM order_items oi JOIN orders o ON o.id = oi.order_id
		WHERE o.marketplace = $1 AND oi.product_id = $2)`

	deleteProductSQL = `DELETE FROM products WHERE marketplace = $1 AND id = $2`

	searchProductsWhere = ` FROM products
	WHERE marketplace = $1
		AND (NOT $2::boolean OR active)
		AND ($3::text IS NULL OR seller_id = $3)
		AND ($4::text IS NULL OR category = $4)
		AND ($5::text IS NULL OR name ILIKE $5 OR description ILIKE $5 OR brand ILIKE $5)`

	countProductsSQL = `SELECT count(*)` + searchProductsWhere

	searchProductsSQL = `SELECT ` + productColumns + searchProductsWhere + `
	ORDER BY
		CASE WHEN $6 = 'name' THEN name END,
		CASE WHEN $6 = 'price' THEN price_amount END,
		CASE WHEN $6 = 'stock' THEN stock_quantity END,
		CASE WHEN $6 = 'createdAt' THEN created_at END,
		id
	LIMIT $7 OFFSET $8`
)

type productRepository struct {
	db DBTX
}

func NewProduct(db DBTX) port.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetProduct(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID) (domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, getProductSQL, string(market), productID))
	if err != nil {
		return p, fmt.Errorf("getProduct: %w", err)
	}

	return p, nil
}

func (r *productRepository) SearchProducts(ctx context.Context, filter domain.ProductFilter, page domain.PageRequest) (domain.Page[domain.Product], error) {
	var result domain.Page[domain.Product]

	if err := filter.Validate(); err != nil {
		return result, fmt.Errorf("filter.Validate: %w", err)
	}

	page = page.Normalize()
	sortBy := lo.Ternary(filter.SortBy == "", domain.ProductSortName, filter.SortBy)

	args := []any{
		string(filter.Marketplace),
		filter.ActiveOnly,
		lo.EmptyableToPtr(filter.SellerID),
		lo.EmptyableToPtr(string(filter.Category)),
		keywordPattern(filter.Keyword),
	}

	var total int64
	if err := r.db.QueryRow(ctx, countProductsSQL, args...).Scan(&total); err != nil {
		return result, fmt.Errorf("countProducts: %w", err)
	}

	rows, err := r.db.Query(ctx, searchProductsSQL, append(args, string(sortBy), page.Size, page.Offset())...)
	if err != nil {
		return result, fmt.Errorf("searchProducts: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return result, fmt.Errorf("scanProduct: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("rows.Err: %w", err)
	}

	return domain.NewPage(products, total, page), nil
}

func (r *productRepository) InsertProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	p, err := scanProduct(r.db.QueryRow(ctx, insertProductSQL,
		product.ID,
		string(product.Marketplace),
		product.SellerID,
		product.Name,
		product.Description,
		product.Brand,
		string(product.Category),
		product.Price.Amount,
		product.Price.Currency.String(),
		product.StockQuantity,
		product.Unit,
		product.ImageURL,
		product.Active,
	))
	if err != nil {
		return p, fmt.Errorf("insertProduct: %w", err)
	}

	return p, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, updateProductSQL,
		string(product.Marketplace),
		product.ID,
		product.Name,
		product.Description,
		product.Brand,
		string(product.Category),
		product.Price.Amount,
		product.Price.Currency.String(),
		product.StockQuantity,
		product.Unit,
		product.ImageURL,
	))
	if err != nil {
		return p, fmt.Errorf("updateProduct: %w", err)
	}

	return p, nil
}

func (r *productRepository) SetActive(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID, active bool) error {
	cmdTag, err := r.db.Exec(ctx, setActiveSQL, string(market), productID, active)
	if err != nil {
		return fmt.Errorf("setActive: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("setActive: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *productRepository) DecrementStock(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID, qty int) (domain.Product, error) {
	if qty < 1 {
		return domain.Product{}, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	p, err := scanProduct(r.db.QueryRow(ctx, decrementStockSQL, string(market), productID, qty))
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, domain.ErrNotFound) {
		return p, fmt.Errorf("decrementStock: %w", err)
	}

	// the guard rejected the update: tell a missing product from a short one
	current, err := r.GetProduct(ctx, market, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("r.GetProduct: %w", err)
	}

	if !current.Active {
		return domain.Product{}, fmt.Errorf("decrementStock: product %s is inactive: %w", productID, domain.ErrNotFound)
	}

	return domain.Product{}, fmt.Errorf("decrementStock: %w", &domain.StockShortageError{
		ProductID: productID,
		Requested: qty,
		Available: current.StockQuantity,
	})
}

func (r *productRepository) IncrementStock(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	cmdTag, err := r.db.Exec(ctx, incrementStockSQL, string(market), productID, qty)
	if err != nil {
		return fmt.Errorf("incrementStock: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incrementStock: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *productRepository) IsOrdered(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID) (bool, error) {
	var ordered bool
	if err := r.db.QueryRow(ctx, isOrderedSQL, string(market), productID).Scan(&ordered); err != nil {
		return false, fmt.Errorf("isOrdered: %w", err)
	}

	return ordered, nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, market domain.MarketplaceID, productID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, deleteProductSQL, string(market), productID)
	if err != nil {
		return fmt.Errorf("deleteProduct: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("deleteProduct: %w", domain.ErrNotFound)
	}

	return nil
}

type dbProduct struct {
	ID            uuid.UUID
	Marketplace   string
	SellerID      string
	Name          string
	Description   string
	Brand         string
	Category      string
	PriceAmount   decimal.Decimal
	PriceCurrency string
	StockQuantity int
	Unit          string
	ImageURL      string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p dbProduct

	err := row.Scan(&p.ID, &p.Marketplace, &p.SellerID, &p.Name, &p.Description, &p.Brand, &p.Category,
		&p.PriceAmount, &p.PriceCurrency, &p.StockQuantity, &p.Unit, &p.ImageURL, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, err
	}

	return mapDBProductToDomain(p)
}

func mapDBProductToDomain(p dbProduct) (domain.Product, error) {
	price, err := mapMoneyToDomain(p.PriceAmount, strings.TrimSpace(p.PriceCurrency))
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapMoneyToDomain: %w", err)
	}

	return domain.Product{
		ID:            p.ID,
		Marketplace:   domain.MarketplaceID(p.Marketplace),
		SellerID:      p.SellerID,
		Name:          p.Name,
		Description:   p.Description,
		Brand:         p.Brand,
		Category:      domain.Category(p.Category),
		Price:         price,
		StockQuantity: p.StockQuantity,
		Unit:          p.Unit,
		ImageURL:      p.ImageURL,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

// keywordPattern builds an ILIKE pattern, escaping the LIKE wildcards of the user input.
func keywordPattern(keyword string) *string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(keyword)
	return lo.ToPtr("%" + escaped + "%")
}
