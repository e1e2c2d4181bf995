package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

const cartItemColumns = `ci.id, ci.buyer_id, ci.product_id, ci.quantity, ci.price_amount, ci.price_currency, ci.created_at,
	p.name, p.unit, p.price_amount, p.price_currency, p.active`

const (
	getCartSQL = `SELECT ` + cartItemColumns + `
	FROM cart_items ci JOIN products p ON p.id = ci.product_id
	WHERE ci.marketplace = $1 AND ci.buyer_id = $2
	ORDER BY ci.created_at, ci.id`

	// a concurrent checkout of the same cart waits here and then sees the lines it cleared as gone
	getCartForUpdateSQL = getCartSQL + ` FOR UPDATE OF ci`

	getCartItemSQL = `SELECT ` + cartItemColumns + `
	FROM cart_items ci JOIN products p ON p.id = ci.product_id
	WHERE ci.marketplace = $1 AND ci.id = $2`

	addCartItemSQL = `INSERT INTO cart_items (id, marketplace, buyer_id, product_id, quantity, price_amount, price_currency)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (marketplace, buyer_id, product_id)
	DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
	WHERE cart_items.quantity + EXCLUDED.quantity <= $8
	RETURNING id`

	setCartItemQuantitySQL = `UPDATE cart_items SET quantity = $3, updated_at = now() WHERE marketplace = $1 AND id = $2`

	deleteCartItemSQL = `DELETE FROM cart_items WHERE marketplace = $1 AND buyer_id = $2 AND id = $3`

	clearCartSQL = `DELETE FROM cart_items WHERE marketplace = $1 AND buyer_id = $2`
)

type cartRepository struct {
	db DBTX
}

func NewCart(db DBTX) port.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCart(ctx context.Context, market domain.MarketplaceID, buyerID string) (domain.Cart, error) {
	return getCart(ctx, r.db, getCartSQL, market, buyerID)
}

func (r *cartRepository) GetCartForUpdate(ctx context.Context, market domain.MarketplaceID, buyerID string) (domain.Cart, error) {
	if _, ok := r.db.(pgx.Tx); !ok {
		return domain.Cart{}, errors.New("GetCartForUpdate requires a transaction")
	}

	return getCart(ctx, r.db, getCartForUpdateSQL, market, buyerID)
}

func getCart(ctx context.Context, db DBTX, query string, market domain.MarketplaceID, buyerID string) (domain.Cart, error) {
	c := domain.Cart{BuyerID: buyerID}

	rows, err := db.Query(ctx, query, string(market), buyerID)
	if err != nil {
		return c, fmt.Errorf("getCart: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return c, fmt.Errorf("scanCartItem: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return c, fmt.Errorf("rows.Err: %w", err)
	}

	return c, nil
}

func (r *cartRepository) GetItem(ctx context.Context, market domain.MarketplaceID, itemID uuid.UUID) (domain.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRow(ctx, getCartItemSQL, string(market), itemID))
	if err != nil {
		return item, fmt.Errorf("getCartItem: %w", err)
	}

	return item, nil
}

func (r *cartRepository) AddItem(ctx context.Context, market domain.MarketplaceID, item domain.CartItem) (domain.CartItem, error) {
	if item.Quantity < 1 || item.Quantity > domain.MaxQuantity {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be between 1 and %d", domain.ErrValidation, domain.MaxQuantity)
	}

	var itemID uuid.UUID

	err := r.db.QueryRow(ctx, addCartItemSQL,
		uuid.New(),
		string(market),
		item.BuyerID,
		item.ProductID,
		item.Quantity,
		item.PriceAtAddition.Amount,
		item.PriceAtAddition.Currency.String(),
		domain.MaxQuantity,
	).Scan(&itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartItem{}, fmt.Errorf("%w: cart line would exceed %d units", domain.ErrValidation, domain.MaxQuantity)
		}
		return domain.CartItem{}, fmt.Errorf("addCartItem: %w", err)
	}

	return r.GetItem(ctx, market, itemID)
}

func (r *cartRepository) SetQuantity(ctx context.Context, market domain.MarketplaceID, itemID uuid.UUID, qty int) error {
	cmdTag, err := r.db.Exec(ctx, setCartItemQuantitySQL, string(market), itemID, qty)
	if err != nil {
		return fmt.Errorf("setCartItemQuantity: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("setCartItemQuantity: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, market domain.MarketplaceID, buyerID string, itemID uuid.UUID) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, deleteCartItemSQL, string(market), buyerID, itemID)
	if err != nil {
		return false, fmt.Errorf("deleteCartItem: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func (r *cartRepository) ClearCart(ctx context.Context, market domain.MarketplaceID, buyerID string) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, clearCartSQL, string(market), buyerID)
	if err != nil {
		return 0, fmt.Errorf("clearCart: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

type dbCartItem struct {
	ID                   uuid.UUID
	BuyerID              string
	ProductID            uuid.UUID
	Quantity             int
	PriceAmount          decimal.Decimal
	PriceCurrency        string
	CreatedAt            time.Time
	ProductName          string
	Unit                 string
	CurrentPriceAmount   decimal.Decimal
	CurrentPriceCurrency string
	Active               bool
}

func scanCartItem(row pgx.Row) (domain.CartItem, error) {
	var ci dbCartItem

	err := row.Scan(&ci.ID, &ci.BuyerID, &ci.ProductID, &ci.Quantity, &ci.PriceAmount, &ci.PriceCurrency, &ci.CreatedAt,
		&ci.ProductName, &ci.Unit, &ci.CurrentPriceAmount, &ci.CurrentPriceCurrency, &ci.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CartItem{}, domain.ErrNotFound
		}
		return domain.CartItem{}, err
	}

	return mapDBCartItemToDomain(ci)
}

func mapDBCartItemToDomain(ci dbCartItem) (domain.CartItem, error) {
	priceAtAddition, err := mapMoneyToDomain(ci.PriceAmount, strings.TrimSpace(ci.PriceCurrency))
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("mapMoneyToDomain: %w", err)
	}

	currentPrice, err := mapMoneyToDomain(ci.CurrentPriceAmount, strings.TrimSpace(ci.CurrentPriceCurrency))
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("mapMoneyToDomain: %w", err)
	}

	return domain.CartItem{
		ID:              ci.ID,
		BuyerID:         ci.BuyerID,
		ProductID:       ci.ProductID,
		Quantity:        ci.Quantity,
		PriceAtAddition: priceAtAddition,
		ProductName:     ci.ProductName,
		Unit:            ci.Unit,
		CurrentPrice:    currentPrice,
		Available:       ci.Active,
		CreatedAt:       ci.CreatedAt,
	}, nil
}
