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

const orderColumns = `id, marketplace, buyer_id, seller_ids, status, total_amount, total_currency,
	delivery_address, delivery_phone, notes, created_at, updated_at`

const (
	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE marketplace = $1 AND id = $2`

	getOrderForUpdateSQL = getOrderSQL + ` FOR UPDATE`

	getOrderItemsSQL = `SELECT order_id, product_id, seller_id, product_name, unit, quantity, price_amount, price_currency
	FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`

	insertOrderSQL = `INSERT INTO orders (id, marketplace, buyer_id, seller_ids, status, total_amount, total_currency,
		delivery_address, delivery_phone, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING ` + orderColumns

	insertOrderItemSQL = `INSERT INTO order_items (order_id, position, product_id, seller_id, product_name, unit,
		quantity, price_amount, price_currency)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	// only the status is mutable; prices and totals are frozen at checkout
	updateOrderStatusSQL = `UPDATE orders SET status = $3, updated_at = now() WHERE marketplace = $1 AND id = $2`

	searchOrdersWhere = ` FROM orders
	WHERE marketplace = $1
		AND ($2::text IS NULL OR buyer_id = $2)
		AND ($3::text IS NULL OR $3 = ANY(seller_ids))
		AND ($4::text[] IS NULL OR status = ANY($4))
		AND ($5::timestamptz IS NULL OR created_at >= $5)
		AND ($6::timestamptz IS NULL OR created_at <= $6)`

	countOrdersSQL = `SELECT count(*)` + searchOrdersWhere

	searchOrdersSQL = `SELECT ` + orderColumns + searchOrdersWhere + `
	ORDER BY created_at DESC, id DESC
	LIMIT $7 OFFSET $8`
)

type orderRepository struct {
	db DBTX
}

func NewOrder(db DBTX) port.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetOrder(ctx context.Context, market domain.MarketplaceID, orderID uuid.UUID) (domain.Order, error) {
	order, err := withTx(ctx, r.db, func(tx DBTX) (domain.Order, error) {
		return getOrderWithItems(ctx, tx, getOrderSQL, market, orderID)
	})
	if err != nil {
		return order, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderForUpdate(ctx context.Context, market domain.MarketplaceID, orderID uuid.UUID) (domain.Order, error) {
	if _, ok := r.db.(pgx.Tx); !ok {
		return domain.Order{}, errors.New("GetOrderForUpdate requires a transaction")
	}

	return getOrderWithItems(ctx, r.db, getOrderForUpdateSQL, market, orderID)
}

func getOrderWithItems(ctx context.Context, db DBTX, query string, market domain.MarketplaceID, orderID uuid.UUID) (domain.Order, error) {
	order, err := scanOrder(db.QueryRow(ctx, query, string(market), orderID))
	if err != nil {
		return order, fmt.Errorf("getOrder: %w", err)
	}

	itemsByOrder, err := getOrderItems(ctx, db, []uuid.UUID{orderID})
	if err != nil {
		return order, fmt.Errorf("getOrderItems: %w", err)
	}

	order.Items = itemsByOrder[orderID]

	return order, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if len(order.Items) == 0 {
		return domain.Order{}, errors.New("no items in order")
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	inserted, err := withTx(ctx, r.db, func(tx DBTX) (domain.Order, error) {
		o, err := scanOrder(tx.QueryRow(ctx, insertOrderSQL,
			order.ID,
			string(order.Marketplace),
			order.BuyerID,
			order.SellerIDs,
			string(order.Status),
			order.Total.Amount,
			order.Total.Currency.String(),
			order.DeliveryAddress,
			order.DeliveryPhone,
			order.Notes,
		))
		if err != nil {
			return o, fmt.Errorf("insertOrder: %w", err)
		}

		batch := &pgx.Batch{}
		for idx, item := range order.Items {
			batch.Queue(insertOrderItemSQL,
				order.ID,
				idx,
				item.ProductID,
				item.SellerID,
				item.ProductName,
				item.Unit,
				item.Quantity,
				item.PriceAtOrder.Amount,
				item.PriceAtOrder.Currency.String(),
			)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return o, fmt.Errorf("insertOrderItems: %w", err)
		}

		o.Items = order.Items

		return o, nil
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("withTx: %w", err)
	}

	return inserted, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, market domain.MarketplaceID, orderID uuid.UUID, status domain.OrderStatus) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}

	if status == "" {
		return fmt.Errorf("status is empty")
	}

	cmdTag, err := r.db.Exec(ctx, updateOrderStatusSQL, string(market), orderID, string(status))
	if err != nil {
		return fmt.Errorf("updateOrderStatus: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("updateOrderStatus: %w", domain.ErrNotFound)
	}

	return nil
}

func (r *orderRepository) SearchOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error) {
	var result domain.Page[domain.Order]

	if err := filter.Validate(); err != nil {
		return result, fmt.Errorf("filter.Validate: %w", err)
	}

	page = page.Normalize()
	args := mapDomainOrderFilterToArgs(filter)

	var total int64
	if err := r.db.QueryRow(ctx, countOrdersSQL, args...).Scan(&total); err != nil {
		return result, fmt.Errorf("countOrders: %w", err)
	}

	rows, err := r.db.Query(ctx, searchOrdersSQL, append(args, page.Size, page.Offset())...)
	if err != nil {
		return result, fmt.Errorf("searchOrders: %w", err)
	}

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return result, fmt.Errorf("scanOrder: %w", err)
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("rows.Err: %w", err)
	}

	if len(orders) > 0 {
		itemsByOrder, err := getOrderItems(ctx, r.db, lo.Map(orders, func(o domain.Order, _ int) uuid.UUID { return o.ID }))
		if err != nil {
			return result, fmt.Errorf("getOrderItems: %w", err)
		}

		for i := range orders {
			orders[i].Items = itemsByOrder[orders[i].ID]
		}
	}

	return domain.NewPage(orders, total, page), nil
}

func mapDomainOrderFilterToArgs(filter domain.OrderFilter) []any {
	var statuses []string
	for _, status := range filter.Statuses {
		statuses = append(statuses, string(status))
	}

	var createdAfter, createdBefore *time.Time

	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	return []any{
		string(filter.Marketplace),
		lo.EmptyableToPtr(filter.BuyerID),
		lo.EmptyableToPtr(filter.SellerID),
		nilSliceIfEmpty(statuses),
		createdAfter,
		createdBefore,
	}
}

type dbOrder struct {
	ID              uuid.UUID
	Marketplace     string
	BuyerID         string
	SellerIDs       []string
	Status          string
	TotalAmount     decimal.Decimal
	TotalCurrency   string
	DeliveryAddress string
	DeliveryPhone   string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o dbOrder

	err := row.Scan(&o.ID, &o.Marketplace, &o.BuyerID, &o.SellerIDs, &o.Status, &o.TotalAmount, &o.TotalCurrency,
		&o.DeliveryAddress, &o.DeliveryPhone, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, err
	}

	return mapDBOrderToDomain(o)
}

func mapDBOrderToDomain(o dbOrder) (domain.Order, error) {
	total, err := mapMoneyToDomain(o.TotalAmount, strings.TrimSpace(o.TotalCurrency))
	if err != nil {
		return domain.Order{}, fmt.Errorf("mapMoneyToDomain: %w", err)
	}

	status, err := domain.ToOrderStatus(o.Status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("domain.ToOrderStatus[%s]: %w", o.Status, err)
	}

	return domain.Order{
		ID:              o.ID,
		Marketplace:     domain.MarketplaceID(o.Marketplace),
		BuyerID:         o.BuyerID,
		SellerIDs:       o.SellerIDs,
		Total:           total,
		DeliveryAddress: o.DeliveryAddress,
		DeliveryPhone:   o.DeliveryPhone,
		Notes:           o.Notes,
		Status:          status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}, nil
}

type dbOrderItem struct {
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	SellerID      string
	ProductName   string
	Unit          string
	Quantity      int
	PriceAmount   decimal.Decimal
	PriceCurrency string
}

func getOrderItems(ctx context.Context, db DBTX, orderIDs []uuid.UUID) (map[uuid.UUID][]domain.OrderItem, error) {
	rows, err := db.Query(ctx, getOrderItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]domain.OrderItem, len(orderIDs))

	for rows.Next() {
		var row dbOrderItem
		if err := rows.Scan(&row.OrderID, &row.ProductID, &row.SellerID, &row.ProductName, &row.Unit,
			&row.Quantity, &row.PriceAmount, &row.PriceCurrency); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		item, err := mapDBOrderItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapDBOrderItemToDomain: %w", err)
		}

		result[row.OrderID] = append(result[row.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return result, nil
}

func mapDBOrderItemToDomain(row dbOrderItem) (domain.OrderItem, error) {
	price, err := mapMoneyToDomain(row.PriceAmount, strings.TrimSpace(row.PriceCurrency))
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("mapMoneyToDomain: %w", err)
	}

	return domain.OrderItem{
		ProductID:    row.ProductID,
		SellerID:     row.SellerID,
		ProductName:  row.ProductName,
		Unit:         row.Unit,
		Quantity:     row.Quantity,
		PriceAtOrder: price,
	}, nil
}
