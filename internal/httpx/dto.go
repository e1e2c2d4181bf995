package httpx

import (
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"time"
)

type productRequest struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Description   string           `json:"description" validate:"max=2000"`
	Brand         string           `json:"brand" validate:"max=100"`
	Category      string           `json:"category" validate:"required"`
	Price         *decimal.Decimal `json:"price" validate:"required"`
	StockQuantity *int             `json:"stockQuantity" validate:"required,min=0,max=1000000000"`
	Unit          string           `json:"unit" validate:"max=50"`
	ImageURL      string           `json:"imageUrl" validate:"omitempty,url,max=500"`
}

func (req productRequest) toInput(m domain.Marketplace) domain.ProductInput {
	return domain.ProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Brand:         req.Brand,
		Category:      req.Category,
		Price:         domain.Money{Amount: lo.FromPtr(req.Price), Currency: m.Currency},
		StockQuantity: lo.FromPtr(req.StockQuantity),
		Unit:          req.Unit,
		ImageURL:      req.ImageURL,
	}
}

type productResponse struct {
	ID            string          `json:"id"`
	Marketplace   string          `json:"marketplace"`
	SellerID      string          `json:"sellerId"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	StockQuantity int             `json:"stockQuantity"`
	Unit          string          `json:"unit,omitempty"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func toProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:            p.ID.String(),
		Marketplace:   string(p.Marketplace),
		SellerID:      p.SellerID,
		Name:          p.Name,
		Description:   p.Description,
		Brand:         p.Brand,
		Category:      string(p.Category),
		Price:         p.Price.Amount,
		Currency:      p.Price.Currency.String(),
		StockQuantity: p.StockQuantity,
		Unit:          p.Unit,
		ImageURL:      p.ImageURL,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=1000000"`
}

type cartItemResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	ProductName     string          `json:"productName"`
	Unit            string          `json:"unit,omitempty"`
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"priceAtAddition"`
	CurrentPrice    decimal.Decimal `json:"currentPrice"`
	Available       bool            `json:"available"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

func toCartItemResponse(item domain.CartItem) cartItemResponse {
	return cartItemResponse{
		ID:              item.ID.String(),
		ProductID:       item.ProductID.String(),
		ProductName:     item.ProductName,
		Unit:            item.Unit,
		Quantity:        item.Quantity,
		PriceAtAddition: item.PriceAtAddition.Amount,
		CurrentPrice:    item.CurrentPrice.Amount,
		Available:       item.Available,
		Subtotal:        item.Subtotal().Amount,
	}
}

type cartResponse struct {
	BuyerID    string             `json:"buyerId"`
	Items      []cartItemResponse `json:"items"`
	TotalPrice decimal.Decimal    `json:"totalPrice"`
	TotalItems int                `json:"totalItems"`
	Currency   string             `json:"currency"`
}

func toCartResponse(m domain.Marketplace, c domain.Cart) (cartResponse, error) {
	total, err := c.TotalPrice(m)
	if err != nil {
		return cartResponse{}, err
	}

	return cartResponse{
		BuyerID: c.BuyerID,
		Items: lo.Map(c.Items, func(item domain.CartItem, _ int) cartItemResponse {
			return toCartItemResponse(item)
		}),
		TotalPrice: total.Amount,
		TotalItems: c.TotalItems(),
		Currency:   total.Currency.String(),
	}, nil
}

type checkoutRequest struct {
	DeliveryAddress string `json:"deliveryAddress" validate:"required,max=500"`
	DeliveryPhone   string `json:"deliveryPhone" validate:"max=20"`
	Notes           string `json:"notes" validate:"max=1000"`
}

func (req checkoutRequest) toDeliveryInfo() domain.DeliveryInfo {
	return domain.DeliveryInfo{
		Address: req.DeliveryAddress,
		Phone:   req.DeliveryPhone,
		Notes:   req.Notes,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderItemResponse struct {
	ProductID    string          `json:"productId"`
	SellerID     string          `json:"sellerId"`
	ProductName  string          `json:"productName"`
	Unit         string          `json:"unit,omitempty"`
	Quantity     int             `json:"quantity"`
	PriceAtOrder decimal.Decimal `json:"priceAtOrder"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	Marketplace     string              `json:"marketplace"`
	BuyerID         string              `json:"buyerId"`
	SellerIDs       []string            `json:"sellerIds"`
	Items           []orderItemResponse `json:"items"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	Currency        string              `json:"currency"`
	DeliveryAddress string              `json:"deliveryAddress"`
	DeliveryPhone   string              `json:"deliveryPhone,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Status          string              `json:"status"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func toOrderResponse(o domain.Order) orderResponse {
	return orderResponse{
		ID:          o.ID.String(),
		Marketplace: string(o.Marketplace),
		BuyerID:     o.BuyerID,
		SellerIDs:   o.SellerIDs,
		Items: lo.Map(o.Items, func(item domain.OrderItem, _ int) orderItemResponse {
			return orderItemResponse{
				ProductID:    item.ProductID.String(),
				SellerID:     item.SellerID,
				ProductName:  item.ProductName,
				Unit:         item.Unit,
				Quantity:     item.Quantity,
				PriceAtOrder: item.PriceAtOrder.Amount,
				Subtotal:     item.Subtotal().Amount,
			}
		}),
		TotalAmount:     o.Total.Amount,
		Currency:        o.Total.Currency.String(),
		DeliveryAddress: o.DeliveryAddress,
		DeliveryPhone:   o.DeliveryPhone,
		Notes:           o.Notes,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type pageResponse[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

func toPageResponse[T, R any](p domain.Page[T], fn func(T) R) pageResponse[R] {
	mapped := domain.MapPage(p, fn)
	return pageResponse[R]{
		Content:       mapped.Content,
		TotalElements: mapped.TotalElements,
		TotalPages:    mapped.TotalPages,
		Number:        mapped.Number,
		Size:          mapped.Size,
	}
}
