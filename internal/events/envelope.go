package events

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/nikolayk812/agromarket/internal/domain"
	"github.com/nikolayk812/agromarket/internal/port"
	"github.com/samber/lo"
	"time"
)

const envelopeVersion = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type ItemPayload struct {
	ProductID string `json:"product_id"`
	SellerID  string `json:"seller_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type OrderPlacedPayload struct {
	OrderID     string        `json:"order_id"`
	Marketplace string        `json:"marketplace"`
	BuyerID     string        `json:"buyer_id"`
	SellerIDs   []string      `json:"seller_ids"`
	Items       []ItemPayload `json:"items"`
	Total       string        `json:"total"`
	Currency    string        `json:"currency"`
}

type OrderStatusChangedPayload struct {
	OrderID     string   `json:"order_id"`
	Marketplace string   `json:"marketplace"`
	BuyerID     string   `json:"buyer_id"`
	SellerIDs   []string `json:"seller_ids"`
	Status      string   `json:"status"`
}

// NewEnvelope wraps the order payload matching eventType. The order id is the correlation id.
func NewEnvelope(producer, eventType string, order domain.Order, now time.Time) (Envelope, error) {
	var payload any

	switch eventType {
	case port.EventOrderPlaced:
		payload = OrderPlacedPayload{
			OrderID:     order.ID.String(),
			Marketplace: string(order.Marketplace),
			BuyerID:     order.BuyerID,
			SellerIDs:   order.SellerIDs,
			Items: lo.Map(order.Items, func(item domain.OrderItem, _ int) ItemPayload {
				return ItemPayload{
					ProductID: item.ProductID.String(),
					SellerID:  item.SellerID,
					Quantity:  item.Quantity,
					Price:     item.PriceAtOrder.Amount.String(),
				}
			}),
			Total:    order.Total.Amount.String(),
			Currency: order.Total.Currency.String(),
		}
	case port.EventOrderStatusChanged:
		payload = OrderStatusChangedPayload{
			OrderID:     order.ID.String(),
			Marketplace: string(order.Marketplace),
			BuyerID:     order.BuyerID,
			SellerIDs:   order.SellerIDs,
			Status:      string(order.Status),
		}
	default:
		return Envelope{}, fmt.Errorf("unknown event type %q", eventType)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("json.Marshal: %w", err)
	}

	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    now.UTC(),
		Producer:      producer,
		CorrelationID: order.ID.String(),
		Payload:       raw,
	}, nil
}
