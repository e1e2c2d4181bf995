package domain

import (
	"fmt"
	"slices"
)

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:   {},
	OrderStatusConfirmed: {},
	OrderStatusShipped:   {},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}

	return "", fmt.Errorf("invalid order status %q, expected one of %v", s, OrderStatuses())
}

// OrderStatuses returns every known status in lexical order.
func OrderStatuses() []OrderStatus {
	result := make([]OrderStatus, 0, len(validOrderStatuses))
	for status := range validOrderStatuses {
		result = append(result, status)
	}
	slices.Sort(result)
	return result
}

// statusEdges lists every legal transition and the actors allowed to take it.
// Anything absent is illegal; DELIVERED and CANCELLED have no outgoing edges.
var statusEdges = map[OrderStatus]map[OrderStatus][]Actor{
	OrderStatusPending: {
		OrderStatusConfirmed: {ActorSeller, ActorAdmin},
		OrderStatusCancelled: {ActorSeller, ActorAdmin, ActorBuyer},
	},
	OrderStatusConfirmed: {
		OrderStatusShipped: {ActorSeller, ActorAdmin},
	},
	OrderStatusShipped: {
		OrderStatusDelivered: {ActorSeller, ActorAdmin},
	},
}

func IsLegalTransition(from, to OrderStatus) bool {
	_, ok := statusEdges[from][to]
	return ok
}

func CanTransition(actor Actor, from, to OrderStatus) bool {
	for _, a := range statusEdges[from][to] {
		if a == actor {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(statusEdges[s]) == 0
}
