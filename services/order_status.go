package services

import (
	"fmt"

	"pizza-palace/models"
)

// Aliases so callers outside models can spell statuses the short way.
const (
	OrderStatusPending   = models.OrderStatusPending
	OrderStatusPreparing = models.OrderStatusPreparing
	OrderStatusReady     = models.OrderStatusReady
	OrderStatusDelivered = models.OrderStatusDelivered
)

// OrderStatuses lists the lifecycle in order.
var OrderStatuses = []models.OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusDelivered,
}

func statusRank(s models.OrderStatus) int {
	for i, st := range OrderStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

func ValidStatus(s models.OrderStatus) bool {
	return statusRank(s) >= 0
}

// ValidStatusTransition reports whether an order may move from -> to. Only forward moves
// are allowed; stages may be skipped (a pickup order can go straight to delivered).
func ValidStatusTransition(from, to models.OrderStatus) bool {
	f, t := statusRank(from), statusRank(to)
	if f < 0 || t < 0 {
		return false
	}
	return t > f
}

// NextStatus returns the stage after s, or false when s is final.
func NextStatus(s models.OrderStatus) (models.OrderStatus, bool) {
	r := statusRank(s)
	if r < 0 || r == len(OrderStatuses)-1 {
		return "", false
	}
	return OrderStatuses[r+1], true
}

// StatusLabel is the customer-facing name of a status.
func StatusLabel(s models.OrderStatus) string {
	switch s {
	case OrderStatusPending:
		return "Order Received"
	case OrderStatusPreparing:
		return "Preparing"
	case OrderStatusReady:
		return "Ready for Pickup"
	case OrderStatusDelivered:
		return "Delivered"
	default:
		return string(s)
	}
}

// CustomerMessageForOrderStatus builds the short notice sent when an order changes status.
func CustomerMessageForOrderStatus(o *models.Order, status models.OrderStatus) string {
	switch status {
	case OrderStatusPending:
		return fmt.Sprintf("Order #%d received. Total: %s", o.ID, FormatMoney(o.Total))
	case OrderStatusPreparing:
		return fmt.Sprintf("Order #%d is being prepared. Total: %s", o.ID, FormatMoney(o.Total))
	case OrderStatusReady:
		return fmt.Sprintf("Order #%d is ready for pickup.", o.ID)
	case OrderStatusDelivered:
		return fmt.Sprintf("Order #%d has been delivered. Enjoy!", o.ID)
	default:
		return ""
	}
}
