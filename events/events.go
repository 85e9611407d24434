// Package events publishes order lifecycle events to a RabbitMQ topic exchange.
package events

import (
	"time"

	"pizza-palace/models"
	"pizza-palace/services"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// Event is the JSON body of every published message.
type Event struct {
	Type           string             `json:"type"`
	OrderID        int64              `json:"order_id"`
	UserID         string             `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	Total          string             `json:"total"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

func newEvent(kind string, o models.Order, previous models.OrderStatus, at time.Time) Event {
	return Event{
		Type:           kind,
		OrderID:        o.ID,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          services.FormatMoney(o.Total),
		OccurredAt:     at.UTC(),
	}
}

// RoutingKey is order.created for new orders and order.status.<status> for transitions,
// so consumers can bind on order.status.* or a single stage.
func (e Event) RoutingKey() string {
	if e.Type == TypeOrderCreated {
		return "order.created"
	}
	return "order.status." + string(e.Status)
}
