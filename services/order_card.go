package services

import (
	"fmt"
	"strconv"
	"strings"

	"pizza-palace/models"
)

// OrderCardButton is one inline button (text + callback_data).
type OrderCardButton struct {
	Text         string
	CallbackData string
}

// OrderCardContent is the text and optional inline keyboard for an order card.
type OrderCardContent struct {
	Text    string
	Buttons [][]OrderCardButton
}

// OrderStatusCallbackPrefix starts the callback data of status buttons: order_status:<id>:<status>.
const OrderStatusCallbackPrefix = "order_status:"

func OrderStatusCallbackData(orderID int64, status models.OrderStatus) string {
	return OrderStatusCallbackPrefix + strconv.FormatInt(orderID, 10) + ":" + string(status)
}

// ParseOrderStatusCallback is the inverse of OrderStatusCallbackData.
func ParseOrderStatusCallback(data string) (int64, models.OrderStatus, bool) {
	if !strings.HasPrefix(data, OrderStatusCallbackPrefix) {
		return 0, "", false
	}
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	status := models.OrderStatus(parts[2])
	if !ValidStatus(status) {
		return 0, "", false
	}
	return id, status, true
}

func statusButtonText(s models.OrderStatus) string {
	switch s {
	case OrderStatusPreparing:
		return "👨‍🍳 Start preparing"
	case OrderStatusReady:
		return "✅ Mark ready"
	case OrderStatusDelivered:
		return "🚚 Mark delivered"
	default:
		return string(s)
	}
}

// BuildAdminCard returns the card text and the buttons that move the order forward.
// Ready orders get one button; earlier stages also get a shortcut to delivered.
func BuildAdminCard(o *models.Order) OrderCardContent {
	var b strings.Builder
	fmt.Fprintf(&b, "🍕 Order #%d\n", o.ID)
	fmt.Fprintf(&b, "Customer: %s\n", o.CustomerName)
	if o.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", o.Phone)
	}
	fmt.Fprintf(&b, "Address: %s, %s %s\n\n", o.DeliveryAddress.Address, o.DeliveryAddress.City, o.DeliveryAddress.ZipCode)
	for _, l := range o.Items {
		fmt.Fprintf(&b, "• %s (%s) x%d — %s\n", l.Item.Name, l.Size, l.Quantity, FormatMoney(LineTotal(l)))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s\n", FormatMoney(o.Subtotal))
	fmt.Fprintf(&b, "Tax: %s\n", FormatMoney(o.Tax))
	fmt.Fprintf(&b, "Delivery: %s\n", FormatMoney(o.DeliveryFee))
	fmt.Fprintf(&b, "Total: %s (%s)\n", FormatMoney(o.Total), o.PaymentMethod)
	if o.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", o.Notes)
	}
	fmt.Fprintf(&b, "\nStatus: %s", StatusLabel(o.Status))

	var buttons [][]OrderCardButton
	if next, ok := NextStatus(o.Status); ok {
		buttons = append(buttons, []OrderCardButton{{Text: statusButtonText(next), CallbackData: OrderStatusCallbackData(o.ID, next)}})
		if next != OrderStatusDelivered {
			buttons = append(buttons, []OrderCardButton{{Text: statusButtonText(OrderStatusDelivered), CallbackData: OrderStatusCallbackData(o.ID, OrderStatusDelivered)}})
		}
	}
	return OrderCardContent{Text: b.String(), Buttons: buttons}
}

// BuildStatsText renders OrderStats for chat.
func BuildStatsText(s models.OrderStats) string {
	return fmt.Sprintf(
		"📊 Stats\n\nOrders: %d\nRevenue: %s\nPending: %d\nCompleted: %d",
		s.TotalOrders, FormatMoney(s.TotalRevenue), s.PendingOrders, s.CompletedOrders,
	)
}
