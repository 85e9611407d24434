package api

import (
	"time"

	"pizza-palace/models"
	"pizza-palace/services"
)

// Money leaves the API rounded to two decimals; everything before this point is exact.

type lineView struct {
	ID        string          `json:"id"`
	Item      models.MenuItem `json:"item"`
	Size      models.Size     `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice string          `json:"unit_price"`
	LineTotal string          `json:"line_total"`
}

type summaryView struct {
	ItemCount   int    `json:"item_count"`
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	DeliveryFee string `json:"delivery_fee"`
	Total       string `json:"total"`
}

type cartView struct {
	Lines   []lineView  `json:"lines"`
	Summary summaryView `json:"summary"`
}

type orderView struct {
	ID                int64                `json:"id"`
	UserID            string               `json:"user_id"`
	CustomerName      string               `json:"customer_name"`
	Items             []lineView           `json:"items"`
	Subtotal          string               `json:"subtotal"`
	DeliveryFee       string               `json:"delivery_fee"`
	Tax               string               `json:"tax"`
	Total             string               `json:"total"`
	DeliveryAddress   models.Address       `json:"delivery_address"`
	Phone             string               `json:"phone"`
	PaymentMethod     models.PaymentMethod `json:"payment_method"`
	Notes             string               `json:"notes,omitempty"`
	Status            models.OrderStatus   `json:"status"`
	StatusLabel       string               `json:"status_label"`
	StatusMessage     string               `json:"status_message"`
	CreatedAt         time.Time            `json:"created_at"`
	EstimatedDelivery time.Time            `json:"estimated_delivery"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

type statsView struct {
	TotalOrders     int    `json:"total_orders"`
	TotalRevenue    string `json:"total_revenue"`
	PendingOrders   int    `json:"pending_orders"`
	CompletedOrders int    `json:"completed_orders"`
}

func newLineViews(lines []models.CartLine) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineView{
			ID:        l.ID,
			Item:      l.Item,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: services.FormatMoney(services.UnitPrice(l.Item.Price, l.Size)),
			LineTotal: services.FormatMoney(services.LineTotal(l)),
		})
	}
	return out
}

func newCartView(c *models.Cart, sum services.Summary) cartView {
	return cartView{
		Lines: newLineViews(c.Lines),
		Summary: summaryView{
			ItemCount:   sum.ItemCount,
			Subtotal:    services.FormatMoney(sum.Subtotal),
			Tax:         services.FormatMoney(sum.Tax),
			DeliveryFee: services.FormatMoney(sum.DeliveryFee),
			Total:       services.FormatMoney(sum.Total),
		},
	}
}

func newOrderView(o models.Order) orderView {
	return orderView{
		ID:                o.ID,
		UserID:            o.UserID,
		CustomerName:      o.CustomerName,
		Items:             newLineViews(o.Items),
		Subtotal:          services.FormatMoney(o.Subtotal),
		DeliveryFee:       services.FormatMoney(o.DeliveryFee),
		Tax:               services.FormatMoney(o.Tax),
		Total:             services.FormatMoney(o.Total),
		DeliveryAddress:   o.DeliveryAddress,
		Phone:             o.Phone,
		PaymentMethod:     o.PaymentMethod,
		Notes:             o.Notes,
		Status:            o.Status,
		StatusLabel:       services.StatusLabel(o.Status),
		StatusMessage:     services.CustomerMessageForOrderStatus(&o, o.Status),
		CreatedAt:         o.CreatedAt,
		EstimatedDelivery: o.EstimatedDelivery,
		UpdatedAt:         o.UpdatedAt,
	}
}

func newOrderViews(orders []models.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderView(o))
	}
	return out
}

func newStatsView(s models.OrderStats) statsView {
	return statsView{
		TotalOrders:     s.TotalOrders,
		TotalRevenue:    services.FormatMoney(s.TotalRevenue),
		PendingOrders:   s.PendingOrders,
		CompletedOrders: s.CompletedOrders,
	}
}
