package services

import (
	"github.com/shopspring/decimal"

	"pizza-palace/models"
)

var (
	DefaultTaxRate     = decimal.RequireFromString("0.18")
	DefaultDeliveryFee = decimal.NewFromInt(40)
)

var sizeMultipliers = map[models.Size]decimal.Decimal{
	models.SizeSmall:  decimal.RequireFromString("0.8"),
	models.SizeMedium: decimal.NewFromInt(1),
	models.SizeLarge:  decimal.RequireFromString("1.2"),
}

// SizeMultiplier returns the price factor for size; unknown sizes price as medium.
func SizeMultiplier(size models.Size) decimal.Decimal {
	if m, ok := sizeMultipliers[size]; ok {
		return m
	}
	return sizeMultipliers[models.SizeMedium]
}

func UnitPrice(base decimal.Decimal, size models.Size) decimal.Decimal {
	return base.Mul(SizeMultiplier(size))
}

func LineTotal(line models.CartLine) decimal.Decimal {
	return UnitPrice(line.Item.Price, line.Size).Mul(decimal.NewFromInt(int64(line.Quantity)))
}

func Subtotal(lines []models.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(DefaultTaxRate)
}

// FormatMoney rounds to two decimals. Use it for display only.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Pricing holds the tax rate and delivery fee an order is priced with.
type Pricing struct {
	TaxRate     decimal.Decimal
	DeliveryFee decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{TaxRate: DefaultTaxRate, DeliveryFee: DefaultDeliveryFee}
}

type Summary struct {
	ItemCount   int             `json:"item_count"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

func (p Pricing) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate)
}

// Summarize prices lines: total = subtotal + delivery fee + tax. An empty set totals the delivery fee.
func (p Pricing) Summarize(lines []models.CartLine) Summary {
	sub := Subtotal(lines)
	tax := p.Tax(sub)
	count := 0
	for _, l := range lines {
		count += l.Quantity
	}
	return Summary{
		ItemCount:   count,
		Subtotal:    sub,
		Tax:         tax,
		DeliveryFee: p.DeliveryFee,
		Total:       sub.Add(p.DeliveryFee).Add(tax),
	}
}
