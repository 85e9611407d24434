package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pizza-palace/models"
)

type CheckoutInput struct {
	DeliveryAddress models.Address       `json:"delivery_address"`
	Phone           string               `json:"phone" validate:"notblank"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" validate:"oneof=card cash"`
	Notes           string               `json:"notes"`
}

// Checkout turns a user's cart into an order.
type Checkout struct {
	carts   *CartService
	ledger  *Ledger
	pricing Pricing
	delay   time.Duration

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCheckout(carts *CartService, ledger *Ledger, pricing Pricing, processingDelay time.Duration) *Checkout {
	return &Checkout{
		carts:    carts,
		ledger:   ledger,
		pricing:  pricing,
		delay:    processingDelay,
		inFlight: make(map[string]struct{}),
	}
}

func (c *Checkout) begin(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[userID]; busy {
		return false
	}
	c.inFlight[userID] = struct{}{}
	return true
}

func (c *Checkout) end(userID string) {
	c.mu.Lock()
	delete(c.inFlight, userID)
	c.mu.Unlock()
}

// InProgress reports whether a submission for userID is being processed.
func (c *Checkout) InProgress(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[userID]
	return busy
}

// Submit prices the cart, records the order and takes the ordered lines out of the cart.
// A second call for the same user while one is processing fails with ErrCheckoutInProgress.
func (c *Checkout) Submit(ctx context.Context, user models.User, in CheckoutInput) (models.Order, error) {
	if err := validateStruct(in); err != nil {
		return models.Order{}, err
	}
	if !c.begin(user.ID) {
		return models.Order{}, ErrCheckoutInProgress
	}
	defer c.end(user.ID)

	cart, err := c.carts.Get(ctx, user.ID)
	if err != nil {
		return models.Order{}, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return models.Order{}, ErrEmptyCart
	}

	if c.delay > 0 {
		t := time.NewTimer(c.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return models.Order{}, ctx.Err()
		case <-t.C:
		}
		// The cart may have changed while we waited.
		if cart, err = c.carts.Get(ctx, user.ID); err != nil {
			return models.Order{}, fmt.Errorf("load cart: %w", err)
		}
		if cart.IsEmpty() {
			return models.Order{}, ErrEmptyCart
		}
	}

	lines := cart.Snapshot()
	sum := c.pricing.Summarize(lines)
	order, err := c.ledger.CreateOrder(ctx, models.CreateOrderInput{
		UserID:          user.ID,
		CustomerName:    user.Name,
		Items:           lines,
		Subtotal:        sum.Subtotal,
		DeliveryFee:     sum.DeliveryFee,
		Tax:             sum.Tax,
		Total:           sum.Total,
		DeliveryAddress: in.DeliveryAddress,
		Phone:           strings.TrimSpace(in.Phone),
		PaymentMethod:   in.PaymentMethod,
		Notes:           strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return models.Order{}, err
	}
	if _, err := c.carts.Consume(ctx, user.ID, lines); err != nil {
		return order, fmt.Errorf("clear cart after order %d: %w", order.ID, err)
	}
	return order, nil
}
