package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pizza-palace/models"
)

// fakeStore is a minimal in-memory MenuStore, CartStore and OrderStore.
type fakeStore struct {
	mu     sync.Mutex
	menu   []models.MenuItem
	carts  map[string]*models.Cart
	orders []models.Order
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: make(map[string]*models.Cart)}
}

func (f *fakeStore) CreateMenuItem(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = strconv.Itoa(len(f.menu) + 1)
	f.menu = append(f.menu, item.Clone())
	return item, nil
}

func (f *fakeStore) GetMenuItem(_ context.Context, id string) (models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.menu {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return models.MenuItem{}, ErrNotFound
}

func (f *fakeStore) UpdateMenuItem(_ context.Context, item models.MenuItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.menu {
		if f.menu[i].ID == item.ID {
			f.menu[i] = item.Clone()
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) DeleteMenuItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.menu {
		if f.menu[i].ID == id {
			f.menu = append(f.menu[:i], f.menu[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) ListMenuItems(context.Context) ([]models.MenuItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.MenuItem, len(f.menu))
	for i, m := range f.menu {
		out[i] = m.Clone()
	}
	return out, nil
}

func (f *fakeStore) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[userID]; ok {
		return c.Clone(), nil
	}
	return models.NewCart(userID), nil
}

func (f *fakeStore) SaveCart(_ context.Context, cart *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[cart.UserID] = cart.Clone()
	return nil
}

func (f *fakeStore) DeleteCart(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, userID)
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o models.Order) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = int64(len(f.orders) + 1)
	f.orders = append(f.orders, o.Clone())
	return o, nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return models.Order{}, ErrNotFound
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, id int64, status models.OrderStatus, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			f.orders[i].UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) ListOrders(context.Context) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Order, len(f.orders))
	for i, o := range f.orders {
		out[i] = o.Clone()
	}
	return out, nil
}

type notification struct {
	kind     string
	order    models.Order
	previous models.OrderStatus
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
	err    error
}

func (r *recordingNotifier) OrderCreated(_ context.Context, o models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notification{kind: "created", order: o})
	return r.err
}

func (r *recordingNotifier) OrderStatusChanged(_ context.Context, o models.Order, previous models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notification{kind: "status", order: o, previous: previous})
	return r.err
}

var errNotifierDown = errors.New("notifier down")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pizza(id, name, price string) models.MenuItem {
	return models.MenuItem{
		ID:          id,
		Name:        name,
		Price:       dec(price),
		Category:    models.CategoryClassic,
		Ingredients: []string{"cheese", "tomato"},
	}
}

// orderInput prices lines with DefaultPricing so the total is consistent.
func orderInput(userID string, lines ...models.CartLine) models.CreateOrderInput {
	sum := DefaultPricing().Summarize(lines)
	return models.CreateOrderInput{
		UserID:          userID,
		CustomerName:    "John Doe",
		Items:           lines,
		Subtotal:        sum.Subtotal,
		DeliveryFee:     sum.DeliveryFee,
		Tax:             sum.Tax,
		Total:           sum.Total,
		DeliveryAddress: models.Address{Address: "1 Main St", City: "Springfield", ZipCode: "12345"},
		Phone:           "555-0100",
		PaymentMethod:   models.PaymentCard,
	}
}
