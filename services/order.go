package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pizza-palace/models"
)

const DefaultDeliveryETA = 35 * time.Minute

// OrderStore persists orders. CreateOrder assigns the next id; ListOrders returns
// orders oldest first.
type OrderStore interface {
	CreateOrder(ctx context.Context, o models.Order) (models.Order, error)
	GetOrder(ctx context.Context, id int64) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// StatsStore is implemented by stores that can aggregate without loading every order.
type StatsStore interface {
	OrderStats(ctx context.Context) (models.OrderStats, error)
}

// Ledger owns the order list and its status machine.
type Ledger struct {
	store    OrderStore
	notifier Notifier
	log      *zap.Logger
	eta      time.Duration
	now      func() time.Time

	orderLocks sync.Map // order id -> *sync.Mutex
}

type LedgerOption func(*Ledger)

func WithNotifier(n Notifier) LedgerOption {
	return func(l *Ledger) {
		if n != nil {
			l.notifier = n
		}
	}
}

func WithLedgerLogger(log *zap.Logger) LedgerOption {
	return func(l *Ledger) { l.log = log }
}

func WithDeliveryETA(d time.Duration) LedgerOption {
	return func(l *Ledger) {
		if d > 0 {
			l.eta = d
		}
	}
}

func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

func NewLedger(store OrderStore, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:    store,
		notifier: nopNotifier{},
		log:      zap.NewNop(),
		eta:      DefaultDeliveryETA,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CreateOrder appends a pending order built from in. Items are deep-copied so the
// caller may keep changing its cart.
func (l *Ledger) CreateOrder(ctx context.Context, in models.CreateOrderInput) (models.Order, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return models.Order{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	want := in.Subtotal.Add(in.DeliveryFee).Add(in.Tax)
	if !in.Total.Equal(want) {
		return models.Order{}, fmt.Errorf("%w: total %s != subtotal + delivery fee + tax (%s)", ErrInvalidInput, in.Total, want)
	}
	now := l.now()
	snapshot := (&models.Cart{Lines: in.Items}).Snapshot()
	o := models.Order{
		UserID:            in.UserID,
		CustomerName:      in.CustomerName,
		Items:             snapshot,
		Subtotal:          in.Subtotal,
		DeliveryFee:       in.DeliveryFee,
		Tax:               in.Tax,
		Total:             in.Total,
		DeliveryAddress:   in.DeliveryAddress,
		Phone:             in.Phone,
		PaymentMethod:     in.PaymentMethod,
		Notes:             in.Notes,
		Status:            OrderStatusPending,
		CreatedAt:         now,
		EstimatedDelivery: now.Add(l.eta),
		UpdatedAt:         now,
	}
	created, err := l.store.CreateOrder(ctx, o)
	if err != nil {
		return models.Order{}, fmt.Errorf("create order: %w", err)
	}
	if err := l.notifier.OrderCreated(ctx, created.Clone()); err != nil {
		l.log.Warn("order_created_notify_failed", zap.Int64("order_id", created.ID), zap.Error(err))
	}
	return created, nil
}

func (l *Ledger) lockOrder(id int64) func() {
	v, _ := l.orderLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// UpdateStatus moves an order forward. Backward moves fail with ErrInvalidTransition;
// setting the current status again changes nothing. Changes to one order are applied and
// announced one at a time, so notifiers see them in commit order.
func (l *Ledger) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (models.Order, error) {
	if !ValidStatus(status) {
		return models.Order{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	unlock := l.lockOrder(id)
	defer unlock()

	o, err := l.store.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %d: %w", id, err)
	}
	if o.Status == status {
		return o, nil
	}
	if !ValidStatusTransition(o.Status, status) {
		return models.Order{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, status)
	}
	previous := o.Status
	at := l.now()
	if err := l.store.UpdateOrderStatus(ctx, id, status, at); err != nil {
		return models.Order{}, fmt.Errorf("update order %d: %w", id, err)
	}

	o.Status = status
	o.UpdatedAt = at
	if err := l.notifier.OrderStatusChanged(ctx, o.Clone(), previous); err != nil {
		l.log.Warn("order_status_notify_failed", zap.Int64("order_id", id), zap.String("status", string(status)), zap.Error(err))
	}
	return o, nil
}

func (l *Ledger) Get(ctx context.Context, id int64) (models.Order, error) {
	o, err := l.store.GetOrder(ctx, id)
	if err != nil {
		return models.Order{}, fmt.Errorf("order %d: %w", id, err)
	}
	return o, nil
}

// List returns orders newest first, optionally restricted to one status.
func (l *Ledger) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return l.filter(ctx, func(o models.Order) bool {
		return status == "" || o.Status == status
	})
}

// OrdersForUser returns the user's orders newest first.
func (l *Ledger) OrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return l.filter(ctx, func(o models.Order) bool { return o.UserID == userID })
}

// Recent returns up to n of the newest orders.
func (l *Ledger) Recent(ctx context.Context, n int) ([]models.Order, error) {
	orders, err := l.List(ctx, "")
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(orders) > n {
		orders = orders[:n]
	}
	return orders, nil
}

func (l *Ledger) filter(ctx context.Context, keep func(models.Order) bool) ([]models.Order, error) {
	all, err := l.store.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out := make([]models.Order, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if keep(all[i]) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (l *Ledger) Stats(ctx context.Context) (models.OrderStats, error) {
	if ss, ok := l.store.(StatsStore); ok {
		return ss.OrderStats(ctx)
	}
	all, err := l.store.ListOrders(ctx)
	if err != nil {
		return models.OrderStats{}, fmt.Errorf("list orders: %w", err)
	}
	return ComputeStats(all), nil
}

// ComputeStats counts orders and sums their totals. Completed means delivered.
func ComputeStats(orders []models.Order) models.OrderStats {
	s := models.OrderStats{TotalRevenue: decimal.Zero}
	for _, o := range orders {
		s.TotalOrders++
		s.TotalRevenue = s.TotalRevenue.Add(o.Total)
		switch o.Status {
		case OrderStatusPending:
			s.PendingOrders++
		case OrderStatusDelivered:
			s.CompletedOrders++
		}
	}
	return s
}
