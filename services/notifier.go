package services

import (
	"context"
	"errors"

	"pizza-palace/models"
)

// Notifier is told about ledger changes. Implementations must not block for long;
// the ledger logs their errors and carries on.
type Notifier interface {
	OrderCreated(ctx context.Context, o models.Order) error
	OrderStatusChanged(ctx context.Context, o models.Order, previous models.OrderStatus) error
}

type nopNotifier struct{}

func (nopNotifier) OrderCreated(context.Context, models.Order) error { return nil }

func (nopNotifier) OrderStatusChanged(context.Context, models.Order, models.OrderStatus) error {
	return nil
}

// MultiNotifier fans out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) OrderCreated(ctx context.Context, o models.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderCreated(ctx, o.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiNotifier) OrderStatusChanged(ctx context.Context, o models.Order, previous models.OrderStatus) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderStatusChanged(ctx, o.Clone(), previous); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
