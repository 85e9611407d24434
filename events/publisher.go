package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pizza-palace/models"
)

const DefaultExchange = "orders_topic"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher implements services.Notifier on top of an AMQP channel.
type Publisher struct {
	conn     *amqp.Connection
	exchange string
	log      *zap.Logger
	now      func() time.Time

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
	ch channel
}

// Dial connects, opens a channel and declares the durable topic exchange.
func Dial(url, exchange string, log *zap.Logger) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	p := newPublisher(ch, exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		log:      log.Named("events"),
		now:      time.Now,
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, p.exchange, e.RoutingKey(), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s for order %d: %w", e.RoutingKey(), e.OrderID, err)
	}
	p.log.Debug("event_published", zap.String("routing_key", e.RoutingKey()), zap.Int64("order_id", e.OrderID))
	return nil
}

func (p *Publisher) OrderCreated(ctx context.Context, o models.Order) error {
	return p.publish(ctx, newEvent(TypeOrderCreated, o, "", p.now()))
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, o models.Order, previous models.OrderStatus) error {
	return p.publish(ctx, newEvent(TypeOrderStatusChanged, o, previous, p.now()))
}
