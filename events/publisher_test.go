package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizza-palace/models"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	out    []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.out = append(f.out, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func testPublisher(ch channel) *Publisher {
	p := newPublisher(ch, DefaultExchange, nil)
	p.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }
	return p
}

func TestRoutingKey(t *testing.T) {
	o := models.Order{ID: 1, Status: models.OrderStatusReady}
	assert.Equal(t, "order.created", newEvent(TypeOrderCreated, o, "", time.Now()).RoutingKey())
	assert.Equal(t, "order.status.ready", newEvent(TypeOrderStatusChanged, o, models.OrderStatusPreparing, time.Now()).RoutingKey())
}

func TestPublishOrderCreated(t *testing.T) {
	ch := &fakeChannel{}
	p := testPublisher(ch)
	o := models.Order{ID: 9, UserID: "2", Status: models.OrderStatusPending, Total: decimal.RequireFromString("1220")}

	require.NoError(t, p.OrderCreated(context.Background(), o))
	require.Len(t, ch.out, 1)

	got := ch.out[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, "order.created", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)

	var e Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &e))
	assert.Equal(t, TypeOrderCreated, e.Type)
	assert.Equal(t, int64(9), e.OrderID)
	assert.Equal(t, "2", e.UserID)
	assert.Equal(t, "1220.00", e.Total)
	assert.Empty(t, e.PreviousStatus)
	assert.Equal(t, time.UTC, e.OccurredAt.Location())
}

func TestPublishStatusChanged(t *testing.T) {
	ch := &fakeChannel{}
	p := testPublisher(ch)
	o := models.Order{ID: 9, UserID: "2", Status: models.OrderStatusDelivered, Total: decimal.NewFromInt(40)}

	require.NoError(t, p.OrderStatusChanged(context.Background(), o, models.OrderStatusReady))
	require.Len(t, ch.out, 1)
	assert.Equal(t, "order.status.delivered", ch.out[0].key)

	var e Event
	require.NoError(t, json.Unmarshal(ch.out[0].msg.Body, &e))
	assert.Equal(t, models.OrderStatusReady, e.PreviousStatus)
	assert.Equal(t, models.OrderStatusDelivered, e.Status)
}

func TestPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	p := testPublisher(&fakeChannel{err: boom})
	err := p.OrderCreated(context.Background(), models.Order{ID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestClose(t *testing.T) {
	ch := &fakeChannel{}
	testPublisher(ch).Close()
	assert.True(t, ch.closed)
	var nilPub *Publisher
	nilPub.Close()
}
