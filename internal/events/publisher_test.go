package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/kyat/internal/events"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

type published struct {
	exchange, key string
	msg           amqp091.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})

	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func closure() *ledger.Closure {
	return &ledger.Closure{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Year:      2024,
		Month:     time.March,
		Total:     decimal.NewFromInt(7000),
		CreatedAt: time.Date(2024, 4, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestPublisher_MonthClosed(t *testing.T) {
	ch := &fakeChannel{}
	p := events.NewPublisher(ch, "kyat.ledger")
	c := closure()

	require.NoError(t, p.MonthClosed(context.Background(), c))
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Equal(t, "kyat.ledger", got.exchange)
	assert.Equal(t, events.RoutingKeyMonthClosed, got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, c.ID.String(), got.msg.MessageId)

	msg, err := events.MonthClosedMessageFromJSON(got.msg.Body)
	require.NoError(t, err)
	assert.Equal(t, c.UserID, msg.UserID)
	assert.Equal(t, 2024, msg.Year)
	assert.Equal(t, 3, msg.Month)
	assert.True(t, decimal.NewFromInt(7000).Equal(msg.Total))
	assert.True(t, c.CreatedAt.Equal(msg.ClosedAt))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_MonthClosedError(t *testing.T) {
	p := events.NewPublisher(&fakeChannel{err: errors.New("channel closed")}, "kyat.ledger")

	err := p.MonthClosed(context.Background(), closure())
	assert.ErrorContains(t, err, "publish month closed")
}

func TestMonthClosedMessage_JSONFields(t *testing.T) {
	body, err := events.NewMonthClosedMessage(closure()).ToJSON()
	require.NoError(t, err)

	assert.Contains(t, string(body), `"month":3`)
	assert.Contains(t, string(body), `"total":"7000"`)
	assert.Contains(t, string(body), `"closed_at":"2024-04-01T08:30:00Z"`)
}
