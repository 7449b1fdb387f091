// Package events publishes ledger events to RabbitMQ.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

const publishTimeout = 5 * time.Second

// Channel is the part of *amqp091.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher implements ledger.Notifier.
type Publisher struct {
	conn     *amqp091.Connection
	exchange string

	mu sync.Mutex // amqp091 channels must not be shared between goroutines
	ch Channel
}

var _ ledger.Notifier = (*Publisher)(nil)

// Dial connects to url and declares exchange as a durable direct exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange, // name
		"direct", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()

		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := NewPublisher(ch, exchange)
	p.conn = conn

	return p, nil
}

// NewPublisher publishes on an already prepared channel.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) MonthClosed(ctx context.Context, c *ledger.Closure) error {
	body, err := NewMonthClosedMessage(c).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,
		RoutingKeyMonthClosed,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    c.ID.String(),
			Timestamp:    c.CreatedAt.UTC(),
			Body:         body,
		},
	)
	p.mu.Unlock()

	if err != nil {
		return fmt.Errorf("publish month closed: %w", err)
	}

	slog.InfoContext(ctx, "published month closed",
		"user_id", c.UserID,
		"period", c.Period(),
		"exchange", p.exchange)

	return nil
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		p.ch.Close()
	}

	if p.conn != nil {
		return p.conn.Close()
	}

	return nil
}
