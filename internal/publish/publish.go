// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish announces extracted receipts on an AMQP exchange so
// downstream bookkeeping services can pick them up.
package publish

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/pdiddy/billscan/internal/log"
	"github.com/pdiddy/billscan/pkg/types"
)

// publishTimeout bounds one publish call.
const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp091.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends ReceiptMessages to a durable topic exchange.
type Publisher struct {
	conn       *amqp091.Connection
	channel    Channel
	exchange   string
	routingKey string
	logger     *log.Logger
	now        func() time.Time
}

// Dial connects to the broker at url and declares cfg.Exchange.
func Dial(url string, cfg types.PublishConfig, logger *log.Logger) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("AMQP URL is not configured")
	}
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := New(ch, cfg, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// New returns a Publisher on an open channel and declares cfg.Exchange.
func New(ch Channel, cfg types.PublishConfig, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.Discard()
	}
	p := &Publisher{
		channel:    ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger.WithComponent(log.ComponentPublish),
		now:        time.Now,
	}

	err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return p, nil
}

// Publish sends a persistent message announcing res.
func (p *Publisher) Publish(ctx context.Context, res *types.ExtractionResult) error {
	body, err := NewReceiptMessage(res).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			MessageId:    res.ID,
			Timestamp:    p.now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.Info("published receipt",
		"id", res.ID,
		log.FieldFile, res.SourceFile,
		"exchange", p.exchange,
		"routing_key", p.routingKey,
	)
	return nil
}

// Close closes the channel and, when Dial opened it, the connection.
func (p *Publisher) Close() error {
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
