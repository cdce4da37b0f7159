// Package events publishes report lifecycle events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/soaringjerry/Jornada/internal/services"
)

const DefaultExchange = "jornada.events"

// Publisher sends services.Event values as JSON messages routed by event type.
// Without a broker URL it is disabled and drops events.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
	log      *zap.Logger
}

func NewPublisher(url, exchange string, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if url == "" {
		log.Info("amqp url empty, event publishing disabled")
		return &Publisher{exchange: exchange, log: log}, nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	log.Info("event publisher ready", zap.String("exchange", exchange))
	return &Publisher{conn: conn, channel: channel, exchange: exchange, enabled: true, log: log}, nil
}

func (p *Publisher) Enabled() bool { return p.enabled }

func (p *Publisher) Publish(ctx context.Context, ev services.Event) error {
	if !p.enabled {
		p.log.Debug("event publishing disabled, skipping", zap.String("type", ev.Type))
		return nil
	}
	msg, err := newMessage(ev)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(ctx, p.exchange, ev.Type, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func newMessage(ev services.Event) (amqp091.Publishing, error) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	headers := amqp091.Table{"event_type": ev.Type}
	if ev.ReportID != "" {
		headers["report_id"] = ev.ReportID
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    ev.At,
		Body:         body,
		Headers:      headers,
	}, nil
}

func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn("close amqp channel", zap.Error(err))
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
