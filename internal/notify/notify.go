// Package notify publishes order lifecycle events to RabbitMQ so kitchen
// displays and delivery tooling can react without polling the API.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"cloud-kitchen/internal/order"
)

const exchangeName = "order_events"

type event struct {
	Event       string    `json:"event"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	Status      string    `json:"status,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher implements order.Notifier over an AMQP topic exchange.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("notify: failed to connect to broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("notify: failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("notify: failed to declare exchange: %w", err)
	}

	log.Info().Str("exchange", exchangeName).Msg("Connected to RabbitMQ")
	return &Publisher{conn: conn, channel: channel}, nil
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) OrderCreated(ctx context.Context, orderID int64, orderNumber string) {
	p.publish(ctx, "order.created", event{
		Event:       "order.created",
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Timestamp:   time.Now().UTC(),
	})
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, orderID int64, newStatus order.OrderStatus) {
	p.publish(ctx, "order.status_changed", event{
		Event:     "order.status_changed",
		OrderID:   orderID,
		Status:    string(newStatus),
		Timestamp: time.Now().UTC(),
	})
}

// publish never propagates failure; a dead broker must not fail an order.
func (p *Publisher) publish(ctx context.Context, routingKey string, evt event) {
	body, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("routing_key", routingKey).Msg("notify: failed to marshal event")
		return
	}

	err = p.channel.PublishWithContext(ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		log.Error().Err(err).Str("routing_key", routingKey).Int64("order_id", evt.OrderID).Msg("notify: failed to publish event")
		return
	}

	log.Debug().Str("routing_key", routingKey).Int64("order_id", evt.OrderID).Msg("notify: event published")
}

// Nop satisfies order.Notifier when no broker is configured.
type Nop struct{}

func (Nop) OrderCreated(context.Context, int64, string) {}

func (Nop) OrderStatusChanged(context.Context, int64, order.OrderStatus) {}
