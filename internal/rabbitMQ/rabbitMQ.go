package rabbitMQ

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/sekolahdigital/notify-service/internal/events"
)

// Relay mirrors the in-process event bus onto a RabbitMQ exchange so other
// school services (academic, PPDB, library) can react to notification
// activity without linking this process.
type Relay struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	config   Config
	unsubFn  func()
	bindDone bool
}

type Config struct {
	URL          string
	ExchangeName string
	RoutingKey   string
}

// envelope is the wire form of a bus event.
type envelope struct {
	Event        events.Type    `json:"event"`
	Notification any            `json:"notification,omitempty"`
	Payload      map[string]any `json:"payload,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

func NewRelay(config Config) (*Relay, error) {
	conn, err := amqp.Dial(config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		config.ExchangeName, // name
		"topic",             // kind
		true,                // durable
		false,               // auto-delete
		false,               // internal
		false,               // no-wait
		nil,                 // args
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Relay{
		conn:    conn,
		channel: channel,
		config:  config,
	}, nil
}

// Bind subscribes the relay to every bus event. Publish failures are logged
// and dropped; the broker is an observer, never a delivery dependency.
func (r *Relay) Bind(bus *events.Bus) {
	if r.bindDone {
		return
	}
	r.bindDone = true

	id := bus.Subscribe(events.TypeAny, func(e events.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := r.publish(ctx, e); err != nil {
			logrus.Errorf("failed to relay event %s: %s", e.Type, err.Error())
		}
	})
	r.unsubFn = func() { bus.Unsubscribe(events.TypeAny, id) }
}

func (r *Relay) publish(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(envelope{
		Event:        e.Type,
		Notification: e.Notification,
		Payload:      e.Payload,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := r.config.RoutingKey + "." + string(e.Type)
	err = r.channel.PublishWithContext(
		ctx,
		r.config.ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// HealthCheck verifies the broker connection is alive.
func (r *Relay) HealthCheck() error {
	if r.conn == nil || r.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	testChannel, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("RabbitMQ health check failed: %w", err)
	}
	testChannel.Close()

	return nil
}

func (r *Relay) Close() error {
	if r.unsubFn != nil {
		r.unsubFn()
	}

	var errs []error
	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors while closing RabbitMQ: %v", errs)
	}
	return nil
}
