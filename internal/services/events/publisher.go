package events

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const machineEventsExchange = "machine.events"

// MachineEvent describes a machine lifecycle change broadcast to interested
// consumers (notification services, audit sinks).
type MachineEvent struct {
	Action    string    `json:"action"` // created, updated, deleted
	MachineID uint      `json:"machineId"`
	Name      string    `json:"name"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher fans machine events out over RabbitMQ. All publishing is
// best-effort: the dashboard keeps working when the broker is down.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewPublisher connects to RabbitMQ using RABBITMQ_URL. It returns (nil, nil)
// when the variable is unset, which callers treat as "events disabled".
func NewPublisher() (*Publisher, error) {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		machineEventsExchange,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logrus.Info("Machine event publisher connected to RabbitMQ")
	return &Publisher{conn: conn, channel: channel}, nil
}

// Publish sends one machine event. A nil publisher is a no-op.
func (p *Publisher) Publish(event MachineEvent) {
	if p == nil || p.channel == nil {
		return
	}

	event.Timestamp = time.Now().UTC()
	body, err := json.Marshal(event)
	if err != nil {
		logrus.Warnf("Failed to marshal machine event: %v", err)
		return
	}

	err = p.channel.Publish(
		machineEventsExchange,
		"", // fanout ignores the routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
		},
	)
	if err != nil {
		logrus.Warnf("Failed to publish machine event %s/%d: %v", event.Action, event.MachineID, err)
	}
}

// Close shuts the channel and connection down.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
