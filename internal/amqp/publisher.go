// Package amqp publishes notification events to RabbitMQ so other services (mail, push)
// can react to them.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finance_tracker/internal/domain"

	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// NotificationMessage is the wire format of a published notification
type NotificationMessage struct {
	ID        uint                    `json:"id"`
	UserID    uint                    `json:"userId"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Data      domain.Payload          `json:"data"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewNotificationMessage copies a persisted notification into its wire format
func NewNotificationMessage(n domain.Notification) NotificationMessage {
	return NotificationMessage{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}

// RoutingKey is the topic routing key for a notification type
func RoutingKey(t domain.NotificationType) string {
	return "notification." + string(t)
}

// Publisher sends notifications to a topic exchange
type Publisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewPublisher dials RabbitMQ and declares the exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
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
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// PublishNotification publishes n with routing key notification.<type>
func (p *Publisher) PublishNotification(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(NewNotificationMessage(n))
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,         // exchange
		RoutingKey(n.Type), // routing key
		false,              // mandatory
		false,              // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"type":            n.Type,
		"exchange":        p.exchange,
	}).Debug("Published notification")
	return nil
}

// Close releases the channel and connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
