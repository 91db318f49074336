package mq

import (
	"context"
	"errors"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ezinne-pharmarcy/backend/internal/config"
	"github.com/ezinne-pharmarcy/backend/internal/ids"
)

// RabbitMQ publishes messages to durable queues on the default exchange.
type RabbitMQ struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	declared map[string]struct{}
}

// NewRabbitMQ dials the broker configured for audit delivery.
func NewRabbitMQ(cfg config.AuditConfig) (*RabbitMQ, error) {
	if strings.TrimSpace(cfg.AMQPURL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQ{conn: conn, channel: ch, declared: make(map[string]struct{})}, nil
}

// Publish sends data to queue, declaring it on first use.
func (r *RabbitMQ) Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(queue) == "" {
		return "", errors.New("rabbitmq queue is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.declared[queue]; !ok {
		if _, err := r.channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return "", err
		}
		r.declared[queue] = struct{}{}
	}

	headers := amqp.Table{}
	for key, value := range attrs {
		headers[key] = value
	}

	messageID := ids.New()
	err := r.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Headers:      headers,
		Body:         data,
	})
	if err != nil {
		return "", err
	}
	return messageID, nil
}

// Close closes the channel and connection.
func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
