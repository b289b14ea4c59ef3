package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const connectTimeout = 15 * time.Second

// RabbitMQ manages broker connectivity and status queue declaration.
type RabbitMQ struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewRabbitMQ(url string) (*RabbitMQ, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}

	r := &RabbitMQ{url: url}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	ch, err := r.channel(ctx)
	if err != nil {
		return nil, err
	}
	defer ch.Close() //nolint:errcheck // best-effort channel close

	if _, err := ch.QueueDeclare(StatusQueueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %q: %w", StatusQueueName, err)
	}

	return r, nil
}

func (r *RabbitMQ) channel(ctx context.Context) (*amqp.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil || r.conn.IsClosed() {
		conn, err := amqp.Dial(r.url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect rabbitmq: %w", err)
		}
		r.conn = conn
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	conn := r.conn
	r.conn = nil
	r.mu.Unlock()

	if conn == nil || conn.IsClosed() {
		return nil
	}
	return conn.Close()
}
