package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"movieapi/movie"
)

// Publisher implements movie.EventPublisher. It keeps one connection for the
// process and opens a short lived channel per message.
type Publisher struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	url    string
	queue  string
	logger *zap.SugaredLogger
}

// NewPublisher dials the broker and declares the durable queue.
func NewPublisher(url, queue string, logger *zap.SugaredLogger) (*Publisher, error) {
	p := &Publisher{url: url, queue: queue, logger: logger}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	p.conn = conn

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := declareQueue(ch, queue); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare queue: %w", err)
	}

	return p, nil
}

// Publish sends e as a persistent JSON message. Failures are logged and
// returned; the caller decides whether to care.
func (p *Publisher) Publish(ctx context.Context, e movie.Event) error {
	msg, err := newPublishing(e)
	if err != nil {
		p.logger.Errorw("rabbitmq: marshal event failed", "error", err, "type", e.Type)
		return err
	}

	ch, err := p.channel()
	if err != nil {
		p.logger.Errorw("rabbitmq: open channel failed", "error", err, "type", e.Type)
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.logger.Errorw("rabbitmq: publish failed", "error", err, "type", e.Type, "movie_id", e.Movie.ID)
		return err
	}

	p.logger.Debugw("movie event published", "type", e.Type, "movie_id", e.Movie.ID)
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// channel redials once if the broker dropped the connection.
func (p *Publisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, err
		}
		p.conn = conn
	}
	return p.conn.Channel()
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
}

func newPublishing(e movie.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		Body:         body,
	}, nil
}
