package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Rabbit publishes one persistent message per recipient on a durable queue.
// A mail relay consumes the queue.
type Rabbit struct {
	conn  *amqp.Connection
	ch    channel
	queue string
}

type emailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func NewRabbit(uri, queue string) (*Rabbit, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &Rabbit{conn: conn, ch: ch, queue: queue}, nil
}

func (r *Rabbit) Notify(ctx context.Context, recipient, subject, body string) error {
	payload, err := json.Marshal(emailMessage{To: recipient, Subject: subject, Body: body})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}
	return r.ch.PublishWithContext(ctx,
		"",      // default exchange
		r.queue, // routing key = queue name
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
			Headers:      amqp.Table{"kind": "email"},
		},
	)
}

func (r *Rabbit) Close() error {
	var errCh, errConn error
	if r.ch != nil {
		errCh = r.ch.Close()
	}
	if r.conn != nil {
		errConn = r.conn.Close()
	}
	return errors.Join(errCh, errConn)
}
