// Package rabbitmq dispatches ingestion job ids through a durable RabbitMQ queue.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kailas-cloud/recall/internal/domain/task"
)

// DefaultQueue is the queue job ids are published to.
const DefaultQueue = "recall.jobs"

// ErrClosed signals that the broker closed the delivery stream. It matches
// task.ErrQueueClosed, so the worker pool stops instead of polling a dead channel.
var ErrClosed = fmt.Errorf("rabbitmq: delivery channel closed: %w", task.ErrQueueClosed)

// channel is the subset of *amqp.Channel the dispatcher uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Config holds the broker connection settings.
type Config struct {
	URL      string
	Queue    string
	Prefetch int
}

// Dispatcher implements the job dispatcher contract on a RabbitMQ queue.
// Unacked deliveries return to the queue when the consumer's channel closes,
// so Recover has nothing to move.
type Dispatcher struct {
	conn     io.Closer
	ch       channel
	queue    string
	prefetch int

	mu         sync.Mutex
	deliveries <-chan amqp.Delivery
}

// Dial connects to the broker and declares the durable job queue.
func Dial(cfg Config) (*Dispatcher, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{Heartbeat: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open channel: %w", err), conn.Close())
	}

	d, err := newDispatcher(ch, cfg.Queue, cfg.Prefetch)
	if err != nil {
		return nil, errors.Join(err, conn.Close())
	}
	d.conn = conn
	return d, nil
}

func newDispatcher(ch channel, queue string, prefetch int) (*Dispatcher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &Dispatcher{ch: ch, queue: queue, prefetch: prefetch}, nil
}

// Publish sends each job id as a persistent message.
func (d *Dispatcher) Publish(ctx context.Context, jobIDs ...string) error {
	for _, id := range jobIDs {
		err := d.ch.PublishWithContext(ctx, "", d.queue, false, false, amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			MessageId:    id,
			Timestamp:    time.Now().UTC(),
			Body:         []byte(id),
		})
		if err != nil {
			return fmt.Errorf("publish job %s: %w", id, err)
		}
	}
	return nil
}

// Next waits up to wait for a job id. Returns task.ErrNoDelivery on timeout.
func (d *Dispatcher) Next(ctx context.Context, wait time.Duration) (task.Delivery, error) {
	deliveries, err := d.consume()
	if err != nil {
		return task.Delivery{}, err
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case msg, ok := <-deliveries:
		if !ok {
			return task.Delivery{}, ErrClosed
		}
		return task.NewDelivery(string(msg.Body), func(context.Context) error {
			return msg.Ack(false)
		}), nil
	case <-timer.C:
		return task.Delivery{}, task.ErrNoDelivery
	case <-ctx.Done():
		return task.Delivery{}, ctx.Err()
	}
}

// Recover is a no-op: the broker redelivers unacked messages itself.
func (d *Dispatcher) Recover(context.Context) ([]string, error) {
	return nil, nil
}

// Close closes the channel and the connection.
func (d *Dispatcher) Close() error {
	err := d.ch.Close()
	if d.conn != nil {
		err = errors.Join(err, d.conn.Close())
	}
	return err
}

// consume starts the consumer on first use so publish-only processes never consume.
func (d *Dispatcher) consume() (<-chan amqp.Delivery, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.deliveries != nil {
		return d.deliveries, nil
	}
	if d.prefetch > 0 {
		if err := d.ch.Qos(d.prefetch, 0, false); err != nil {
			return nil, fmt.Errorf("set qos: %w", err)
		}
	}
	deliveries, err := d.ch.Consume(d.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", d.queue, err)
	}
	d.deliveries = deliveries
	return deliveries, nil
}
