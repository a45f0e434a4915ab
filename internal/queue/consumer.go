package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler processes one completion message
type MessageHandler func(ctx context.Context, msg *CompletionMessage) error

// Consumer reads completion messages from the achievement queue with a pool
// of workers
type Consumer struct {
	conn       *Connection
	handler    MessageHandler
	workers    int
	prefetch   int
	timeout    time.Duration
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Workers  int           // concurrent workers
	Prefetch int           // unacked deliveries per channel
	Timeout  time.Duration // per-message handler timeout
}

// DefaultConsumerConfig returns the defaults for a single tailing client
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Workers:  1,
		Prefetch: 10,
		Timeout:  10 * time.Second,
	}
}

func (cfg ConsumerConfig) withDefaults() ConsumerConfig {
	def := DefaultConsumerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = def.Prefetch
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return cfg
}

// NewConsumer creates a new queue consumer
func NewConsumer(conn *Connection, handler MessageHandler, cfg ConsumerConfig) *Consumer {
	cfg = cfg.withDefaults()
	return &Consumer{
		conn:     conn,
		handler:  handler,
		workers:  cfg.Workers,
		prefetch: cfg.Prefetch,
		timeout:  cfg.Timeout,
	}
}

// Start begins consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		AchievementQueueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("starting achievement consumer", "workers", c.workers, "prefetch", c.prefetch)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, msgs)
	}
	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				slog.Info("message channel closed", "worker_id", id)
				return
			}
			c.processMessage(ctx, id, msg)
		}
	}
}

// Acknowledger is the subset of amqp.Delivery used to settle a message
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
	Reject(requeue bool) error
}

func (c *Consumer) processMessage(ctx context.Context, workerID int, msg amqp.Delivery) {
	c.handle(ctx, workerID, msg.Body, msg.Redelivered, msg)
}

// handle decodes body and runs the handler. Malformed messages are dropped;
// a failed handler gets one redelivery before the message is discarded.
func (c *Consumer) handle(ctx context.Context, workerID int, body []byte, redelivered bool, ack Acknowledger) {
	var m CompletionMessage
	if err := json.Unmarshal(body, &m); err != nil {
		slog.Error("failed to unmarshal completion message", "worker_id", workerID, "error", err)
		_ = ack.Reject(false)
		return
	}

	msgCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.handler(msgCtx, &m); err != nil {
		slog.Error("completion handler failed",
			"worker_id", workerID,
			"message_id", m.ID,
			"redelivered", redelivered,
			"error", err,
		)
		_ = ack.Nack(false, !redelivered)
		return
	}

	if err := ack.Ack(false); err != nil {
		slog.Error("failed to ack message", "worker_id", workerID, "message_id", m.ID, "error", err)
	}
}

// Stop cancels the workers and waits for them to finish
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
	slog.Info("consumer stopped")
}
