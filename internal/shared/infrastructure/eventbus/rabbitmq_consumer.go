package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/carecal/pkg/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultConsumerQueueName is the durable queue of the calendar worker.
	DefaultConsumerQueueName = "carecal.calendar"

	// DefaultMaxDeliveries bounds redelivery of an order event the binder
	// keeps failing on. Past it the message is parked on the dead queue.
	DefaultMaxDeliveries = 5

	deadLetterSuffix = ".dead"
)

// RabbitMQConsumer consumes events from RabbitMQ.
type RabbitMQConsumer struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queue     string
	exchange  string
	registry  *ConsumerRegistry
	logger    *slog.Logger
	maxDeliv  int
	mu        sync.Mutex
	running   bool
	closeChan chan struct{}
	closeOnce sync.Once
}

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL       string
	QueueName string
	Exchange  string
	// MaxDeliveries of zero means DefaultMaxDeliveries.
	MaxDeliveries int
	Logger        *slog.Logger
}

// NewRabbitMQConsumer dials the broker and declares the exchange and queue.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultConsumerQueueName
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = DefaultMaxDeliveries
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareExchange(ch, cfg.Exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := declareQueues(ch, cfg.QueueName); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"queue", cfg.QueueName,
		"exchange", cfg.Exchange,
	)

	return &RabbitMQConsumer{
		conn:      conn,
		channel:   ch,
		queue:     cfg.QueueName,
		exchange:  cfg.Exchange,
		registry:  registry,
		maxDeliv:  cfg.MaxDeliveries,
		logger:    cfg.Logger,
		closeChan: make(chan struct{}),
	}, nil
}

// declareQueues declares the work queue as a quorum queue so the broker
// tracks delivery counts, and a dead queue that rejected messages land in.
func declareQueues(ch *amqp.Channel, queue string) error {
	dead := queue + deadLetterSuffix
	if _, err := ch.QueueDeclare(dead, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead queue: %w", err)
	}

	args := amqp.Table{
		"x-queue-type":              "quorum",
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dead,
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return nil
}

// RegisterConsumer registers an event consumer and binds its event types to the queue.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	for _, eventType := range consumer.EventTypes() {
		if err := c.bindQueue(eventType); err != nil {
			c.logger.Error("failed to bind queue for event type",
				"event_type", eventType,
				"error", err,
			)
		}
	}
}

func (c *RabbitMQConsumer) bindQueue(routingKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.channel.QueueBind(
		c.queue,
		routingKey,
		c.exchange,
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	c.logger.Debug("bound queue to routing key",
		"queue", c.queue,
		"routing_key", routingKey,
	)
	return nil
}

// Start binds the registry's event types and consumes until ctx is
// cancelled or Close is called. Failed deliveries are requeued until they
// reach the delivery limit, then dead-lettered.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	c.mu.Unlock()

	for _, eventType := range c.registry.GetAllEventTypes() {
		if err := c.bindQueue(eventType); err != nil {
			return err
		}
	}

	// one unacked delivery at a time
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("started consuming events", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return ctx.Err()

		case <-c.closeChan:
			c.logger.Info("consumer close requested, stopping")
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed unexpectedly")
			}

			if err := c.processMessage(ctx, msg); err != nil {
				requeue := deliveryCount(msg)+1 < c.maxDeliv
				if !requeue {
					c.logger.Warn("giving up on message, dead-lettering",
						"routing_key", msg.RoutingKey,
						"deliveries", deliveryCount(msg)+1,
					)
				}
				if nackErr := msg.Nack(false, requeue); nackErr != nil {
					c.logger.Error("failed to nack message", "error", nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				c.logger.Error("failed to ack message", "error", ackErr)
			}
		}
	}
}

func (c *RabbitMQConsumer) processMessage(ctx context.Context, msg amqp.Delivery) error {
	event := &ConsumedEvent{}
	if err := json.Unmarshal(msg.Body, event); err != nil {
		// poison message: ack and drop
		c.logger.Error("failed to unmarshal event",
			"routing_key", msg.RoutingKey,
			"error", err,
		)
		return nil
	}

	if event.RoutingKey == "" {
		event.RoutingKey = msg.RoutingKey
	}

	ctx = observability.WithCorrelationID(ctx, event.Metadata.CorrelationID)

	start := time.Now()
	err := c.registry.Dispatch(ctx, event)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorContext(ctx, "event dispatch failed",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
			observability.DurationKey, duration.Milliseconds(),
			"error", err,
		)
		return err
	}

	c.logger.DebugContext(ctx, "event processed successfully",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		observability.DurationKey, duration.Milliseconds(),
	)
	return nil
}

// deliveryCount is how many times the broker delivered msg before. Quorum
// queues report it in x-delivery-count; classic queues only flag redelivery.
func deliveryCount(msg amqp.Delivery) int {
	switch v := msg.Headers["x-delivery-count"].(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int:
		return v
	}
	if msg.Redelivered {
		return 1
	}
	return 0
}

// Close closes the consumer connection.
func (c *RabbitMQConsumer) Close() error {
	c.closeOnce.Do(func() { close(c.closeChan) })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
	}

	c.logger.Info("RabbitMQ consumer closed")
	return nil
}
