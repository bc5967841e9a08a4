package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EventConsumer bridges the story event queue to WebSocket clients. The
// pipeline publishes to RabbitMQ; this consumer fans events out to the
// subscribers of the story's topic.
type EventConsumer struct {
	conn      *amqp.Connection
	queueName string
	manager   *Manager
	logger    *zap.Logger
}

func NewEventConsumer(conn *amqp.Connection, queueName string, manager *Manager, logger *zap.Logger) *EventConsumer {
	return &EventConsumer{
		conn:      conn,
		queueName: queueName,
		manager:   manager,
		logger:    logger.Named("EventConsumer"),
	}
}

// storyEvent is the envelope shared by all pipeline events. Payload details
// are forwarded verbatim to the client.
type storyEvent struct {
	Type    string `json:"type"`
	StoryID string `json:"story_id"`
	UserID  string `json:"user_id"`
}

// Start declares the queue and consumes until ctx is canceled.
func (c *EventConsumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("event consumer: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("event consumer: failed to declare queue '%s': %w", c.queueName, err)
	}

	deliveries, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		ch.Close()
		return fmt.Errorf("event consumer: failed to start consuming: %w", err)
	}

	c.logger.Info("Consuming story events", zap.String("queue", c.queueName))

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Event consumer stopping")
				return
			case delivery, ok := <-deliveries:
				if !ok {
					c.logger.Warn("Delivery channel closed")
					return
				}
				c.handle(delivery)
			}
		}
	}()
	return nil
}

func (c *EventConsumer) handle(delivery amqp.Delivery) {
	var event storyEvent
	if err := json.Unmarshal(delivery.Body, &event); err != nil {
		c.logger.Error("Failed to parse story event, discarding", zap.Error(err))
		_ = delivery.Nack(false, false)
		return
	}
	if event.StoryID == "" {
		c.logger.Warn("Story event without story_id, discarding")
		_ = delivery.Nack(false, false)
		return
	}

	// The raw JSON goes through as the payload so clients see every field
	// the publisher set.
	var payload json.RawMessage = delivery.Body
	c.manager.SendToUser(event.UserID, event.Type, "story:"+event.StoryID, payload)

	if err := delivery.Ack(false); err != nil {
		c.logger.Error("Failed to ack story event", zap.Error(err))
	}
}
