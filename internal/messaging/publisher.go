package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"biographer-server/internal/models"
)

// StoryStatusEvent notifies clients that a story changed status.
type StoryStatusEvent struct {
	Type         string             `json:"type"`
	StoryID      uuid.UUID          `json:"story_id"`
	UserID       uuid.UUID          `json:"user_id"`
	Status       models.StoryStatus `json:"status"`
	ErrorMessage *string            `json:"error_message,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

// PanelCreatedEvent notifies clients that one panel of a story is ready.
type PanelCreatedEvent struct {
	Type       string    `json:"type"`
	StoryID    uuid.UUID `json:"story_id"`
	UserID     uuid.UUID `json:"user_id"`
	PanelID    uuid.UUID `json:"panel_id"`
	OrderIndex int       `json:"order_index"`
	SceneText  string    `json:"scene_text"`
	ImageURL   string    `json:"image_url"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	eventTypeStoryStatus  = "story_status"
	eventTypePanelCreated = "panel_created"
)

// EventPublisher publishes story lifecycle events for realtime delivery.
type EventPublisher interface {
	PublishStoryStatus(ctx context.Context, event StoryStatusEvent) error
	PublishPanelCreated(ctx context.Context, event PanelCreatedEvent) error
}

type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQPublisher opens a channel on the connection and declares the
// event queue. Queue parameters must match the consumer's declaration.
func NewRabbitMQPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("event publisher: failed to open channel: %w", err)
	}
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("event publisher: failed to declare queue '%s': %w", queueName, err)
	}
	log := logger.Named("EventPublisher")
	log.Info("Event queue declared", zap.String("queue", queueName))
	return &rabbitMQPublisher{channel: ch, queueName: queueName, logger: log}, nil
}

func (p *rabbitMQPublisher) PublishStoryStatus(ctx context.Context, event StoryStatusEvent) error {
	event.Type = eventTypeStoryStatus
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal story status event for story %s: %w", event.StoryID, err)
	}
	if err := p.publishMessage(ctx, body); err != nil {
		return fmt.Errorf("failed to publish story status event for story %s: %w", event.StoryID, err)
	}
	return nil
}

func (p *rabbitMQPublisher) PublishPanelCreated(ctx context.Context, event PanelCreatedEvent) error {
	event.Type = eventTypePanelCreated
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal panel event for story %s: %w", event.StoryID, err)
	}
	if err := p.publishMessage(ctx, body); err != nil {
		return fmt.Errorf("failed to publish panel event for story %s: %w", event.StoryID, err)
	}
	return nil
}

// publishMessage sends one persistent message with a short retry loop for
// transient broker hiccups.
func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (default)
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "biographer-server",
			},
		)
		if err == nil {
			return nil
		}
		p.logger.Warn("Publish attempt failed",
			zap.Int("attempt", attempt), zap.String("queue", p.queueName), zap.Error(err))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("failed to publish to queue %s after retries: %w", p.queueName, err)
}
