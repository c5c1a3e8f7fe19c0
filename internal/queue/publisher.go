package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/model"
)

// Publisher sends SessionCompletedEvents to RabbitMQ.  It dials per message;
// selections are rare enough that a long-lived channel is not worth the
// reconnect bookkeeping.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger
}

// NewPublisher returns a publisher for the given broker URL and queue.
func NewPublisher(url, queue string, log *zap.Logger) *Publisher {
	if queue == "" {
		queue = SessionCompletedQueue
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, queue: queue, log: log}
}

// SessionCompleted implements service.SelectionNotifier.
func (p *Publisher) SessionCompleted(ctx context.Context, s *model.Session) error {
	if s.SelectedMovie == nil {
		return fmt.Errorf("session %s has no selected movie", s.Code)
	}
	return p.Publish(ctx, NewSessionCompletedEvent(uuid.NewString(), s))
}

// Publish declares the durable queue and sends ev as a persistent message.
func (p *Publisher) Publish(ctx context.Context, ev SessionCompletedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug("session.completed published", zap.String("code", ev.SessionCode), zap.String("event_id", ev.EventID))
	return nil
}
