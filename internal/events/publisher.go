// Package events publishes portal domain events for downstream
// job-matching workers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Exchange is the topic exchange portal events are published to.
const Exchange = "portal_events"

// Publisher emits portal events. Publishing is best-effort: failures are
// logged and never abort the operation that triggered them.
type Publisher interface {
	ProfileSaved(ctx context.Context, userID string)
	ResumeUploaded(ctx context.Context, userID, resumeID string)
}

// AMQPPublisher publishes JSON events to a RabbitMQ topic exchange.
type AMQPPublisher struct {
	conn *amqp.Connection
	log  *zap.Logger
}

// NewAMQPPublisher connects to the broker at url and declares the
// exchange.
func NewAMQPPublisher(url string, log *zap.Logger) (*AMQPPublisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &AMQPPublisher{conn: conn, log: log}, nil
}

// Close shuts the broker connection down.
func (p *AMQPPublisher) Close() error {
	return p.conn.Close()
}

// ProfileSaved publishes profile.saved.<userID>.
func (p *AMQPPublisher) ProfileSaved(_ context.Context, userID string) {
	p.publish(fmt.Sprintf("profile.saved.%s", userID), map[string]any{
		"event":   "profile.saved",
		"user_id": userID,
		"at":      time.Now().UTC(),
	})
}

// ResumeUploaded publishes resume.uploaded.<userID>.
func (p *AMQPPublisher) ResumeUploaded(_ context.Context, userID, resumeID string) {
	p.publish(fmt.Sprintf("resume.uploaded.%s", userID), map[string]any{
		"event":     "resume.uploaded",
		"user_id":   userID,
		"resume_id": resumeID,
		"at":        time.Now().UTC(),
	})
}

func (p *AMQPPublisher) publish(routingKey string, body map[string]any) {
	ch, err := p.conn.Channel()
	if err != nil {
		p.log.Error("failed to open amqp channel", zap.Error(err))
		return
	}
	defer ch.Close()

	b, _ := json.Marshal(body)
	err = ch.Publish(Exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
	if err != nil {
		p.log.Error("failed to publish event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return
	}
	p.log.Debug("event published", zap.String("routing_key", routingKey))
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

// ProfileSaved does nothing.
func (NopPublisher) ProfileSaved(context.Context, string) {}

// ResumeUploaded does nothing.
func (NopPublisher) ResumeUploaded(context.Context, string, string) {}

var (
	_ Publisher = (*AMQPPublisher)(nil)
	_ Publisher = NopPublisher{}
)
