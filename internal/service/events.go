package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Domain event names.
const (
	EventAssessmentUpserted = "assessment.upserted"
	EventActivityCreated    = "activity.created"
	EventActivityDeleted    = "activity.deleted"
	EventStudentDeleted     = "student.deleted"
	EventStudentsImported   = "student.imported"
	EventBackupRestored     = "backup.restored"
)

// Event is the envelope published for every domain change.
type Event struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// EventPublisher emits domain events. Failures never roll back the change
// that produced them.
type EventPublisher interface {
	Publish(ctx context.Context, name string, payload interface{}) error
}

// NATSEventPublisher publishes events to "<prefix>.<event name>".
type NATSEventPublisher struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSEventPublisher constructs a NATS-backed publisher.
func NewNATSEventPublisher(conn *nats.Conn, prefix string) *NATSEventPublisher {
	prefix = strings.Trim(strings.ReplaceAll(prefix, ":", "."), ".")
	if prefix == "" {
		prefix = "sikori"
	}
	return &NATSEventPublisher{conn: conn, prefix: prefix}
}

// Subject returns the subject an event name is published on.
func (p *NATSEventPublisher) Subject(name string) string {
	return p.prefix + "." + name
}

// Publish serialises the event and hands it to the NATS connection.
func (p *NATSEventPublisher) Publish(ctx context.Context, name string, payload interface{}) error {
	data, err := json.Marshal(newEvent(name, payload))
	if err != nil {
		return err
	}
	return p.conn.Publish(p.Subject(name), data)
}

// LogEventPublisher writes events to the log when no broker is configured.
type LogEventPublisher struct {
	logger zerolog.Logger
}

// NewLogEventPublisher constructs a logging publisher.
func NewLogEventPublisher(logger zerolog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger.With().Str("component", "event_publisher").Logger()}
}

// Publish logs the event name and returns nil.
func (p *LogEventPublisher) Publish(ctx context.Context, name string, payload interface{}) error {
	p.logger.Debug().Str("event", name).Msg("domain event emitted")
	return nil
}

func newEvent(name string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Name:       name,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func publishEvent(ctx context.Context, publisher EventPublisher, logger zerolog.Logger, name string, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, name, payload); err != nil {
		logger.Warn().Err(err).Str("event", name).Msg("failed to publish domain event")
	}
}
