package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct {
	calls int
}

func (p *failingPublisher) Publish(ctx context.Context, name string, payload interface{}) error {
	p.calls++
	return errors.New("broker unavailable")
}

func TestNATSEventPublisherSubject(t *testing.T) {
	cases := map[string]string{
		"":         "sikori.backup.restored",
		"school":   "school.backup.restored",
		"sikori:":  "sikori.backup.restored",
		".events.": "events.backup.restored",
	}
	for prefix, expected := range cases {
		publisher := NewNATSEventPublisher(nil, prefix)
		require.Equal(t, expected, publisher.Subject(EventBackupRestored), "prefix %q", prefix)
	}
}

func TestPublishEventLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	publisher := &failingPublisher{}

	publishEvent(context.Background(), publisher, logger, EventStudentDeleted, map[string]string{"nisn": "001"})

	require.Equal(t, 1, publisher.calls)
	require.Contains(t, buf.String(), "failed to publish domain event")
	require.Contains(t, buf.String(), EventStudentDeleted)

	require.NotPanics(t, func() {
		publishEvent(context.Background(), nil, logger, EventStudentDeleted, nil)
	})
}

func TestNewEventStampsIdentity(t *testing.T) {
	first := newEvent(EventActivityCreated, "a")
	second := newEvent(EventActivityCreated, "a")

	require.NotEmpty(t, first.ID)
	require.NotEqual(t, first.ID, second.ID)
	require.Equal(t, EventActivityCreated, first.Name)
	require.False(t, first.OccurredAt.IsZero())
}
