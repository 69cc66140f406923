package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]string{"email": "jane@example.com"}
	ev, err := NewEvent("user.registered", "user-1", "user", "resumeforge", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "user.registered", ev.EventType)
	assert.Equal(t, "user-1", ev.AggregateID)
	assert.Equal(t, "user", ev.AggregateType)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, "resumeforge", ev.Source)
	assert.False(t, ev.Timestamp.IsZero())
}

func TestEvent_RoundTrip(t *testing.T) {
	ev, err := NewEvent("resume.printed", "resume-7", "resume", "resumeforge",
		map[string]string{"format": "pdf"})
	require.NoError(t, err)
	ev.WithCorrelationID("corr-1").WithMetadata("origin", "printer")

	data, err := ev.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev.EventID, got.EventID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, "printer", got.Metadata["origin"])

	var payload map[string]string
	require.NoError(t, got.UnmarshalData(&payload))
	assert.Equal(t, "pdf", payload["format"])
}

func TestEvent_WithMetadata_NilMap(t *testing.T) {
	ev := &Event{}
	ev.WithMetadata("k", "v")
	assert.Equal(t, "v", ev.Metadata["k"])
}
