package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_Disabled(t *testing.T) {
	cfg := DefaultConfig("resumeforge")
	cfg.Enabled = false

	shutdown, err := InitTracer(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("resumeforge")
	assert.Equal(t, "resumeforge", cfg.ServiceName)
	assert.Equal(t, 1.0, cfg.SampleRate)
	assert.False(t, cfg.Enabled)
}

func TestTracer_ReturnsNamedTracer(t *testing.T) {
	tr := Tracer("resumeforge/test")
	require.NotNil(t, tr)

	_, span := tr.Start(context.Background(), "op")
	span.End()
}
