package otel

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")
	log, hook := test.NewNullLogger()

	shutdown, err := Init(context.Background(), log)

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, false, hook.LastEntry().Data["tracing_enabled"])
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "false")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")
	log, hook := test.NewNullLogger()

	shutdown, err := Init(context.Background(), log)

	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, "tracing_init_failed", hook.LastEntry().Data["event"])
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler("always_on", "").Description(), "AlwaysOn")
	assert.Contains(t, Sampler("always_off", "").Description(), "AlwaysOff")
	assert.Contains(t, Sampler("traceidratio", "0.25").Description(), "0.25")
	assert.Contains(t, Sampler("parentbased_traceidratio", "bogus").Description(), "ParentBased")
	assert.Contains(t, Sampler("", "").Description(), "ParentBased")
}
