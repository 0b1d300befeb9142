package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupDisabled(t *testing.T) {
	tp, shutdown, err := Setup(context.Background(), Config{}, nil)
	require.NoError(t, err)
	require.Nil(t, tp)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupStdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	tp, shutdown, err := Setup(context.Background(), Config{Enabled: true, Protocol: "stdout", ServiceName: "coach-test"}, &buf)
	require.NoError(t, err)
	require.Same(t, tp, otel.GetTracerProvider())

	_, span := otel.Tracer("test").Start(context.Background(), "pass.run")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	require.Contains(t, buf.String(), `"Name":"pass.run"`)
	require.Contains(t, buf.String(), "coach-test")
}

func TestSetupRejectsUnknownProtocol(t *testing.T) {
	_, _, err := Setup(context.Background(), Config{Enabled: true, Protocol: "carrier-pigeon"}, nil)
	require.ErrorContains(t, err, "carrier-pigeon")
}
