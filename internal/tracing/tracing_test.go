package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(&buf, "campingbook-test")
	require.NoError(t, err)

	_, span := otel.Tracer("camping.test").Start(context.Background(), "reservations.csv.fetch")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"reservations.csv.fetch"`)
	assert.Contains(t, buf.String(), "campingbook-test")
}
