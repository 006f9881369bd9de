package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/pkg/errors"

	"github.com/norun9/mobilecart/config"
)

func TestStdoutExporterWritesSpans(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	tp, err := InitTracerProvider(ctx, config.Config{
		TraceExporter: config.ExporterStdout,
		ServiceName:   "mobilecart-test",
	}, &buf)
	assert.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "cartstore.AddToCart")
	span.End()
	assert.NoError(t, tp.Shutdown(ctx))

	assert.True(t, strings.Contains(buf.String(), "cartstore.AddToCart"))
	assert.True(t, strings.Contains(buf.String(), "mobilecart-test"))
}

func TestUnknownExporter(t *testing.T) {
	_, err := InitTracerProvider(context.Background(), config.Config{TraceExporter: "zipkin"}, nil)
	assert.EqualError(t, err, `unknown trace exporter "zipkin"`)
	_, traced := err.(interface{ StackTrace() errors.StackTrace })
	assert.True(t, traced)
}
