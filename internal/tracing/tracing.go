// Package tracing installs an OpenTelemetry tracer provider for the CLI and
// the HTTP server. The engine starts its own spans through the global
// provider; without Init they are no-ops.
package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/inference-sim/cpusched"

var (
	providerOnce sync.Once
	providerErr  error
)

// Init configures the stdout exporter. An empty outputFile writes to
// os.Stdout. Safe to call more than once; the first call wins.
func Init(serviceName, serviceVersion, outputFile string) error {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		w = f
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}
	return InitWithExporter(serviceName, serviceVersion, exporter)
}

// InitWithExporter installs exporter as the global span sink. The first
// call wins; later calls return the first call's error.
func InitWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			providerErr = err
			return
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
	})
	return providerErr
}

// StartSpan starts a span of the given kind ("SERVER", "CLIENT" or internal).
func StartSpan(ctx context.Context, name, kind string) (context.Context, trace.Span) {
	spanKind := trace.SpanKindInternal
	switch kind {
	case "SERVER":
		spanKind = trace.SpanKindServer
	case "CLIENT":
		spanKind = trace.SpanKindClient
	}
	return otel.Tracer(instrumentationName).Start(ctx, name, trace.WithSpanKind(spanKind))
}

// EndSpan records err (or OK) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// StatusFromHTTPCode maps an HTTP response code onto a span status.
func StatusFromHTTPCode(span trace.Span, code int) {
	switch {
	case code >= 100 && code < 400:
		span.SetStatus(codes.Ok, "")
	case code >= 400 && code < 500:
		span.SetStatus(codes.Error, "client error")
	case code >= 500:
		span.SetStatus(codes.Error, "server error")
	default:
		span.SetStatus(codes.Unset, "")
	}
}
