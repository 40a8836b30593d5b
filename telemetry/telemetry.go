// Package telemetry exports driver spans over OTLP/HTTP.
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"github.com/colorfulnotion/intcode/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const ServiceName = "intcode"

// TelemetryClient owns the tracer provider for one process.
type TelemetryClient struct {
	endpoint string
	mu       sync.Mutex
	provider *sdktrace.TracerProvider
	disabled bool // no endpoint: spans go nowhere
}

// NewNoOpTelemetryClient creates a disabled client that does nothing.
func NewNoOpTelemetryClient() *TelemetryClient {
	return &TelemetryClient{disabled: true}
}

// NewTelemetryClient targets an OTLP/HTTP collector at endpoint (host:port).
// An empty endpoint yields a disabled client.
func NewTelemetryClient(endpoint string) *TelemetryClient {
	if endpoint == "" {
		return NewNoOpTelemetryClient()
	}
	return &TelemetryClient{endpoint: endpoint}
}

func (c *TelemetryClient) Enabled() bool {
	return !c.disabled
}

// Start installs a batching tracer provider as the global provider.
func (c *TelemetryClient) Start(ctx context.Context) error {
	if c.disabled {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider != nil {
		return fmt.Errorf("telemetry client already started for %s", c.endpoint)
	}
	exp, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(c.endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("otlp exporter %s: %w", c.endpoint, err)
	}
	c.install(sdktrace.WithBatcher(exp))
	log.Info(log.CLIModule, "telemetry started", "endpoint", c.endpoint)
	return nil
}

// StartWithProcessor installs a provider feeding sp, e.g. a span recorder.
func (c *TelemetryClient) StartWithProcessor(sp sdktrace.SpanProcessor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = false
	c.install(sdktrace.WithSpanProcessor(sp))
}

func (c *TelemetryClient) install(opt sdktrace.TracerProviderOption) {
	res := resource.NewSchemaless(attribute.String("service.name", ServiceName))
	c.provider = sdktrace.NewTracerProvider(opt, sdktrace.WithResource(res))
	otel.SetTracerProvider(c.provider)
}

// Tracer returns a named tracer from the client's provider, or a no-op
// tracer when disabled.
func (c *TelemetryClient) Tracer(name string) trace.Tracer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return c.provider.Tracer(name)
}

// Close flushes pending spans and shuts the provider down.
func (c *TelemetryClient) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.provider == nil {
		return nil
	}
	err := c.provider.Shutdown(ctx)
	c.provider = nil
	return err
}
