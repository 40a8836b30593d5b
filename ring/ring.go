// Package ring drives several Intcode VMs wired output to input: a linear
// chain, a cooperative round-robin feedback loop, or a feedback loop with
// one goroutine per instance.
package ring

import (
	"context"
	"fmt"

	"github.com/colorfulnotion/intcode/intcode"
	"github.com/colorfulnotion/intcode/intcode/trace"
	"github.com/colorfulnotion/intcode/vmerrors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/colorfulnotion/intcode/ring"

// Driver runs one topology of len(phases) instances over image. Every
// instance first receives its phase; the first instance then receives input.
type Driver func(ctx context.Context, image []int64, phases []int64, input int64, opts ...Option) (*Result, error)

// Result of one driver run.
type Result struct {
	// Signal is the last value produced by the last instance.
	Signal int64 `json:"signal"`
	// Rounds counts scheduling passes over the instances.
	Rounds int      `json:"rounds"`
	Steps  []uint64 `json:"steps"`
}

type config struct {
	vmOpts []intcode.Option
	trace  bool
	tracer trace.Tracer
}

type Option func(*config)

// WithVMOptions applies opts to every instance.
func WithVMOptions(opts ...intcode.Option) Option {
	return func(c *config) {
		c.vmOpts = append(c.vmOpts, opts...)
	}
}

// WithTrace traces every instance into t, tagging lines with the instance
// name when t is a text writer.
func WithTrace(t trace.Tracer) Option {
	return func(c *config) {
		c.trace = true
		c.tracer = t
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func instanceName(i int) string {
	return fmt.Sprintf("amp%d", i)
}

// vmOptions returns the options of instance i.
func (c *config) vmOptions(i int, extra ...intcode.Option) []intcode.Option {
	opts := append([]intcode.Option{intcode.WithName(instanceName(i))}, c.vmOpts...)
	if c.tracer != nil {
		t := c.tracer
		if tw, ok := t.(*trace.TextWriter); ok {
			t = tw.WithPrefix(instanceName(i))
		}
		opts = append(opts, intcode.WithTracer(t))
	}
	return append(opts, extra...)
}

func checkTopology(phases []int64) error {
	if len(phases) == 0 {
		return fmt.Errorf("no phases: %w", vmerrors.ErrRInvalidTopology)
	}
	return nil
}

// startSpan opens the driver span; finish records the outcome.
func startSpan(ctx context.Context, name string, phases []int64) (context.Context, oteltrace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, oteltrace.WithAttributes(
		attribute.Int("ring.instances", len(phases)),
		attribute.Int64Slice("ring.phases", phases),
	))
}

func finish(span oteltrace.Span, res *Result, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if res != nil {
		span.SetAttributes(
			attribute.Int64("ring.signal", res.Signal),
			attribute.Int("ring.rounds", res.Rounds),
		)
	}
	span.End()
}

func instanceErr(i int, err error) error {
	return fmt.Errorf("%s: %w", instanceName(i), err)
}
