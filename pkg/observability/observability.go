// Package observability sets up logging and OpenTelemetry instruments for carcheck.
//
// Instruments are created from the global OpenTelemetry providers. Without an
// SDK installed those are no-ops, so a one-shot CLI run pays nothing for them.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/intelexta/carcheck/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName scopes carcheck's tracer and meter.
const InstrumentationName = "github.com/intelexta/carcheck"

// NewLogger builds a slog logger on w using the configured level and format.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if cfg == nil {
		cfg = config.Default()
	}
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var h slog.Handler
	if cfg.JSONLogs() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("component", "carcheck")
}

// Instruments groups the tracer and counters used around a validation run.
type Instruments struct {
	tracer      trace.Tracer
	validations metric.Int64Counter
	violations  metric.Int64Counter
}

// NewInstruments creates carcheck's tracer and counters.
func NewInstruments() (*Instruments, error) {
	meter := otel.Meter(InstrumentationName)

	validations, err := meter.Int64Counter("carcheck.validations.total",
		metric.WithDescription("Total number of CAR documents validated"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create validations counter: %w", err)
	}

	violations, err := meter.Int64Counter("carcheck.violations.total",
		metric.WithDescription("Total number of structural violations reported"),
		metric.WithUnit("{violation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create violations counter: %w", err)
	}

	return &Instruments{
		tracer:      otel.Tracer(InstrumentationName),
		validations: validations,
		violations:  violations,
	}, nil
}

// StartValidation opens the span for one validation run.
func (i *Instruments) StartValidation(ctx context.Context, checkID, source string) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, "carcheck.validate",
		trace.WithAttributes(
			attribute.String("carcheck.check_id", checkID),
			attribute.String("carcheck.source", source),
		),
	)
}

// RecordResult counts the run and its violations and closes out span status.
func (i *Instruments) RecordResult(ctx context.Context, span trace.Span, violations int) {
	passed := violations == 0
	attrs := metric.WithAttributes(attribute.Bool("carcheck.passed", passed))

	i.validations.Add(ctx, 1, attrs)
	if violations > 0 {
		i.violations.Add(ctx, int64(violations))
	}

	span.SetAttributes(
		attribute.Int("carcheck.violations", violations),
		attribute.Bool("carcheck.passed", passed),
	)
	if !passed {
		span.SetStatus(codes.Error, "structural violations")
	}
}

// RecordInputError marks the span failed before validation ran.
func (i *Instruments) RecordInputError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "input error")
}
