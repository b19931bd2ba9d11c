package manager

import (
	"context"

	// Packages
	otelglobal "go.opentelemetry.io/otel"
	attribute "go.opentelemetry.io/otel/attribute"
	metric "go.opentelemetry.io/otel/metric"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type metrics struct {
	generations metric.Int64Counter
	deltas      metric.Int64Counter
}

type mode string
type outcome string

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	meterName = "github.com/mutablelogic/go-llamachat/pkg/manager"
)

const (
	modeChat   mode = "chat"
	modeWriter mode = "writer"
)

const (
	outcomeOK        outcome = "ok"
	outcomeCancelled outcome = "cancelled"
	outcomeRollback  outcome = "rollback"
	outcomeError     outcome = "error"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newMetrics(meter metric.Meter) (*metrics, error) {
	if meter == nil {
		meter = otelglobal.Meter(meterName)
	}

	generations, err := meter.Int64Counter("llamachat.generations",
		metric.WithDescription("Number of completed generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}
	deltas, err := meter.Int64Counter("llamachat.deltas",
		metric.WithDescription("Number of streamed text deltas"),
		metric.WithUnit("{delta}"),
	)
	if err != nil {
		return nil, err
	}

	return &metrics{generations, deltas}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (m *metrics) generation(ctx context.Context, mode mode, outcome outcome) {
	m.generations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", string(mode)),
		attribute.String("outcome", string(outcome)),
	))
}

func (m *metrics) delta(ctx context.Context, mode mode) {
	m.deltas.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", string(mode)),
	))
}
