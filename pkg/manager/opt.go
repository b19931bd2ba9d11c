package manager

import (
	// Packages
	client "github.com/mutablelogic/go-client"
	llamachat "github.com/mutablelogic/go-llamachat"
	session "github.com/mutablelogic/go-llamachat/pkg/session"
	metric "go.opentelemetry.io/otel/metric"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for configuring a manager
type Opt func(*Manager) error

///////////////////////////////////////////////////////////////////////////////
// MANAGER OPTIONS

// WithSession sets the session which holds the transcript. If not set,
// an empty session is created.
func WithSession(session *session.Session) Opt {
	return func(m *Manager) error {
		if session == nil {
			return llamachat.ErrBadParameter.With("session is required")
		}
		m.session = session
		return nil
	}
}

// WithClientFactory sets the function used to create a client for a port.
// If not set, a llama.cpp client on localhost is created.
func WithClientFactory(factory ClientFactory) Opt {
	return func(m *Manager) error {
		if factory == nil {
			return llamachat.ErrBadParameter.With("client factory is required")
		}
		m.factory = factory
		return nil
	}
}

// WithClientOpts sets options for the default client factory
func WithClientOpts(opts ...client.ClientOpt) Opt {
	return func(m *Manager) error {
		m.clientOpts = append(m.clientOpts, opts...)
		return nil
	}
}

// WithNotifier sets the function which receives user-facing warnings
func WithNotifier(fn NotifyFn) Opt {
	return func(m *Manager) error {
		m.notify = fn
		return nil
	}
}

// WithLogger sets the logger for state transitions
func WithLogger(logger llamachat.Logger) Opt {
	return func(m *Manager) error {
		m.logger = logger
		return nil
	}
}

// WithTracer sets the tracer for spans around each operation
func WithTracer(tracer trace.Tracer) Opt {
	return func(m *Manager) error {
		m.tracer = tracer
		return nil
	}
}

// WithMeter sets the meter used for generation counters. If not set, the
// global meter provider is used.
func WithMeter(meter metric.Meter) Opt {
	return func(m *Manager) error {
		m.meter = meter
		return nil
	}
}
