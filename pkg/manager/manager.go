/*
manager implements the generation controller: it turns user submissions into
requests against a llama.cpp server, reconciles streamed deltas into the
session transcript and recovers from failures by rolling back the exchange
and notifying the user.
*/
package manager

import (
	"context"
	"iter"
	"slices"
	"sync"

	// Packages
	client "github.com/mutablelogic/go-client"
	llamachat "github.com/mutablelogic/go-llamachat"
	llamacpp "github.com/mutablelogic/go-llamachat/pkg/llamacpp"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	session "github.com/mutablelogic/go-llamachat/pkg/session"
	metric "go.opentelemetry.io/otel/metric"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACE

// Client is the inference server consumed by the manager
type Client interface {
	// Health returns nil when the server is ready
	Health(ctx context.Context) error

	// Props returns the server properties
	Props(ctx context.Context) (*schema.Props, error)

	// Complete sends a non-streaming completion request
	Complete(ctx context.Context, path string, payload map[string]any) (*schema.Completion, error)

	// Stream sends a streaming completion request
	Stream(ctx context.Context, path string, payload map[string]any) iter.Seq2[schema.Event, error]
}

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ClientFactory returns the client for a server listening on port
type ClientFactory func(port uint16) (Client, error)

// ConversationFn receives a snapshot of the conversation as it changes
type ConversationFn func(schema.Conversation)

// TextFn receives the writer document as it changes
type TextFn func(string)

type Manager struct {
	session    *session.Session
	factory    ClientFactory
	clientOpts []client.ClientOpt
	notify     NotifyFn
	logger     llamachat.Logger
	tracer     trace.Tracer
	meter      metric.Meter
	metrics    *metrics

	mu      sync.Mutex
	clients map[uint16]Client
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a manager with an empty session, creating llama.cpp clients
// on demand for each port
func New(opts ...Opt) (*Manager, error) {
	m := &Manager{
		session: session.New(),
		clients: make(map[uint16]Client),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	// Default client factory
	if m.factory == nil {
		m.factory = m.newClient
	}

	// Metrics
	if metrics, err := newMetrics(m.meter); err != nil {
		return nil, err
	} else {
		m.metrics = metrics
	}

	// Return success
	return m, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Session returns the session owned by the manager
func (m *Manager) Session() *session.Session {
	return m.session
}

// Busy returns true while a generation is in progress
func (m *Manager) Busy() bool {
	return m.session.Busy()
}

// Stop requests the generation in progress to stop. Returns false if
// there was nothing to stop.
func (m *Manager) Stop() bool {
	stopped := m.session.Stop()
	if stopped {
		m.debugf(context.Background(), "stop requested")
	}
	return stopped
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// client returns a cached client for port
func (m *Manager) client(port uint16) (Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if client, exists := m.clients[port]; exists {
		return client, nil
	}
	client, err := m.factory(port)
	if err != nil {
		return nil, err
	}
	m.clients[port] = client
	return client, nil
}

// newClient is the default client factory
func (m *Manager) newClient(port uint16) (Client, error) {
	opts := slices.Clone(m.clientOpts)
	if m.tracer != nil {
		opts = append(opts, client.OptTracer(m.tracer))
	}
	client, err := llamacpp.NewWithPort(port, opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// snapshot passes a copy of the conversation to fn
func (m *Manager) snapshot(fn ConversationFn) {
	if fn != nil {
		fn(m.session.Conversation().Clone())
	}
}

func (m *Manager) debugf(ctx context.Context, format string, args ...any) {
	if m.logger != nil {
		m.logger.Debugf(ctx, format, args...)
	}
}

func (m *Manager) printf(ctx context.Context, format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(ctx, format, args...)
	}
}
