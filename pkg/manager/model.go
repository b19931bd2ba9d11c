package manager

import (
	"context"
	"errors"
	"slices"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llamachat "github.com/mutablelogic/go-llamachat"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// CheckHealth returns true if the server on port is ready. A connection
// warning is sent to the notifier otherwise.
func (m *Manager) CheckHealth(ctx context.Context, port uint16) bool {
	var err error
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "CheckHealth",
		attribute.Int("port", int(port)),
	)
	defer func() { endSpan(err) }()

	client, err := m.client(port)
	if err != nil {
		m.warn(ctx, NewWarning(WarningConnection, port))
		return false
	}
	err = m.health(ctx, client, port)
	return err == nil
}

// RefreshModelInfo reads the modalities of the model loaded by the server
// on port, and returns the file extensions which may be attached. On
// failure the last known modalities are kept, only text extensions are
// returned and a connection warning is sent to the notifier.
func (m *Manager) RefreshModelInfo(ctx context.Context, port uint16) (_ schema.Modalities, _ []string, err error) {
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "RefreshModelInfo",
		attribute.Int("port", int(port)),
	)
	defer func() { endSpan(err) }()

	client, err := m.client(port)
	if err == nil {
		err = m.health(ctx, client, port)
	} else {
		m.warn(ctx, NewWarning(WarningConnection, port))
	}
	if err == nil {
		var props *schema.Props
		if props, err = client.Props(ctx); err == nil {
			m.session.SetModalities(props.Modalities)
			m.debugf(ctx, "model: %q modalities=%+v", props.ModelPath, props.Modalities)
		} else {
			m.warn(ctx, NewWarning(WarningConnection, port))
		}
	}

	// Only text files may be attached until the model has been read
	modalities := m.session.Modalities()
	if err != nil {
		return modalities, slices.Clone(schema.TextExtensions), err
	}
	return modalities, schema.AllowedExtensions(modalities), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// health checks the server is ready, and sends a connection warning if not.
// A cancelled check is not reported.
func (m *Manager) health(ctx context.Context, client Client, port uint16) error {
	if err := client.Health(ctx); err != nil {
		m.debugf(ctx, "health: port=%d: %v", port, err)
		if !errors.Is(err, llamachat.ErrCancelled) {
			m.warn(ctx, NewWarning(WarningConnection, port))
		}
		return err
	}
	return nil
}
