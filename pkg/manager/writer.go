package manager

import (
	"context"
	"errors"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	llamachat "github.com/mutablelogic/go-llamachat"
	llamacpp "github.com/mutablelogic/go-llamachat/pkg/llamacpp"
	sampler "github.com/mutablelogic/go-llamachat/pkg/sampler"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	session "github.com/mutablelogic/go-llamachat/pkg/session"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Write replaces the writer document with prompt and appends a
// continuation of at most config.MaxTokens tokens, generated by the server
// on port. The document is passed to fn as it changes, and once more when
// generation has ended. Text is never rolled back: on failure the
// document keeps whatever was generated, a warning is sent to the
// notifier and the error is returned. If the server is not ready, the
// document is left unchanged.
func (m *Manager) Write(ctx context.Context, port uint16, config sampler.Config, prompt string, fn TextFn) (err error) {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := config.ValidateMaxTokens(); err != nil {
		return err
	}
	if err := m.session.Acquire(); err != nil {
		return err
	}
	defer m.session.Release()

	// Otel span
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "Write",
		attribute.Int("port", int(port)),
		attribute.Bool("stream", config.Stream),
		attribute.Int("max_tokens", config.MaxTokens),
	)
	defer func() { endSpan(err) }()

	// The task is live for as long as the session is busy, so Stop also
	// interrupts the health check
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	task := session.NewTask(cancel)
	m.session.StartTask(task)
	defer m.session.EndTask()

	// Check the server is ready. The document is unchanged if not.
	document := m.session.Document()
	client, err := m.client(port)
	if err != nil {
		return m.writeFailed(ctx, port, err)
	}
	if err := m.health(ctx, client, port); task.Stopped() {
		return m.writeStopped(ctx)
	} else if err != nil {
		m.metrics.generation(ctx, modeWriter, outcomeError)
		return err
	}

	// The prompt is the start of the document
	document.Set(prompt)
	emit := func() {
		if fn != nil {
			fn(document.String())
		}
	}
	emit()
	defer emit()
	m.debugf(ctx, "write: busy port=%d stream=%v", port, config.Stream)

	payload := config.Payload(map[string]any{
		"prompt":    prompt,
		"n_predict": config.MaxTokens,
	})

	// Generate the continuation
	if config.Stream {
		err = m.writeStream(ctx, task, client, payload, document, emit)
	} else {
		err = m.writeComplete(ctx, task, client, payload, document)
	}

	// Stopped by the user
	if task.Stopped() || errors.Is(err, llamachat.ErrCancelled) {
		return m.writeStopped(ctx)
	} else if err != nil {
		return m.writeFailed(ctx, port, err)
	}

	// Return success
	m.debugf(ctx, "write: idle")
	m.metrics.generation(ctx, modeWriter, outcomeOK)
	return nil
}

// ClearWriter empties the writer document. Returns ErrBusy while a
// generation is in progress.
func (m *Manager) ClearWriter() error {
	if err := m.session.Acquire(); err != nil {
		return err
	}
	defer m.session.Release()
	m.session.Document().Clear()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (m *Manager) writeComplete(ctx context.Context, task *session.Task, client Client, payload map[string]any, document *schema.Document) error {
	completion, err := client.Complete(ctx, llamacpp.PathCompletion, payload)
	if task.Stopped() {
		return llamachat.ErrCancelled
	} else if err != nil {
		return err
	}
	document.Append(completion.Content)
	return nil
}

func (m *Manager) writeStream(ctx context.Context, task *session.Task, client Client, payload map[string]any, document *schema.Document, emit func()) error {
	for event, err := range client.Stream(ctx, llamacpp.PathCompletion, payload) {
		if task.Stopped() {
			return llamachat.ErrCancelled
		} else if err != nil {
			return err
		}
		switch event.Type {
		case schema.EventText:
			document.Append(event.Text)
			m.metrics.delta(ctx, modeWriter)
			emit()
		case schema.EventError:
			return &llamachat.ServerError{Message: event.Message}
		case schema.EventEnd:
			return nil
		}
	}
	if task.Stopped() {
		return llamachat.ErrCancelled
	}
	return nil
}

// writeStopped ends a generation stopped by the user. Text is kept.
func (m *Manager) writeStopped(ctx context.Context) error {
	m.debugf(ctx, "write: stopped")
	m.metrics.generation(ctx, modeWriter, outcomeCancelled)
	return nil
}

// writeFailed sends the warning for err. The document is not changed.
func (m *Manager) writeFailed(ctx context.Context, port uint16, err error) error {
	m.metrics.generation(ctx, modeWriter, outcomeError)
	if errors.Is(err, llamachat.ErrConnection) {
		m.warn(ctx, NewWarning(WarningConnection, port))
	} else {
		m.warn(ctx, NewWarning(WarningGeneric))
	}
	m.printf(ctx, "write: %v", err)
	return err
}
