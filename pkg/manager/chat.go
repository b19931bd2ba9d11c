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

// SubmitUserMessage appends a user turn to the conversation and returns a
// snapshot. Empty messages and too many attachments are rejected even
// while a generation is in progress; otherwise ErrBusy is returned while
// busy.
func (m *Manager) SubmitUserMessage(text string, attachments []string, systemPrompt string) (schema.Conversation, error) {
	if err := schema.ValidateUserTurn(text, attachments); err != nil {
		return nil, err
	}
	if err := m.session.Acquire(); err != nil {
		return nil, err
	}
	defer m.session.Release()

	conversation := m.session.Conversation()
	if err := conversation.AppendUserTurn(text, attachments, systemPrompt); err != nil {
		return nil, err
	}
	return conversation.Clone(), nil
}

// Chat generates the assistant reply to the last user turn, using the
// server on port. Snapshots of the conversation are passed to fn as the
// reply is generated, and once more when generation has ended. On failure
// the exchange is rolled back, a warning is sent to the notifier and the
// error is returned. A stopped generation is not an error: streamed output
// received before the stop is kept, a non-streaming reply is rolled back.
func (m *Manager) Chat(ctx context.Context, port uint16, config sampler.Config, fn ConversationFn) (err error) {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := m.session.Acquire(); err != nil {
		return err
	}
	defer m.session.Release()

	// Otel span
	ctx, endSpan := otel.StartSpan(m.tracer, ctx, "Chat",
		attribute.Int("port", int(port)),
		attribute.Bool("stream", config.Stream),
	)
	defer func() { endSpan(err) }()

	// The conversation must end with a user turn
	conversation := m.session.Conversation()
	if last := conversation.Last(); last == nil || last.Role != schema.RoleUser {
		return llamachat.ErrBadParameter.With("conversation does not end with a user message")
	}

	// Append the placeholder reply, and emit the final state on return
	reply := conversation.AppendEmptyAssistantTurn()
	m.snapshot(fn)
	defer m.snapshot(fn)
	m.debugf(ctx, "chat: busy port=%d stream=%v", port, config.Stream)

	// The task is live for as long as the session is busy, so Stop also
	// interrupts the health check
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	task := session.NewTask(cancel)
	m.session.StartTask(task)
	defer m.session.EndTask()

	// Check the server is ready
	client, err := m.client(port)
	if err != nil {
		return m.chatFailed(ctx, port, err)
	}
	if err := m.health(ctx, client, port); task.Stopped() {
		return m.chatStopped(ctx, true)
	} else if err != nil {
		m.rollback(ctx)
		m.metrics.generation(ctx, modeChat, outcomeRollback)
		return err
	}

	// Serialize the conversation, excluding the placeholder
	messages, err := (*conversation)[:len(*conversation)-1].WireMessages()
	if err != nil {
		return m.chatFailed(ctx, port, err)
	}
	payload := config.Payload(map[string]any{
		"messages": messages,
	})
	if task.Stopped() {
		return m.chatStopped(ctx, true)
	}

	// Generate the reply
	if config.Stream {
		err = m.chatStream(ctx, task, client, payload, reply, fn)
	} else {
		err = m.chatComplete(ctx, task, client, payload, reply)
	}

	// Stopped by the user: streamed output is kept
	if task.Stopped() || errors.Is(err, llamachat.ErrCancelled) {
		return m.chatStopped(ctx, !config.Stream)
	} else if err != nil {
		return m.chatFailed(ctx, port, err)
	}

	// Return success
	m.debugf(ctx, "chat: idle")
	m.metrics.generation(ctx, modeChat, outcomeOK)
	return nil
}

// RetryLastReply removes the last assistant reply so that it can be
// generated again with Chat
func (m *Manager) RetryLastReply() (schema.Conversation, error) {
	if err := m.session.Acquire(); err != nil {
		return nil, err
	}
	defer m.session.Release()

	conversation := m.session.Conversation()
	if conversation.PopLastAssistantTurn() == nil {
		return nil, llamachat.ErrBadParameter.With("no reply to retry")
	}
	return conversation.Clone(), nil
}

// Undo removes the last exchange and returns the text of the removed user
// message, so that it can be edited and sent again
func (m *Manager) Undo() (string, schema.Conversation, error) {
	if err := m.session.Acquire(); err != nil {
		return "", nil, err
	}
	defer m.session.Release()

	conversation := m.session.Conversation()
	removed := conversation.RollbackToLastUserBoundary()
	if len(removed) == 0 {
		return "", nil, llamachat.ErrNotFound.With("nothing to undo")
	}

	// Find the text of the user message
	var text string
	for _, message := range removed {
		if message.Role == schema.RoleUser && message.Attachment == nil {
			text = message.Content()
		}
	}
	return text, conversation.Clone(), nil
}

// Clear removes all messages from the conversation. Returns ErrBusy while a
// generation is in progress.
func (m *Manager) Clear() error {
	if err := m.session.Acquire(); err != nil {
		return err
	}
	defer m.session.Release()
	m.session.Conversation().Clear()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// chatComplete requests the whole reply at once. The request is cancelled
// by Stop.
func (m *Manager) chatComplete(ctx context.Context, task *session.Task, client Client, payload map[string]any, reply *schema.Message) error {
	completion, err := client.Complete(ctx, llamacpp.PathChatCompletions, payload)
	if task.Stopped() {
		return llamachat.ErrCancelled
	} else if err != nil {
		return err
	}

	reply.SetText(completion.Content)
	if completion.FinishReason == schema.FinishReasonLength {
		m.warn(ctx, NewWarning(WarningTruncated))
	}
	return nil
}

// chatStream appends each delta to the reply and emits a snapshot. The
// stop flag is polled before each event, so the reply holds exactly the
// deltas received before Stop.
func (m *Manager) chatStream(ctx context.Context, task *session.Task, client Client, payload map[string]any, reply *schema.Message, fn ConversationFn) error {
	for event, err := range client.Stream(ctx, llamacpp.PathChatCompletions, payload) {
		if task.Stopped() {
			return llamachat.ErrCancelled
		} else if err != nil {
			return err
		}
		switch event.Type {
		case schema.EventText:
			reply.AppendText(event.Text)
			m.metrics.delta(ctx, modeChat)
			m.snapshot(fn)
		case schema.EventFinish:
			if event.Reason == schema.FinishReasonLength {
				m.warn(ctx, NewWarning(WarningTruncated))
			}
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

// chatStopped ends a generation stopped by the user, rolling back the
// exchange when nothing is kept
func (m *Manager) chatStopped(ctx context.Context, rollback bool) error {
	if rollback {
		m.rollback(ctx)
	}
	m.debugf(ctx, "chat: stopped")
	m.metrics.generation(ctx, modeChat, outcomeCancelled)
	return nil
}

// chatFailed rolls back the exchange and sends the warning for err
func (m *Manager) chatFailed(ctx context.Context, port uint16, err error) error {
	m.rollback(ctx)
	m.metrics.generation(ctx, modeChat, outcomeRollback)
	switch {
	case errors.Is(err, llamachat.ErrServer):
		m.warn(ctx, NewWarning(ServerWarningKind(llamachat.ServerMessage(err))))
	case errors.Is(err, llamachat.ErrConnection):
		m.warn(ctx, NewWarning(WarningConnection, port))
	default:
		m.warn(ctx, NewWarning(WarningGeneric))
	}
	m.printf(ctx, "chat: %v", err)
	return err
}

// rollback removes the last exchange
func (m *Manager) rollback(ctx context.Context) {
	removed := m.session.Conversation().RollbackToLastUserBoundary()
	m.debugf(ctx, "chat: rolled back %d message(s)", len(removed))
}
