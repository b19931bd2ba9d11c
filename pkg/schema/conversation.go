package schema

import (
	"strings"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Conversation is the ordered transcript of messages. When not empty, the
// first message is always the system message.
type Conversation []*Message

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// MaxAttachments is the maximum number of files sent with a single message
	MaxAttachments = 3
)

// ExamplePrompts can be offered to the user when the conversation is empty
var ExamplePrompts = []string{
	"Explain quantum computing in simple terms.",
	"Got any creative ideas for a 10-year-old's birthday?",
	"How do I make a HTTP request in JavaScript?",
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c Conversation) String() string {
	return stringify(c)
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ValidateUserTurn returns an error if the text and attachments cannot be
// sent as a user turn
func ValidateUserTurn(text string, attachments []string) error {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return llamachat.ErrEmptyMessage
	}
	if len(attachments) > MaxAttachments {
		return llamachat.ErrTooManyAttachments.Withf("cannot send more than %d files", MaxAttachments)
	}
	return nil
}

// AppendUserTurn appends the attachments and then the text as user messages.
// The system message is created if the conversation is empty, otherwise its
// content is replaced with systemPrompt.
func (c *Conversation) AppendUserTurn(text string, attachments []string, systemPrompt string) error {
	if err := ValidateUserTurn(text, attachments); err != nil {
		return err
	}

	// Create or overwrite the system message
	if len(*c) == 0 {
		*c = append(*c, NewMessage(RoleSystem, systemPrompt))
	} else {
		(*c)[0].SetText(systemPrompt)
	}

	// Attachments precede the text
	for _, path := range attachments {
		*c = append(*c, NewAttachmentMessage(path))
	}
	*c = append(*c, NewMessage(RoleUser, text))

	// Return success
	return nil
}

// AppendEmptyAssistantTurn appends an assistant message with empty content
// and returns it, so it can be filled as the reply is generated
func (c *Conversation) AppendEmptyAssistantTurn() *Message {
	message := NewMessage(RoleAssistant, "")
	*c = append(*c, message)
	return message
}

// RollbackToLastUserBoundary removes the last message and then every message
// before it back to the previous assistant message, deleting the last
// exchange. The removed messages are returned in their original order.
func (c *Conversation) RollbackToLastUserBoundary() Conversation {
	n := len(*c)
	if n == 0 {
		return nil
	}

	// Remove the last message, then walk back to the previous assistant reply
	i := n - 1
	for i > 0 && (*c)[i-1].Role != RoleAssistant {
		i--
	}

	removed := make(Conversation, n-i)
	copy(removed, (*c)[i:])
	*c = (*c)[:i]
	return removed
}

// PopLastAssistantTurn removes and returns the last message, which is
// expected to be an assistant reply. Returns nil if the conversation does
// not end with an assistant message.
func (c *Conversation) PopLastAssistantTurn() *Message {
	last := c.Last()
	if last == nil || last.Role != RoleAssistant {
		return nil
	}
	*c = (*c)[:len(*c)-1]
	return last
}

// Last returns the last message, or nil if the conversation is empty
func (c Conversation) Last() *Message {
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

// Clear removes all messages
func (c *Conversation) Clear() {
	*c = nil
}

// Clone returns a deep copy of the conversation, suitable for handing to
// a collaborator while generation continues to mutate the original
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	clone := make(Conversation, len(c))
	for i, message := range c {
		clone[i] = message.Clone()
	}
	return clone
}
