package schema

import (
	"strings"

	// Packages
	uuid "github.com/google/uuid"
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is a single entry in a conversation. Exactly one of Text or
// Attachment is set.
type Message struct {
	ID         string         `json:"id"`
	Role       string         `json:"role"`                 // "system", "user" or "assistant"
	Text       *string        `json:"text,omitempty"`       // Text content
	Attachment *Attachment    `json:"attachment,omitempty"` // File content
	Meta       map[string]any `json:"meta,omitzero"`        // Collaborator-specific metadata
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewMessage returns a text message with the given role
func NewMessage(role, text string) *Message {
	return &Message{
		ID:   uuid.New().String(),
		Role: role,
		Text: types.Ptr(text),
	}
}

// NewAttachmentMessage returns a user message which carries a file
func NewAttachmentMessage(path string) *Message {
	return &Message{
		ID:         uuid.New().String(),
		Role:       RoleUser,
		Attachment: NewAttachment(path),
	}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Message) String() string {
	return stringify(m)
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Content returns the text content of the message, or an empty string for
// attachments
func (m *Message) Content() string {
	if m.Text == nil {
		return ""
	}
	return *m.Text
}

// SetText replaces the content of the message with text
func (m *Message) SetText(text string) {
	m.Attachment = nil
	m.Text = types.Ptr(text)
}

// AppendText appends text to the content of the message
func (m *Message) AppendText(text string) {
	m.SetText(m.Content() + text)
}

// IsBlank returns true for a text message with only whitespace content
func (m *Message) IsBlank() bool {
	return m.Attachment == nil && strings.TrimSpace(m.Content()) == ""
}

// Clone returns a deep copy of the message
func (m *Message) Clone() *Message {
	clone := &Message{
		ID:   m.ID,
		Role: m.Role,
	}
	if m.Text != nil {
		clone.Text = types.Ptr(*m.Text)
	}
	if m.Attachment != nil {
		clone.Attachment = types.Ptr(*m.Attachment)
	}
	if m.Meta != nil {
		clone.Meta = make(map[string]any, len(m.Meta))
		for k, v := range m.Meta {
			clone.Meta[k] = v
		}
	}
	return clone
}
