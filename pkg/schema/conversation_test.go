package schema_test

import (
	"testing"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func TestValidateUserTurn_Empty(t *testing.T) {
	assert := assert.New(t)
	assert.ErrorIs(schema.ValidateUserTurn("", nil), llamachat.ErrEmptyMessage)
	assert.ErrorIs(schema.ValidateUserTurn("  \n\t", nil), llamachat.ErrEmptyMessage)
	assert.NoError(schema.ValidateUserTurn("", []string{"a.txt"}))
	assert.NoError(schema.ValidateUserTurn("hello", nil))
}

func TestValidateUserTurn_TooManyAttachments(t *testing.T) {
	assert := assert.New(t)
	assert.NoError(schema.ValidateUserTurn("hi", []string{"a.txt", "b.txt", "c.txt"}))
	assert.ErrorIs(schema.ValidateUserTurn("hi", []string{"a.txt", "b.txt", "c.txt", "d.txt"}), llamachat.ErrTooManyAttachments)
}

func TestAppendUserTurn_CreatesSystem(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("hello", nil, "be brief"))
	assert.Len(c, 2)
	assert.Equal(schema.RoleSystem, c[0].Role)
	assert.Equal("be brief", c[0].Content())
	assert.Equal(schema.RoleUser, c[1].Role)
	assert.Equal("hello", c[1].Content())
}

func TestAppendUserTurn_OverwritesSystem(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("one", nil, "first"))
	c.AppendEmptyAssistantTurn().SetText("reply")
	assert.NoError(c.AppendUserTurn("two", nil, "second"))
	assert.Len(c, 4)
	assert.Equal("second", c[0].Content())
	assert.Equal(1, countRole(c, schema.RoleSystem))
}

func TestAppendUserTurn_AttachmentsPrecedeText(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("describe", []string{"/tmp/a.png", "/tmp/b.txt"}, ""))
	assert.Len(c, 4)
	assert.NotNil(c[1].Attachment)
	assert.Equal("a.png", c[1].Attachment.Name)
	assert.NotNil(c[2].Attachment)
	assert.Equal("b.txt", c[2].Attachment.Name)
	assert.Nil(c[3].Attachment)
	assert.Equal("describe", c[3].Content())
}

func TestAppendUserTurn_Invalid(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.ErrorIs(c.AppendUserTurn(" ", nil, "sys"), llamachat.ErrEmptyMessage)
	assert.Len(c, 0)
}

func TestRollback_FirstExchange(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("hello", nil, "sys"))
	c.AppendEmptyAssistantTurn()

	removed := c.RollbackToLastUserBoundary()
	assert.Len(removed, 3)
	assert.Len(c, 0)
}

func TestRollback_LaterExchange(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("one", nil, "sys"))
	c.AppendEmptyAssistantTurn().SetText("first reply")
	assert.NoError(c.AppendUserTurn("two", []string{"x.txt"}, "sys"))
	c.AppendEmptyAssistantTurn()

	removed := c.RollbackToLastUserBoundary()
	assert.Len(removed, 3)
	assert.Equal("x.txt", removed[0].Attachment.Name)
	assert.Equal("two", removed[1].Content())
	assert.Equal(schema.RoleAssistant, removed[2].Role)

	assert.Len(c, 3)
	assert.Equal("first reply", c.Last().Content())
}

func TestRollback_WithoutPlaceholder(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("one", nil, "sys"))
	c.AppendEmptyAssistantTurn().SetText("first reply")
	assert.NoError(c.AppendUserTurn("two", nil, "sys"))

	removed := c.RollbackToLastUserBoundary()
	assert.Len(removed, 1)
	assert.Len(c, 3)
	assert.Equal(schema.RoleAssistant, c.Last().Role)
}

func TestRollback_Empty(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.Nil(c.RollbackToLastUserBoundary())
	assert.Len(c, 0)
}

func TestPopLastAssistantTurn(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.Nil(c.PopLastAssistantTurn())

	assert.NoError(c.AppendUserTurn("one", nil, "sys"))
	assert.Nil(c.PopLastAssistantTurn())
	assert.Len(c, 2)

	c.AppendEmptyAssistantTurn().SetText("reply")
	message := c.PopLastAssistantTurn()
	assert.NotNil(message)
	assert.Equal("reply", message.Content())
	assert.Len(c, 2)
}

func TestConversationClone(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("one", nil, "sys"))
	reply := c.AppendEmptyAssistantTurn()

	clone := c.Clone()
	reply.AppendText("later")
	assert.Equal("", clone.Last().Content())
	assert.Equal("later", c.Last().Content())
	assert.Equal(reply.ID, clone.Last().ID)
}

func TestConversationClear(t *testing.T) {
	assert := assert.New(t)

	var c schema.Conversation
	assert.NoError(c.AppendUserTurn("one", nil, "sys"))
	c.Clear()
	assert.Len(c, 0)
	assert.Nil(c.Last())
}

func countRole(c schema.Conversation, role string) int {
	n := 0
	for _, message := range c {
		if message.Role == role {
			n++
		}
	}
	return n
}
