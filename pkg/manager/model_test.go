package manager

import (
	"context"
	"testing"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func Test_model_001(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t, &mockClient{})
	assert.True(h.CheckHealth(context.Background(), 8080))
	assert.Empty(h.warnings)

	h.client.healthErr = llamachat.ErrConnection
	assert.False(h.CheckHealth(context.Background(), 8080))
	if assert.Len(h.warnings, 1) {
		assert.Equal("Could not connect to language model server at port 8080.", h.warnings[0].Message)
	}
}

func Test_model_002(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t, &mockClient{
		props: &schema.Props{Modalities: schema.Modalities{Vision: true}},
	})

	modalities, extensions, err := h.RefreshModelInfo(context.Background(), 8080)
	assert.NoError(err)
	assert.True(modalities.Vision)
	assert.False(modalities.Audio)
	assert.Contains(extensions, ".png")
	assert.NotContains(extensions, ".wav")
	assert.True(h.session.Modalities().Vision)
}

func Test_model_003(t *testing.T) {
	assert := assert.New(t)
	h := newHarness(t, &mockClient{
		props: &schema.Props{Modalities: schema.Modalities{Audio: true}},
	})
	_, _, err := h.RefreshModelInfo(context.Background(), 8080)
	assert.NoError(err)

	// The last known modalities are kept on failure
	h.client.propsErr = llamachat.ErrConnection
	modalities, extensions, err := h.RefreshModelInfo(context.Background(), 8080)
	assert.ErrorIs(err, llamachat.ErrConnection)
	assert.True(modalities.Audio)
	assert.Equal(schema.TextExtensions, extensions)
	assert.NotContains(extensions, ".mp3")
	assert.Len(h.warnings, 1)

	h.client.propsErr = nil
	h.client.healthErr = llamachat.ErrConnection
	modalities, _, err = h.RefreshModelInfo(context.Background(), 8080)
	assert.Error(err)
	assert.True(modalities.Audio)
	assert.Len(h.warnings, 2)
}
