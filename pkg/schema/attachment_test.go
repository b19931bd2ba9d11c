package schema_test

import (
	"testing"

	// Packages
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		path string
		kind schema.Kind
	}{
		{"main.go", schema.KindText},
		{"README.md", schema.KindText},
		{"boot.SRC", schema.KindText},
		{"photo.JPG", schema.KindImage},
		{"photo.webp", schema.KindImage},
		{"song.mp3", schema.KindAudio},
		{"archive.zip", schema.KindUnsupported},
		{"Makefile", schema.KindUnsupported},
	}
	for _, test := range tests {
		assert.Equal(test.kind, schema.KindOf(test.path), test.path)
	}
}

func TestNewAttachment(t *testing.T) {
	assert := assert.New(t)

	attachment := schema.NewAttachment("/home/user/photo.png")
	assert.Equal("photo.png", attachment.Name)
	assert.Equal(".png", attachment.Ext())
	assert.Equal(schema.KindImage, attachment.Kind())
	assert.Equal("image", attachment.Kind().String())
}

func TestAllowedExtensions(t *testing.T) {
	assert := assert.New(t)

	text := schema.AllowedExtensions(schema.Modalities{})
	assert.Contains(text, ".txt")
	assert.NotContains(text, ".png")
	assert.NotContains(text, ".wav")

	vision := schema.AllowedExtensions(schema.Modalities{Vision: true})
	assert.Contains(vision, ".png")
	assert.NotContains(vision, ".wav")

	all := schema.AllowedExtensions(schema.Modalities{Vision: true, Audio: true})
	assert.Contains(all, ".jpeg")
	assert.Contains(all, ".mp3")
	assert.Equal(len(schema.TextExtensions)+len(schema.ImageExtensions)+len(schema.AudioExtensions), len(all))
}
