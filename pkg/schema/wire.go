package schema

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// WireMessage is a message in the chat completions request format. Content
// is either a string or a slice of ContentPart.
type WireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is a typed media part of a message
type ContentPart struct {
	Type       string      `json:"type"`
	ImageURL   *ImageURL   `json:"image_url,omitempty"`
	InputAudio *InputAudio `json:"input_audio,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ContentTypeImageURL   = "image_url"
	ContentTypeInputAudio = "input_audio"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// WireMessages converts the conversation into request messages. A blank
// system message is omitted, attachments are read from disk and files with
// an unsupported extension are skipped.
func (c Conversation) WireMessages() ([]WireMessage, error) {
	result := make([]WireMessage, 0, len(c))
	for _, message := range c {
		if message.Attachment == nil {
			if message.Role == RoleSystem && message.IsBlank() {
				continue
			}
			result = append(result, WireMessage{Role: message.Role, Content: message.Content()})
			continue
		}
		wire, err := message.Attachment.wireContent()
		if err != nil {
			return nil, err
		} else if wire == nil {
			continue
		}
		result = append(result, WireMessage{Role: message.Role, Content: wire})
	}
	return result, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// wireContent returns nil when the attachment kind is unsupported
func (a Attachment) wireContent() (any, error) {
	kind := a.Kind()
	if kind == KindUnsupported {
		return nil, nil
	}

	data, err := os.ReadFile(a.Path)
	if err != nil {
		return nil, err
	}

	ext := strings.TrimPrefix(a.Ext(), ".")
	switch kind {
	case KindText:
		return fmt.Sprintf("`%s`:\n\n```\n%s\n```", a.Name, string(data)), nil
	case KindImage:
		return []ContentPart{{
			Type: ContentTypeImageURL,
			ImageURL: &ImageURL{
				URL: "data:image/" + ext + ";base64," + base64.StdEncoding.EncodeToString(data),
			},
		}}, nil
	case KindAudio:
		return []ContentPart{{
			Type: ContentTypeInputAudio,
			InputAudio: &InputAudio{
				Data:   base64.StdEncoding.EncodeToString(data),
				Format: ext,
			},
		}}, nil
	}
	return nil, nil
}
