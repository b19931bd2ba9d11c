package manager

import (
	"context"
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// WarningKind classifies a user-facing warning
type WarningKind int

// Warning is a non-fatal message for the user
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

// NotifyFn receives user-facing warnings
type NotifyFn func(Warning)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	WarningGeneric WarningKind = iota
	WarningConnection
	WarningTruncated
	WarningNoContextShift
	WarningInvalidMedia
	WarningImageUnsupported
	WarningAudioUnsupported
)

// Messages reported by the llama.cpp server
const (
	ServerErrorNoContextShift        = "the request exceeds the available context size. try increasing the context size or enable context shift"
	ServerErrorInvalidMedia          = "Failed to load image or audio file"
	ServerErrorImageInputUnsupported = "image input is not supported - hint: if this is unexpected, you may need to provide the mmproj"
	ServerErrorAudioInputUnsupported = "audio input is not supported - hint: if this is unexpected, you may need to provide the mmproj"
)

var warningMessages = map[WarningKind]string{
	WarningGeneric:          "An error occurred.",
	WarningConnection:       "Could not connect to language model server at port %d.",
	WarningTruncated:        "The model's message was cut off because Context Shift is disabled.",
	WarningNoContextShift:   "Your message could not be sent because Context Shift is disabled.",
	WarningInvalidMedia:     "The image or audio file(s) you sent are unviewable.",
	WarningImageUnsupported: "The currently running model cannot see images. You may need to refresh the model info or reload llama.cpp with the multimodal projector.",
	WarningAudioUnsupported: "The currently running model cannot hear audio. You may need to refresh the model info or reload llama.cpp with the multimodal projector.",
}

// serverErrors maps server messages to warnings. Matching on the wording
// of server messages is fragile, and should be replaced with error codes
// if the server provides them.
var serverErrors = []struct {
	message string
	kind    WarningKind
}{
	{ServerErrorNoContextShift, WarningNoContextShift},
	{ServerErrorInvalidMedia, WarningInvalidMedia},
	{ServerErrorImageInputUnsupported, WarningImageUnsupported},
	{ServerErrorAudioInputUnsupported, WarningAudioUnsupported},
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewWarning returns a warning of the given kind. The connection warning
// takes the port as an argument.
func NewWarning(kind WarningKind, args ...any) Warning {
	format, exists := warningMessages[kind]
	if !exists {
		kind, format = WarningGeneric, warningMessages[WarningGeneric]
	}
	if len(args) > 0 {
		return Warning{Kind: kind, Message: fmt.Sprintf(format, args...)}
	}
	return Warning{Kind: kind, Message: format}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (w Warning) String() string {
	return w.Message
}

func (k WarningKind) String() string {
	switch k {
	case WarningGeneric:
		return "generic"
	case WarningConnection:
		return "connection"
	case WarningTruncated:
		return "truncated"
	case WarningNoContextShift:
		return "no_context_shift"
	case WarningInvalidMedia:
		return "invalid_media"
	case WarningImageUnsupported:
		return "image_unsupported"
	case WarningAudioUnsupported:
		return "audio_unsupported"
	default:
		return fmt.Sprint(int(k))
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ServerWarningKind returns the warning for a message reported by the
// server. An exact match is preferred, then a message which contains one
// of the known messages. Unknown messages are generic.
func ServerWarningKind(message string) WarningKind {
	for _, candidate := range serverErrors {
		if message == candidate.message {
			return candidate.kind
		}
	}
	for _, candidate := range serverErrors {
		if strings.Contains(message, candidate.message) {
			return candidate.kind
		}
	}
	return WarningGeneric
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (m *Manager) warn(ctx context.Context, warning Warning) {
	m.debugf(ctx, "warning kind=%v message=%q", warning.Kind, warning.Message)
	if m.notify != nil {
		m.notify(warning)
	}
}
