package llamacpp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// errorBody is the error object returned by the server, which is either
// {"code":400,"message":"...","type":"..."} or a plain string
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// transportError maps an error from the HTTP transport into an error code
func transportError(err error) error {
	var opErr *net.OpError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return llamachat.ErrCancelled.With(err)
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return llamachat.ErrConnection.With(err)
	default:
		return llamachat.ErrUnknown.With(err)
	}
}

// healthError reports every failure other than cancellation as a
// connection failure
func healthError(err error) error {
	if err := transportError(err); errors.Is(err, llamachat.ErrCancelled) || errors.Is(err, llamachat.ErrConnection) {
		return err
	}
	return llamachat.ErrConnection.With(err)
}

// serverError decodes a raw error value, returning nil if it is absent
func serverError(status int, raw json.RawMessage) *llamachat.ServerError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	// Error object
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Code != 0 {
			status = body.Code
		}
		return &llamachat.ServerError{Status: status, Message: body.Message}
	}

	// Error string
	var message string
	if err := json.Unmarshal(raw, &message); err == nil {
		return &llamachat.ServerError{Status: status, Message: message}
	}

	// Anything else is reported verbatim
	return &llamachat.ServerError{Status: status, Message: strings.TrimSpace(string(raw))}
}

// serverErrorText decodes the text after "error: " on a stream line, which
// is either a JSON error object, an {"error":...} envelope or plain text
func serverErrorText(text string) *llamachat.ServerError {
	text = strings.TrimSpace(text)
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err == nil && len(envelope.Error) > 0 {
		return serverError(0, envelope.Error)
	}
	if strings.HasPrefix(text, "{") {
		var body errorBody
		if err := json.Unmarshal([]byte(text), &body); err == nil && body.Message != "" {
			return &llamachat.ServerError{Status: body.Code, Message: body.Message}
		}
	}
	return &llamachat.ServerError{Message: text}
}
