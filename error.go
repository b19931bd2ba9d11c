package llamachat

import (
	"errors"
	"fmt"
)

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrSuccess Err = iota
	ErrNotFound
	ErrBadParameter
	ErrInternalServerError
	ErrEmptyMessage
	ErrTooManyAttachments
	ErrBusy
	ErrConnection
	ErrServer
	ErrCancelled
	ErrUnknown
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Errors
type Err int

// ServerError is an error reported by the inference server, either as an
// error object in a response body or as an error line within a stream
type ServerError struct {
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e Err) Error() string {
	switch e {
	case ErrSuccess:
		return "success"
	case ErrNotFound:
		return "not found"
	case ErrBadParameter:
		return "bad parameter"
	case ErrInternalServerError:
		return "internal server error"
	case ErrEmptyMessage:
		return "message cannot be empty"
	case ErrTooManyAttachments:
		return "too many attachments"
	case ErrBusy:
		return "generation in progress"
	case ErrConnection:
		return "connection failed"
	case ErrServer:
		return "server reported an error"
	case ErrCancelled:
		return "cancelled"
	case ErrUnknown:
		return "unknown error"
	}
	return fmt.Sprintf("error code %d", int(e))
}

func (e Err) With(args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprint(args...))
}

func (e Err) Withf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

func (e *ServerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%v (status %d): %s", ErrServer, e.Status, e.Message)
	}
	return fmt.Sprintf("%v: %s", ErrServer, e.Message)
}

// Unwrap allows errors.Is(err, ErrServer) to match
func (e *ServerError) Unwrap() error {
	return ErrServer
}

// ServerMessage returns the message reported by the server, or an empty
// string if the error did not originate from the server
func ServerMessage(err error) string {
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Message
	}
	return ""
}
