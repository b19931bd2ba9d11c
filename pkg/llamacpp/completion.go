package llamacpp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	// Packages
	client "github.com/mutablelogic/go-client"
	llamachat "github.com/mutablelogic/go-llamachat"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// chunk is either a chat completion (or chat completion delta) or a raw
// completion. Both shapes are decoded into the same struct.
type chunk struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content *string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Content  *string         `json:"content"`
	Stop     bool            `json:"stop"`
	StopType string          `json:"stop_type"`
	Error    json.RawMessage `json:"error"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	stopTypeLimit    = "limit"
	finishReasonStop = "stop"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Complete sends a non-streaming request to path, which is either
// PathChatCompletions or PathCompletion. The payload "stream" field is
// overridden. Errors reported by the server are returned as
// *llamachat.ServerError.
func (c *Client) Complete(ctx context.Context, path string, payload map[string]any) (*schema.Completion, error) {
	response, err := c.post(ctx, path, withStream(payload, false), client.ContentTypeJson)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	// Read the body
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, transportError(err)
	}

	// Decode the body
	var body chunk
	if err := json.Unmarshal(data, &body); err != nil {
		if response.StatusCode/100 != 2 {
			return nil, &llamachat.ServerError{Status: response.StatusCode, Message: string(bytes.TrimSpace(data))}
		}
		return nil, llamachat.ErrUnknown.Withf("invalid response: %v", err)
	}
	if err := serverError(response.StatusCode, body.Error); err != nil {
		return nil, err
	} else if response.StatusCode/100 != 2 {
		return nil, &llamachat.ServerError{Status: response.StatusCode, Message: response.Status}
	}

	// Return the completion
	return body.completion(), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// post sends a JSON payload to the server. Transport errors are mapped to
// error codes.
func (c *Client) post(ctx context.Context, path string, payload any, accept string) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, llamachat.ErrBadParameter.With(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(data))
	if err != nil {
		return nil, llamachat.ErrBadParameter.With(err)
	}
	req.Header.Set("Content-Type", client.ContentTypeJson)
	req.Header.Set("Accept", accept)

	response, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	return response, nil
}

// withStream returns a copy of the payload with the stream flag set
func withStream(payload map[string]any, stream bool) map[string]any {
	result := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		result[k] = v
	}
	result["stream"] = stream
	return result
}

// completion returns the content and finish reason of a non-streaming
// response
func (c chunk) completion() *schema.Completion {
	result := new(schema.Completion)
	if len(c.Choices) > 0 {
		choice := c.Choices[0]
		if choice.Message.Content != nil {
			result.Content = *choice.Message.Content
		}
		if choice.FinishReason != nil {
			result.FinishReason = *choice.FinishReason
		}
		return result
	}
	if c.Content != nil {
		result.Content = *c.Content
	}
	result.FinishReason = c.finishReason()
	return result
}

// finishReason maps the stop type of a raw completion onto the finish
// reasons used by chat completions
func (c chunk) finishReason() string {
	switch {
	case c.StopType == stopTypeLimit:
		return schema.FinishReasonLength
	case c.Stop:
		return finishReasonStop
	default:
		return ""
	}
}
