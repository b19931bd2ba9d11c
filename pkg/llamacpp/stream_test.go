package llamacpp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
	llamacpp "github.com/mutablelogic/go-llamachat/pkg/llamacpp"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func collect(t *testing.T, client *llamacpp.Client, path string) ([]schema.Event, error) {
	t.Helper()
	var result []schema.Event
	for event, err := range client.Stream(context.Background(), path, map[string]any{}) {
		if err != nil {
			return result, err
		}
		result = append(result, event)
	}
	return result, nil
}

func Test_stream_001(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		assert.NoError(json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(true, payload["stream"])
		sse(w,
			`data: {"choices":[{"delta":{"role":"assistant"},"finish_reason":null}]}`,
			`data: {"choices":[{"delta":{"content":"Hel"},"finish_reason":null}]}`,
			`data: {"choices":[{"delta":{"content":"lo"},"finish_reason":null}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
			`data: [DONE]`,
		)
	})

	events, err := collect(t, client, llamacpp.PathChatCompletions)
	assert.NoError(err)
	assert.Equal([]schema.Event{
		{Type: schema.EventText, Text: "Hel"},
		{Type: schema.EventText, Text: "lo"},
		{Type: schema.EventFinish, Reason: "stop"},
		{Type: schema.EventEnd},
	}, events)
}

func Test_stream_002(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		sse(w,
			`data: {"content":", there","stop":false}`,
			`data: {"content":" was","stop":false}`,
			`data: {"content":"","stop":true,"stop_type":"limit"}`,
		)
	})

	events, err := collect(t, client, llamacpp.PathCompletion)
	assert.NoError(err)
	assert.Equal([]schema.Event{
		{Type: schema.EventText, Text: ", there"},
		{Type: schema.EventText, Text: " was"},
		{Type: schema.EventFinish, Reason: schema.FinishReasonLength},
		{Type: schema.EventEnd},
	}, events)
}

func Test_stream_003(t *testing.T) {
	assert := assert.New(t)
	const message = "the request exceeds the available context size. try increasing the context size or enable context shift"
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		sse(w,
			`data: {"choices":[{"delta":{"content":"partial"},"finish_reason":null}]}`,
			`error: {"code":400,"message":"`+message+`","type":"exceed_context_size_error"}`,
			`data: {"choices":[{"delta":{"content":"ignored"},"finish_reason":null}]}`,
		)
	})

	events, err := collect(t, client, llamacpp.PathChatCompletions)
	assert.NoError(err)
	assert.Equal([]schema.Event{
		{Type: schema.EventText, Text: "partial"},
		{Type: schema.EventError, Message: message},
	}, events)
}

func Test_stream_004(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		sse(w, `{"error":{"code":500,"message":"Failed to load image or audio file","type":"server_error"}}`)
	})

	events, err := collect(t, client, llamacpp.PathChatCompletions)
	assert.NoError(err)
	assert.Equal([]schema.Event{
		{Type: schema.EventError, Message: "Failed to load image or audio file"},
	}, events)
}

func Test_stream_005(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": 400, "message": "image input is not supported", "type": "invalid_request_error"},
		})
	})

	events, err := collect(t, client, llamacpp.PathChatCompletions)
	assert.NoError(err)
	assert.Equal([]schema.Event{
		{Type: schema.EventError, Message: "image input is not supported"},
	}, events)
}

func Test_stream_006(t *testing.T) {
	assert := assert.New(t)
	client, err := llamacpp.NewWithPort(closedPort(t))
	assert.NoError(err)

	_, err = collect(t, client, llamacpp.PathChatCompletions)
	assert.ErrorIs(err, llamachat.ErrConnection)
}

func Test_stream_007(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		sse(w,
			`data: {"choices":[{"delta":{"content":"one"},"finish_reason":null}]}`,
			`data: {"choices":[{"delta":{"content":"two"},"finish_reason":null}]}`,
			`data: [DONE]`,
		)
	})

	// Breaking out of the sequence stops reading
	var texts []string
	for event, err := range client.Stream(context.Background(), llamacpp.PathChatCompletions, map[string]any{}) {
		assert.NoError(err)
		texts = append(texts, event.Text)
		break
	}
	assert.Equal([]string{"one"}, texts)
}
