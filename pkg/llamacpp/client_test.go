package llamacpp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
	llamacpp "github.com/mutablelogic/go-llamachat/pkg/llamacpp"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

func newServer(t *testing.T, handler http.HandlerFunc) *llamacpp.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := llamacpp.New(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func closedPort(t *testing.T) uint16 {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	return uint16(port)
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_client_001(t *testing.T) {
	assert := assert.New(t)
	client, err := llamacpp.NewWithPort(8080)
	assert.NoError(err)
	assert.Equal("http://localhost:8080", client.Endpoint())
	t.Log(client)
}

func Test_client_002(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodGet, r.Method)
		assert.Equal(llamacpp.PathHealth, r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	assert.NoError(client.Health(context.Background()))
}

func Test_client_003(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": map[string]any{"code": 503, "message": "Loading model", "type": "unavailable_error"},
		})
	})
	assert.ErrorIs(client.Health(context.Background()), llamachat.ErrConnection)
}

func Test_client_004(t *testing.T) {
	assert := assert.New(t)
	client, err := llamacpp.NewWithPort(closedPort(t))
	assert.NoError(err)
	assert.ErrorIs(client.Health(context.Background()), llamachat.ErrConnection)
}

func Test_client_005(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(llamacpp.PathProps, r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"model_path":  "/models/gemma.gguf",
			"total_slots": 1,
			"build_info":  "b5000",
			"modalities":  map[string]bool{"vision": true, "audio": false},
		})
	})
	props, err := client.Props(context.Background())
	if assert.NoError(err) {
		assert.True(props.Modalities.Vision)
		assert.False(props.Modalities.Audio)
		assert.Equal("/models/gemma.gguf", props.ModelPath)
		assert.Equal(1, props.TotalSlots)
	}
}

func Test_client_006(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(http.MethodPost, r.Method)
		assert.Equal(llamacpp.PathChatCompletions, r.URL.Path)

		var payload map[string]any
		assert.NoError(json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(false, payload["stream"])
		assert.Len(payload["messages"], 1)

		writeJSON(w, http.StatusOK, map[string]any{
			"choices": []any{
				map[string]any{
					"message":       map[string]any{"role": "assistant", "content": "Hi there"},
					"finish_reason": "length",
				},
			},
		})
	})

	completion, err := client.Complete(context.Background(), llamacpp.PathChatCompletions, map[string]any{
		"messages": []schema.WireMessage{{Role: schema.RoleUser, Content: "hello"}},
		"stream":   true,
	})
	if assert.NoError(err) {
		assert.Equal("Hi there", completion.Content)
		assert.Equal(schema.FinishReasonLength, completion.FinishReason)
	}
}

func Test_client_007(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(llamacpp.PathCompletion, r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"content":   ", there was a dragon",
			"stop":      true,
			"stop_type": "limit",
		})
	})

	completion, err := client.Complete(context.Background(), llamacpp.PathCompletion, map[string]any{
		"prompt":    "Once upon a time",
		"n_predict": 4,
	})
	if assert.NoError(err) {
		assert.Equal(", there was a dragon", completion.Content)
		assert.Equal(schema.FinishReasonLength, completion.FinishReason)
	}
}

func Test_client_008(t *testing.T) {
	assert := assert.New(t)
	const message = "the request exceeds the available context size. try increasing the context size or enable context shift"
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": 400, "message": message, "type": "exceed_context_size_error"},
		})
	})

	_, err := client.Complete(context.Background(), llamacpp.PathChatCompletions, map[string]any{})
	assert.ErrorIs(err, llamachat.ErrServer)
	assert.Equal(message, llamachat.ServerMessage(err))

	var serverErr *llamachat.ServerError
	if assert.ErrorAs(err, &serverErr) {
		assert.Equal(400, serverErr.Status)
	}
}

func Test_client_009(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "something broke\n")
	})

	_, err := client.Complete(context.Background(), llamacpp.PathCompletion, map[string]any{})
	assert.ErrorIs(err, llamachat.ErrServer)
	assert.Equal("something broke", llamachat.ServerMessage(err))
}

func Test_client_010(t *testing.T) {
	assert := assert.New(t)
	client, err := llamacpp.NewWithPort(closedPort(t))
	assert.NoError(err)

	_, err = client.Complete(context.Background(), llamacpp.PathChatCompletions, map[string]any{})
	assert.ErrorIs(err, llamachat.ErrConnection)
}

func Test_client_011(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Complete(ctx, llamacpp.PathChatCompletions, map[string]any{})
	assert.ErrorIs(err, llamachat.ErrCancelled)
}

func Test_client_012(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "OK")
	})
	assert.NoError(client.Health(context.Background()))
}

func Test_client_013(t *testing.T) {
	assert := assert.New(t)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(client.Health(context.Background()))
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

func sse(w http.ResponseWriter, lines ...string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	for _, line := range lines {
		fmt.Fprintf(w, "%s\n\n", line)
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}
