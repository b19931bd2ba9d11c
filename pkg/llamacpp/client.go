/*
llamacpp implements a client for the llama.cpp inference server
https://github.com/ggml-org/llama.cpp/tree/master/tools/server
*/
package llamacpp

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
	endpoint string
	http     *http.Client // Used for completions, which have no timeout
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	PathHealth          = "/health"
	PathProps           = "/props"
	PathChatCompletions = "/v1/chat/completions"
	PathCompletion      = "/completion"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// Create a new client, with a llama.cpp server endpoint, which should be
// something like "http://localhost:8080"
func New(endPoint string, opts ...client.ClientOpt) (*Client, error) {
	endPoint = strings.TrimSuffix(endPoint, "/")

	// Create client
	c, err := client.New(append(opts, client.OptEndpoint(endPoint))...)
	if err != nil {
		return nil, err
	}

	// Completions are cancelled through their context rather than a timeout
	completions := new(http.Client)
	if c.Client != nil {
		*completions = *c.Client
	}
	completions.Timeout = 0

	// Return the client
	return &Client{c, endPoint, completions}, nil
}

// Create a new client for a server listening on localhost
func NewWithPort(port uint16, opts ...client.ClientOpt) (*Client, error) {
	return New(fmt.Sprintf("http://localhost:%d", port), opts...)
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c *Client) String() string {
	return fmt.Sprintf("<llamacpp endpoint=%q>", c.endpoint)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Endpoint returns the base URL of the server
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Health returns nil if the server is reachable and reports itself ready.
// Any 2xx response counts as ready, whatever its body.
func (c *Client) Health(ctx context.Context) error {
	if err := c.DoWithContext(ctx, nil, nil, client.OptPath(strings.TrimPrefix(PathHealth, "/"))); err != nil {
		return healthError(err)
	}
	return nil
}

// Props returns the server properties, including the modalities of the
// loaded model
func (c *Client) Props(ctx context.Context) (*schema.Props, error) {
	var response schema.Props
	if err := c.DoWithContext(ctx, nil, &response, client.OptPath(strings.TrimPrefix(PathProps, "/"))); err != nil {
		return nil, transportError(err)
	}
	return &response, nil
}
