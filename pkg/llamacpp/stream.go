package llamacpp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	llamachat "github.com/mutablelogic/go-llamachat"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	prefixData  = "data: "
	prefixError = "error: "
	dataDone    = "[DONE]"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Stream sends a streaming request to path and returns the decoded events.
// Errors reported by the server are returned as EventError events, and
// the sequence ends with EventEnd unless it is stopped early or a
// transport error occurs. Breaking out of the sequence closes the
// connection.
func (c *Client) Stream(ctx context.Context, path string, payload map[string]any) iter.Seq2[schema.Event, error] {
	return func(yield func(schema.Event, error) bool) {
		response, err := c.post(ctx, path, withStream(payload, true), client.ContentTypeTextStream)
		if err != nil {
			yield(schema.Event{}, err)
			return
		}
		defer response.Body.Close()

		// A failed request carries an error body rather than a stream
		if response.StatusCode/100 != 2 {
			data, err := io.ReadAll(response.Body)
			if err != nil {
				yield(schema.Event{}, transportError(err))
				return
			}
			var body chunk
			serverErr := &llamachat.ServerError{Status: response.StatusCode, Message: strings.TrimSpace(string(data))}
			if err := json.Unmarshal(data, &body); err == nil {
				if decoded := serverError(response.StatusCode, body.Error); decoded != nil {
					serverErr = decoded
				}
			}
			yield(schema.Event{Type: schema.EventError, Message: serverErr.Message}, nil)
			return
		}

		// Read lines until the end of the stream
		reader := bufio.NewReader(response.Body)
		for {
			line, err := reader.ReadString('\n')
			if line := strings.TrimRight(line, "\r\n"); line != "" {
				events, done := parseLine(line)
				for _, event := range events {
					if !yield(event, nil) {
						return
					}
				}
				if done {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				yield(schema.Event{Type: schema.EventEnd}, nil)
				return
			} else if err != nil {
				if ctx.Err() != nil {
					err = errors.Join(ctx.Err(), err)
				}
				yield(schema.Event{}, transportError(err))
				return
			}
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// parseLine decodes a single line of a stream. It returns done when the
// stream has ended or reported an error. Lines which are not understood
// are ignored.
func parseLine(line string) ([]schema.Event, bool) {
	switch {
	case strings.HasPrefix(line, prefixData):
		data := strings.TrimSpace(strings.TrimPrefix(line, prefixData))
		if data == dataDone {
			return []schema.Event{{Type: schema.EventEnd}}, true
		}
		var c chunk
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, false
		}
		return c.events()
	case strings.HasPrefix(line, prefixError):
		err := serverErrorText(strings.TrimPrefix(line, prefixError))
		return []schema.Event{{Type: schema.EventError, Message: err.Message}}, true
	case strings.HasPrefix(line, `{"error":`):
		var c chunk
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return []schema.Event{{Type: schema.EventError, Message: line}}, true
		}
		return c.events()
	}
	return nil, false
}

// events returns the events for a decoded stream chunk
func (c chunk) events() ([]schema.Event, bool) {
	if err := serverError(0, c.Error); err != nil {
		return []schema.Event{{Type: schema.EventError, Message: err.Message}}, true
	}

	var result []schema.Event
	if len(c.Choices) > 0 {
		// Chat completion delta
		choice := c.Choices[0]
		if choice.Delta.Content != nil {
			result = append(result, schema.Event{Type: schema.EventText, Text: *choice.Delta.Content})
		}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			result = append(result, schema.Event{Type: schema.EventFinish, Reason: *choice.FinishReason})
		}
	} else {
		// Raw completion
		if c.Content != nil && *c.Content != "" {
			result = append(result, schema.Event{Type: schema.EventText, Text: *c.Content})
		}
		if reason := c.finishReason(); reason != "" {
			result = append(result, schema.Event{Type: schema.EventFinish, Reason: reason})
		}
	}
	return result, false
}
