package llamacpp

import (
	"testing"

	// Packages
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func Test_parse_001(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		line   string
		events []schema.Event
		done   bool
	}{
		{`data: [DONE]`, []schema.Event{{Type: schema.EventEnd}}, true},
		{`data: {"choices":[{"delta":{"content":"a"},"finish_reason":null}]}`, []schema.Event{{Type: schema.EventText, Text: "a"}}, false},
		{`data: {"choices":[{"delta":{"content":""},"finish_reason":null}]}`, []schema.Event{{Type: schema.EventText}}, false},
		{`data: {"choices":[{"delta":{"content":null},"finish_reason":"length"}]}`, []schema.Event{{Type: schema.EventFinish, Reason: "length"}}, false},
		{`data: {"content":"b","stop":false}`, []schema.Event{{Type: schema.EventText, Text: "b"}}, false},
		{`data: {"content":"","stop":true,"stop_type":"eos"}`, []schema.Event{{Type: schema.EventFinish, Reason: "stop"}}, false},
		{`data: {"error":{"code":500,"message":"boom"}}`, []schema.Event{{Type: schema.EventError, Message: "boom"}}, true},
		{`error: plain text failure`, []schema.Event{{Type: schema.EventError, Message: "plain text failure"}}, true},
		{`error: {"code":400,"message":"too long"}`, []schema.Event{{Type: schema.EventError, Message: "too long"}}, true},
		{`{"error":{"code":400,"message":"bad image"}}`, []schema.Event{{Type: schema.EventError, Message: "bad image"}}, true},
		{`{"error":"flat"}`, []schema.Event{{Type: schema.EventError, Message: "flat"}}, true},
		{`data: not json`, nil, false},
		{`: keep-alive`, nil, false},
		{`event: message`, nil, false},
	}
	for _, test := range tests {
		events, done := parseLine(test.line)
		assert.Equal(test.events, events, test.line)
		assert.Equal(test.done, done, test.line)
	}
}
