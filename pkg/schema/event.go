package schema

///////////////////////////////////////////////////////////////////////////////
// TYPES

// EventType identifies the kind of stream event
type EventType int

// Event is a single decoded line of a streaming response
type Event struct {
	Type    EventType `json:"type"`
	Text    string    `json:"text,omitempty"`    // Text delta for EventText
	Reason  string    `json:"reason,omitempty"`  // Finish reason for EventFinish
	Message string    `json:"message,omitempty"` // Server message for EventError
}

// Completion is the result of a non-streaming request
type Completion struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	EventText   EventType = iota // Text delta
	EventFinish                  // Finish reason reported
	EventError                   // Error reported by the server
	EventEnd                     // End of stream
)

const (
	// FinishReasonLength means the token limit was reached
	FinishReasonLength = "length"
)

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (t EventType) String() string {
	switch t {
	case EventText:
		return "text"
	case EventFinish:
		return "finish"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

func (e Event) String() string {
	return stringify(e)
}

func (c Completion) String() string {
	return stringify(c)
}
