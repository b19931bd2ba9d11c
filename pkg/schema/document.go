package schema

import "strings"

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Document is the writer buffer. The prompt and the continuation generated
// from it share the same text.
type Document struct {
	text strings.Builder
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (d *Document) String() string {
	return d.text.String()
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Set replaces the content of the document
func (d *Document) Set(text string) {
	d.text.Reset()
	d.text.WriteString(text)
}

// Append adds text to the end of the document
func (d *Document) Append(text string) {
	d.text.WriteString(text)
}

// Clear empties the document
func (d *Document) Clear() {
	d.text.Reset()
}

// Len returns the length of the document in bytes
func (d *Document) Len() int {
	return d.text.Len()
}
