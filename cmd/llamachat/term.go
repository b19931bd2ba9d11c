package main

import (
	"os"
	"strings"

	// Packages
	glamour "github.com/charmbracelet/glamour"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	warningLabel = "warning: "
	defaultWidth = 80
	minWidth     = 20
)

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// isTerminal returns true if the file is attached to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// width returns the terminal width, or a default when not a terminal
func width(f *os.File) int {
	if !isTerminal(f) {
		return defaultWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return defaultWidth
	}
	return max(w, minWidth)
}

// bold wraps text in escape codes when writing to a terminal
func bold(f *os.File, text string) string {
	if !isTerminal(f) {
		return text
	}
	return "\033[1m" + text + "\033[0m"
}

// dim wraps text in escape codes when writing to a terminal
func dim(f *os.File, text string) string {
	if !isTerminal(f) {
		return text
	}
	return "\033[2m" + text + "\033[0m"
}

// renderMarkdown renders text through glamour when writing to a terminal,
// and returns the text unchanged otherwise or on error
func renderMarkdown(f *os.File, text string) string {
	if !isTerminal(f) {
		return text
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width(f)),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}
