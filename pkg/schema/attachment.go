package schema

import (
	"path/filepath"
	"slices"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Attachment is a file sent by the user alongside a message. The file is
// read when the conversation is serialized, not when it is attached.
type Attachment struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Kind classifies an attachment by its file extension
type Kind int

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	KindUnsupported Kind = iota
	KindText
	KindImage
	KindAudio
)

var (
	// TextExtensions are inlined into the conversation as fenced code blocks
	TextExtensions = []string{
		".text", ".txt", ".md", ".markdown", ".rst", ".tex", ".adoc", ".asciidoc",
		".csv", ".tsv", ".json", ".jsonc", ".toml", ".xml", ".yaml", ".yml",
		".cnf", ".conf", ".cfg", ".cf", ".ini",
		".sh", ".bat", ".cmd", ".btm",
		".ps1", ".psd1", ".psm1", ".ps1xml", ".psc1", ".pssc", ".psrc",
		".asm", ".s", ".inc", ".wla", ".SRC",
		".f90", ".f", ".for", ".p", ".pp", ".pas", ".hs", ".lhs", ".jl",
		".c", ".h", ".cc", ".cpp", ".cxx", ".c++", ".hh", ".hpp", ".hxx", ".h++", ".cppm", ".ixx",
		".cs", ".csx", ".m", ".mm", ".d", ".dd", ".di", ".rs",
		".py", ".pyw", ".pyi", ".lua", ".luau", ".rb", ".ru", ".go", ".java", ".swift",
		".html", ".htm", ".xhtml", ".xht",
		".css", ".sass", ".scss", ".styl", ".less",
		".php", ".php3", ".php4", ".php5", ".phtml", ".pht", ".phps",
		".as", ".hx", ".hxml",
		".js", ".mjs", ".cjs", ".jspp", ".js++", ".jpp", ".jsx",
		".ts", ".tsx", ".mts", ".cts", ".ets",
		".ipynb", ".coffee", ".dart", ".sql",
		".glsl", ".vert", ".tesc", ".tese", ".geom", ".frag", ".comp", ".hlsl",
		".tscn", ".tres", ".gd", ".shader", ".gdshader", ".gdextension",
		".j2",
	}

	// ImageExtensions are sent as base64 data URLs
	ImageExtensions = []string{
		".png", ".jpg", ".jpeg", ".jpe", ".jif", ".jfif", ".jfi", ".webp",
	}

	// AudioExtensions are sent as base64 input_audio parts
	AudioExtensions = []string{
		".wav", ".mp3",
	}
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewAttachment returns an attachment for the file at path
func NewAttachment(path string) *Attachment {
	return &Attachment{
		Path: path,
		Name: filepath.Base(path),
	}
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	default:
		return "unsupported"
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Ext returns the file extension, including the leading dot
func (a Attachment) Ext() string {
	return filepath.Ext(a.Path)
}

// Kind returns the classification of the attachment. Extensions are matched
// exactly first, then case-insensitively.
func (a Attachment) Kind() Kind {
	return KindOf(a.Path)
}

// KindOf classifies a file path by its extension
func KindOf(path string) Kind {
	ext := filepath.Ext(path)
	if ext == "" {
		return KindUnsupported
	}
	for _, candidate := range []string{ext, strings.ToLower(ext)} {
		switch {
		case slices.Contains(TextExtensions, candidate):
			return KindText
		case slices.Contains(ImageExtensions, candidate):
			return KindImage
		case slices.Contains(AudioExtensions, candidate):
			return KindAudio
		}
	}
	return KindUnsupported
}

// AllowedExtensions returns the file extensions a user may attach given the
// modalities of the loaded model. Text files are always allowed.
func AllowedExtensions(modalities Modalities) []string {
	result := slices.Clone(TextExtensions)
	if modalities.Vision {
		result = append(result, ImageExtensions...)
	}
	if modalities.Audio {
		result = append(result, AudioExtensions...)
	}
	return result
}
