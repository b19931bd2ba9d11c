package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// transcript is the on-disk form of a session
type transcript struct {
	Conversation schema.Conversation `json:"conversation"`
	Document     string              `json:"document,omitempty"`
	Modified     time.Time           `json:"modified"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DirPerm  os.FileMode = 0o700 // Directory permission for transcripts
	FilePerm os.FileMode = 0o600 // File permission for transcripts
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// WriteFile saves the conversation and document as JSON. The parent
// directory is created if it does not exist. Returns ErrBusy while a
// generation is in progress.
func (s *Session) WriteFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return llamachat.ErrBusy
	}

	data, err := json.MarshalIndent(transcript{
		Conversation: s.conversation,
		Document:     s.document.String(),
		Modified:     time.Now(),
	}, "", "  ")
	if err != nil {
		return llamachat.ErrInternalServerError.Withf("marshal: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return llamachat.ErrInternalServerError.Withf("mkdir: %v", err)
	}

	// Write to a temporary file and rename, so a failed write leaves the
	// previous transcript intact
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return llamachat.ErrInternalServerError.Withf("write: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return llamachat.ErrInternalServerError.Withf("rename: %v", err)
	}
	return nil
}

// ReadFile replaces the conversation and document with those saved by
// WriteFile. Returns ErrBusy while a generation is in progress.
func (s *Session) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return llamachat.ErrNotFound.Withf("transcript %q", path)
		}
		return llamachat.ErrInternalServerError.Withf("read: %v", err)
	}
	var t transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return llamachat.ErrBadParameter.Withf("unmarshal: %v", err)
	}
	if len(t.Conversation) > 0 && t.Conversation[0].Role != schema.RoleSystem {
		return llamachat.ErrBadParameter.Withf("transcript %q: first message is not a system message", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return llamachat.ErrBusy
	}
	s.conversation = t.Conversation
	s.document.Set(t.Document)
	return nil
}
