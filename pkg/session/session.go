/*
session holds the state owned by the generation controller: the chat
conversation, the writer document, the modalities of the loaded model and
the handle of the generation in progress.
*/
package session

import (
	"context"
	"sync"
	"sync/atomic"

	// Packages
	llamachat "github.com/mutablelogic/go-llamachat"
	schema "github.com/mutablelogic/go-llamachat/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Session is the single owned transcript and busy state. Methods which
// mutate the conversation or document are not synchronized; callers hold
// the busy flag (through Acquire) while generation is in progress.
type Session struct {
	mu           sync.Mutex
	busy         bool
	task         *Task
	conversation schema.Conversation
	document     schema.Document
	modalities   schema.Modalities
}

// Task is the handle of the generation in progress. Stopping a task sets
// a flag which the generation polls at each delta, and then cancels the
// context of the request.
type Task struct {
	cancel  context.CancelFunc
	stopped atomic.Bool
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an empty session
func New() *Session {
	return new(Session)
}

// NewTask returns a task which calls cancel when stopped. The cancel
// function may be nil.
func NewTask(cancel context.CancelFunc) *Task {
	return &Task{cancel: cancel}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS - BUSY STATE

// Acquire marks the session as busy, or returns ErrBusy if a generation
// is already in progress
func (s *Session) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return llamachat.ErrBusy
	}
	s.busy = true
	return nil
}

// Release marks the session as idle and discards any task
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.task = nil
}

// Busy returns true while a generation is in progress
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// StartTask records the task of the generation in progress. It panics if
// a task is already recorded.
func (s *Session) StartTask(task *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.task != nil {
		panic("session: task already in progress")
	}
	s.task = task
}

// EndTask discards the task, so that a later Stop has no effect
func (s *Session) EndTask() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.task = nil
}

// Stop requests the task in progress to stop and discards it. Returns
// false if there was no task to stop.
func (s *Session) Stop() bool {
	s.mu.Lock()
	task := s.task
	s.task = nil
	s.mu.Unlock()

	if task == nil {
		return false
	}
	task.Stop()
	return true
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS - STATE

// Conversation returns the chat conversation
func (s *Session) Conversation() *schema.Conversation {
	return &s.conversation
}

// Document returns the writer document
func (s *Session) Document() *schema.Document {
	return &s.document
}

// Modalities returns the last known modalities of the loaded model
func (s *Session) Modalities() schema.Modalities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modalities
}

// SetModalities replaces the modalities of the loaded model
func (s *Session) SetModalities(modalities schema.Modalities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modalities = modalities
}

// Reset clears the conversation and the document. Returns ErrBusy while
// a generation is in progress.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return llamachat.ErrBusy
	}
	s.conversation.Clear()
	s.document.Clear()
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS - TASK

// Stop sets the stopped flag and then cancels the request
func (t *Task) Stop() {
	t.stopped.Store(true)
	if t.cancel != nil {
		t.cancel()
	}
}

// Stopped returns true once Stop has been called
func (t *Task) Stopped() bool {
	return t.stopped.Load()
}
