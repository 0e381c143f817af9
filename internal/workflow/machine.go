package workflow

import (
	"github.com/google/uuid"

	"github.com/kingrea/auditoria-energia/internal/audit"
)

// Effect is a side effect requested by a transition. The caller performs it.
type Effect interface {
	isEffect()
}

// StartUpload asks the caller to POST File and report back via Resolve with
// the same Attempt.
type StartUpload struct {
	Attempt string
	File    audit.SelectedFile
}

// ResetPicker asks the caller to clear the file-selection control so the
// same filename can be chosen again.
type ResetPicker struct{}

func (StartUpload) isEffect() {}
func (ResetPicker) isEffect() {}

// Outcome is the resolution of an upload. Exactly one field is meaningful:
// a nil Err means success.
type Outcome struct {
	Result *audit.Result
	Err    error
}

// Option customizes a Machine.
type Option func(*Machine)

// WithAttemptIDs overrides the attempt id generator.
func WithAttemptIDs(next func() string) Option {
	return func(m *Machine) {
		if next != nil {
			m.nextAttempt = next
		}
	}
}

// Machine owns the workflow state. It performs no I/O and is not safe for
// concurrent use; it is driven from a single event loop.
type Machine struct {
	state       State
	nextAttempt func() string
}

// NewMachine returns a machine in Idle.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		state:       Idle{},
		nextAttempt: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Select records a new file. Valid from every state; clears any result or
// error. While uploading the request is left running.
func (m *Machine) Select(file audit.SelectedFile) []Effect {
	if up, ok := m.state.(Uploading); ok {
		up.Selected = file
		m.state = up
		return nil
	}
	m.state = FileSelected{File: file}
	return nil
}

// Submit starts an upload of the selected file. It is a no-op while a
// request is in flight and fails locally when no file is selected.
func (m *Machine) Submit() []Effect {
	if Busy(m.state) {
		return nil
	}
	file, ok := SelectedFile(m.state)
	if !ok {
		m.state = Error{Message: audit.UserMessage(audit.ErrNoFileSelected)}
		return nil
	}
	attempt := m.nextAttempt()
	m.state = Uploading{Attempt: attempt, Submitted: file, Selected: file}
	return []Effect{StartUpload{Attempt: attempt, File: file}}
}

// Resolve applies the outcome of the upload identified by attempt. Outcomes
// for any other attempt are ignored.
func (m *Machine) Resolve(attempt string, outcome Outcome) []Effect {
	up, ok := m.state.(Uploading)
	if !ok || up.Attempt != attempt {
		return nil
	}
	if outcome.Err != nil {
		file := up.Selected
		m.state = Error{Message: audit.UserMessage(outcome.Err), File: &file}
		return nil
	}
	var result audit.Result
	if outcome.Result != nil {
		result = *outcome.Result
	}
	m.state = Result{Audit: result}
	return []Effect{ResetPicker{}}
}
