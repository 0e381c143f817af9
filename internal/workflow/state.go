// internal/workflow/state.go
//
// The upload-and-review workflow is a tagged union: exactly one of the state
// types below is current, so a result and an error can never coexist.

package workflow

import "github.com/kingrea/auditoria-energia/internal/audit"

// Status names the variant of a State.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusFileSelected Status = "file_selected"
	StatusUploading    Status = "uploading"
	StatusResult       Status = "result"
	StatusError        Status = "error"
)

// State is implemented only by the types in this file.
type State interface {
	Status() Status
	isState()
}

// Idle has no file, no result and no error.
type Idle struct{}

// FileSelected holds a file ready to submit.
type FileSelected struct {
	File audit.SelectedFile
}

// Uploading means one request is in flight. Selected is the current picker
// selection, which starts as the submitted file and may be replaced while
// the request runs.
type Uploading struct {
	Attempt   string
	Submitted audit.SelectedFile
	Selected  audit.SelectedFile
}

// Result holds the audit returned by the service. The selection is cleared.
type Result struct {
	Audit audit.Result
}

// Error holds the alert text and, when one was retained, the selected file.
type Error struct {
	Message string
	File    *audit.SelectedFile
}

func (Idle) Status() Status         { return StatusIdle }
func (FileSelected) Status() Status { return StatusFileSelected }
func (Uploading) Status() Status    { return StatusUploading }
func (Result) Status() Status       { return StatusResult }
func (Error) Status() Status        { return StatusError }

func (Idle) isState()         {}
func (FileSelected) isState() {}
func (Uploading) isState()    {}
func (Result) isState()       {}
func (Error) isState()        {}

// SelectedFile returns the file currently held by s, if any.
func SelectedFile(s State) (audit.SelectedFile, bool) {
	switch st := s.(type) {
	case FileSelected:
		return st.File, true
	case Uploading:
		return st.Selected, true
	case Error:
		if st.File != nil {
			return *st.File, true
		}
	}
	return audit.SelectedFile{}, false
}

// Busy reports whether a request is in flight.
func Busy(s State) bool {
	_, ok := s.(Uploading)
	return ok
}
