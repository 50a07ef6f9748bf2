package core

import (
	"casegen/pkg/schema"
)

// State is a workflow state.
type State int

const (
	StateIdle State = iota
	StateFileSelected
	StateExtracting
	StateAwaitingGeneration
	StateResults
	StateError
)

var stateNames = [...]string{
	StateIdle:               "Idle",
	StateFileSelected:       "FileSelected",
	StateExtracting:         "Extracting",
	StateAwaitingGeneration: "AwaitingGeneration",
	StateResults:            "Results",
	StateError:              "Error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Session is the state owned by a single workflow Controller.
type Session struct {
	RunID        string
	State        State
	ErrorMessage string
	Err          error
	FileName     string
	MediaType    string
	Requirements []string
	Suite        *schema.TestSuite
	Progress     int
	Copied       bool

	data []byte
}

// NewSession creates an idle session.
func NewSession(runID string) *Session {
	return &Session{RunID: runID, State: StateIdle}
}

// Clone creates a copy of the session without the selected file's contents.
// The suite is shared since it is never mutated once produced.
func (s *Session) Clone() *Session {
	clone := &Session{
		RunID:        s.RunID,
		State:        s.State,
		ErrorMessage: s.ErrorMessage,
		Err:          s.Err,
		FileName:     s.FileName,
		MediaType:    s.MediaType,
		Suite:        s.Suite,
		Progress:     s.Progress,
		Copied:       s.Copied,
	}
	if s.Requirements != nil {
		clone.Requirements = make([]string, len(s.Requirements))
		copy(clone.Requirements, s.Requirements)
	}
	return clone
}
