package conversation

import (
	"errors"
	"fmt"

	"github.com/syedarman1/screenme-sub001/internal/domain"
)

// State is the progress of one turn through the pipeline.
type State int

const (
	// StateReceived - input validated, nothing sent upstream yet.
	StateReceived State = iota
	// StateTranscribed - transcript obtained, user turn appended.
	StateTranscribed
	// StateCompleted - reply obtained. Terminal.
	StateCompleted
	// StateFailed - a stage failed. Terminal.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "RECEIVED"
	case StateTranscribed:
		return "TRANSCRIBED"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true for COMPLETED and FAILED.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

var (
	ErrTurnFinished        = errors.New("turn already finished")
	ErrAlreadyTranscribed  = errors.New("turn already transcribed")
	ErrCompleteBeforeAudio = errors.New("cannot complete before transcription")
)

// Lifecycle enforces the stage order of a single turn:
//
//	RECEIVED → TRANSCRIBED → COMPLETED
//	    │           │
//	    └───────────┴──→ FAILED
//
// Completion can never start without a transcript, and a finished turn
// accepts no further transitions. The transcript recorded here is what a
// failed turn hands back to the caller. A Lifecycle belongs to one request
// and is not safe for concurrent use.
type Lifecycle struct {
	state       State
	failedStage domain.Stage
	transcript  string
	transcribed bool
}

// NewLifecycle creates a lifecycle in RECEIVED state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateReceived}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return l.state
}

// Transcript returns the transcript recorded by Transcribed, if any.
func (l *Lifecycle) Transcript() (string, bool) {
	return l.transcript, l.transcribed
}

// FailedStage returns the stage that failed, or "" if none did.
func (l *Lifecycle) FailedStage() domain.Stage {
	return l.failedStage
}

// Transcribed records the transcript and moves to TRANSCRIBED.
func (l *Lifecycle) Transcribed(transcript string) error {
	switch l.state {
	case StateReceived:
		l.state = StateTranscribed
		l.transcript = transcript
		l.transcribed = true
		return nil
	case StateTranscribed:
		return ErrAlreadyTranscribed
	default:
		return ErrTurnFinished
	}
}

// Completed moves to COMPLETED.
func (l *Lifecycle) Completed() error {
	switch l.state {
	case StateTranscribed:
		l.state = StateCompleted
		return nil
	case StateReceived:
		return ErrCompleteBeforeAudio
	default:
		return ErrTurnFinished
	}
}

// Fail moves to FAILED, remembering which stage failed.
// Returns false if the turn was already finished.
func (l *Lifecycle) Fail(stage domain.Stage) bool {
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateFailed
	l.failedStage = stage
	return true
}
