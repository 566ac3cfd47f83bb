package conversation

import (
	"testing"

	"github.com/syedarman1/screenme-sub001/internal/domain"
)

func TestLifecycle_InitialState(t *testing.T) {
	lc := NewLifecycle()

	if lc.State() != StateReceived {
		t.Errorf("expected StateReceived, got %v", lc.State())
	}
	if _, ok := lc.Transcript(); ok {
		t.Error("expected no transcript before transcription")
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	lc := NewLifecycle()

	if err := lc.Transcribed("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc.State() != StateTranscribed {
		t.Errorf("expected StateTranscribed, got %v", lc.State())
	}
	if err := lc.Completed(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lc.State().IsTerminal() {
		t.Error("expected terminal state after completion")
	}
	if text, ok := lc.Transcript(); !ok || text != "hello" {
		t.Errorf("expected transcript 'hello', got %q (ok=%v)", text, ok)
	}
}

func TestLifecycle_CompleteBeforeTranscription(t *testing.T) {
	lc := NewLifecycle()

	if err := lc.Completed(); err != ErrCompleteBeforeAudio {
		t.Errorf("expected ErrCompleteBeforeAudio, got %v", err)
	}
}

func TestLifecycle_TranscribeTwice(t *testing.T) {
	lc := NewLifecycle()
	_ = lc.Transcribed("a")

	if err := lc.Transcribed("b"); err != ErrAlreadyTranscribed {
		t.Errorf("expected ErrAlreadyTranscribed, got %v", err)
	}
}

func TestLifecycle_Fail(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(*Lifecycle)
		stage         domain.Stage
		wantFailed    bool
		hasTranscript bool
	}{
		{"fail transcription", func(*Lifecycle) {}, domain.StageTranscription, true, false},
		{"fail completion", func(l *Lifecycle) { _ = l.Transcribed("x") }, domain.StageCompletion, true, true},
		{"fail after completed", func(l *Lifecycle) { _ = l.Transcribed("x"); _ = l.Completed() }, domain.StageCompletion, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := NewLifecycle()
			tt.setup(lc)

			if got := lc.Fail(tt.stage); got != tt.wantFailed {
				t.Errorf("Fail() = %v, want %v", got, tt.wantFailed)
			}
			if _, ok := lc.Transcript(); ok != tt.hasTranscript {
				t.Errorf("transcript present = %v, want %v", ok, tt.hasTranscript)
			}
			if tt.wantFailed && lc.FailedStage() != tt.stage {
				t.Errorf("expected failed stage %s, got %s", tt.stage, lc.FailedStage())
			}
		})
	}
}

func TestLifecycle_NoTransitionsAfterFailure(t *testing.T) {
	lc := NewLifecycle()
	lc.Fail(domain.StageTranscription)

	if err := lc.Transcribed("late"); err != ErrTurnFinished {
		t.Errorf("expected ErrTurnFinished, got %v", err)
	}
	if err := lc.Completed(); err != ErrTurnFinished {
		t.Errorf("expected ErrTurnFinished, got %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateReceived, "RECEIVED"},
		{StateTranscribed, "TRANSCRIBED"},
		{StateCompleted, "COMPLETED"},
		{StateFailed, "FAILED"},
		{State(42), "UNKNOWN(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}
