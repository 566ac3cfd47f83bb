package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTurnCompleted(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	ev := NewTurnCompleted("req-1", now)

	if ev.EventType != EventTurnCompleted {
		t.Errorf("expected eventType %q, got %q", EventTurnCompleted, ev.EventType)
	}
	if _, err := uuid.Parse(ev.EventID); err != nil {
		t.Errorf("expected uuid event id, got %q", ev.EventID)
	}
	if ev.Timestamp != 1700000000000 {
		t.Errorf("expected timestamp 1700000000000, got %d", ev.Timestamp)
	}
}

func TestNewTurnFailed_OmitsMissingTranscript(t *testing.T) {
	ev := NewTurnFailed("", time.Now())
	ev.Stage = "transcription"
	ev.Kind = "TranscriptionFailed"

	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["transcript"]; ok {
		t.Error("expected transcript to be omitted")
	}
	if _, ok := decoded["requestId"]; ok {
		t.Error("expected empty requestId to be omitted")
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	now := time.Now()
	a := NewPrepGenerated("r", now)
	b := NewPrepGenerated("r", now)
	if a.EventID == b.EventID {
		t.Error("expected distinct event ids")
	}
}
