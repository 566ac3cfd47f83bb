// Package models defines the events published after each operation.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTurnCompleted = "conversation.turn.completed"
	EventTurnFailed    = "conversation.turn.failed"
	EventPrepGenerated = "interview.prep.generated"
)

// TurnCompleted is emitted when a conversation turn produced a reply.
type TurnCompleted struct {
	EventType     string `json:"eventType"`
	EventID       string `json:"eventId"`
	RequestID     string `json:"requestId,omitempty"`
	Timestamp     int64  `json:"timestamp"`
	TurnID        int64  `json:"turnId"`
	HistoryLength int    `json:"historyLength"`
	Transcript    string `json:"transcript"`
	Reply         string `json:"reply"`
	Transcriber   string `json:"transcriber"`
	Completer     string `json:"completer"`
	DurationMs    int64  `json:"durationMs"`
}

// TurnFailed is emitted when a turn failed after input validation passed.
type TurnFailed struct {
	EventType  string  `json:"eventType"`
	EventID    string  `json:"eventId"`
	RequestID  string  `json:"requestId,omitempty"`
	Timestamp  int64   `json:"timestamp"`
	Stage      string  `json:"stage"`
	Kind       string  `json:"kind"`
	Code       string  `json:"code,omitempty"`
	Transcript *string `json:"transcript,omitempty"`
}

// PrepGenerated is emitted when an interview-prep set passed validation.
type PrepGenerated struct {
	EventType      string `json:"eventType"`
	EventID        string `json:"eventId"`
	RequestID      string `json:"requestId,omitempty"`
	Timestamp      int64  `json:"timestamp"`
	QuestionCount  int    `json:"questionCount"`
	JobDescLength  int    `json:"jobDescriptionLength"`
	HasUserContext bool   `json:"hasUserContext"`
}

// NewTurnCompleted stamps a TurnCompleted with a fresh id and time.
func NewTurnCompleted(requestID string, now time.Time) TurnCompleted {
	return TurnCompleted{
		EventType: EventTurnCompleted,
		EventID:   uuid.NewString(),
		RequestID: requestID,
		Timestamp: now.UnixMilli(),
	}
}

// NewTurnFailed stamps a TurnFailed with a fresh id and time.
func NewTurnFailed(requestID string, now time.Time) TurnFailed {
	return TurnFailed{
		EventType: EventTurnFailed,
		EventID:   uuid.NewString(),
		RequestID: requestID,
		Timestamp: now.UnixMilli(),
	}
}

// NewPrepGenerated stamps a PrepGenerated with a fresh id and time.
func NewPrepGenerated(requestID string, now time.Time) PrepGenerated {
	return PrepGenerated{
		EventType: EventPrepGenerated,
		EventID:   uuid.NewString(),
		RequestID: requestID,
		Timestamp: now.UnixMilli(),
	}
}
