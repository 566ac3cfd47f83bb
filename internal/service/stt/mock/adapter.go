// Package mock provides a canned Transcriber for local development and tests
// without cloud credentials.
package mock

import (
	"context"
	"sync"

	"github.com/syedarman1/screenme-sub001/internal/service/audio"
)

// DefaultUtterances are returned in rotation by New().
var DefaultUtterances = []string{
	"Tell me about a project you are proud of",
	"I led the migration of our billing system to a new payment provider",
	"How do you handle disagreements with teammates",
	"I usually start by making sure I understand their point of view",
	"Thank you for your time",
}

// Adapter implements stt.Transcriber with scripted responses.
type Adapter struct {
	mu         sync.Mutex
	utterances []string
	next       int
	calls      int
	err        error
}

// New creates a mock transcriber cycling through DefaultUtterances.
func New() *Adapter {
	return NewWithUtterances(DefaultUtterances...)
}

// NewWithUtterances creates a mock transcriber cycling through the given texts.
// With no texts it always returns an empty transcript.
func NewWithUtterances(utterances ...string) *Adapter {
	return &Adapter{utterances: utterances}
}

// FailWith makes every subsequent call return err.
func (a *Adapter) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// Transcribe returns the next scripted utterance.
func (a *Adapter) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if a.err != nil {
		return "", a.err
	}
	if len(a.utterances) == 0 {
		return "", nil
	}
	text := a.utterances[a.next%len(a.utterances)]
	a.next++
	return text, nil
}

// Calls returns how many times Transcribe was invoked.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func (a *Adapter) Name() string { return "mock" }
