// Package stt defines the interface for Speech-to-Text adapters.
package stt

import (
	"context"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/service/audio"
)

// Transcriber turns one recorded utterance into text.
// An empty transcript (silence) is a successful result, not an error.
type Transcriber interface {
	// Transcribe submits the clip to the provider and returns the text.
	Transcribe(ctx context.Context, clip audio.Clip) (string, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// Unavailable is used when the provider could not be configured at startup.
// Every call fails fast without touching the network.
type Unavailable struct {
	Provider string
}

func (u Unavailable) Transcribe(context.Context, audio.Clip) (string, error) {
	return "", domain.ErrServiceUnavailable
}

func (u Unavailable) Name() string { return u.Provider }

// Available always reports false.
func (u Unavailable) Available() bool { return false }
