// Package tts defines the text-to-speech contract.
package tts

import "context"

// Speech is a synthesized audio payload.
type Speech struct {
	Data        []byte
	ContentType string
}

// Synthesizer converts text into audio in a single request.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Speech, error)
	Name() string
}
