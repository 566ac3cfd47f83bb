// Package llm defines the chat completion contract used by the services.
package llm

import (
	"context"
	"encoding/json"

	"github.com/syedarman1/screenme-sub001/internal/domain"
)

// ResponseSchema asks the provider to constrain output to a JSON schema.
type ResponseSchema struct {
	Name   string
	Schema json.Marshaler
}

// Request is one chat completion call.
type Request struct {
	Messages    []domain.Message
	MaxTokens   int
	Temperature float32
	Schema      *ResponseSchema
}

// ChunkFunc receives streamed text fragments in arrival order.
type ChunkFunc func(fragment string) error

// Completer generates chat completions.
type Completer interface {
	// Complete blocks until the full reply is available.
	Complete(ctx context.Context, req Request) (string, error)

	// Stream invokes onChunk once per non-empty fragment and returns when the
	// provider ends the stream.
	Stream(ctx context.Context, req Request, onChunk ChunkFunc) error

	// Name identifies the provider in logs and metrics.
	Name() string
}
