package conversation

import (
	"context"
	"sync"

	"github.com/syedarman1/screenme-sub001/internal/service/audio"
	"github.com/syedarman1/screenme-sub001/internal/service/llm"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int
	clips []audio.Clip
}

func (f *fakeTranscriber) Transcribe(_ context.Context, clip audio.Clip) (string, error) {
	f.calls++
	f.clips = append(f.clips, clip)
	return f.text, f.err
}

func (f *fakeTranscriber) Name() string { return "fake-stt" }

type fakeCompleter struct {
	unconfigured bool
	reply        string
	err          error
	calls        int
	requests     []llm.Request
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	f.calls++
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeCompleter) Stream(context.Context, llm.Request, llm.ChunkFunc) error {
	return nil
}

func (f *fakeCompleter) Name() string { return "fake-llm" }

func (f *fakeCompleter) Available() bool { return !f.unconfigured }

type publishedEvent struct {
	key       string
	eventType string
	event     any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) PublishTurn(_ context.Context, key, eventType string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{key, eventType, event})
	return f.err
}
