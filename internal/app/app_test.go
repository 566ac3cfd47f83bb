package app

import (
	"context"
	"testing"

	"github.com/syedarman1/screenme-sub001/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Service: config.ServiceConfig{Name: "interview-assist-test"},
		STT:     config.STTConfig{Provider: "mock", Model: "whisper-1"},
		Chat:    config.ChatConfig{Model: "gpt-4o-mini", MaxTokens: 100, Temperature: 0.75, PrepTemperature: 0.3},
		TTS:     config.TTSConfig{Model: "tts-1", Voice: "alloy"},
		Audio:   config.AudioConfig{MaxBytes: 1 << 20},
	}
}

func TestNew_WithoutAPIKey(t *testing.T) {
	a, err := New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Shutdown()

	if a.Ready() {
		t.Error("expected application to be not ready without an API key")
	}
	if a.Turns == nil || a.Prep == nil || a.Chat == nil {
		t.Error("expected all services to be constructed")
	}
}

func TestNew_WithAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAI.APIKey = "sk-test"

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Shutdown()

	if !a.Ready() {
		t.Error("expected application to be ready with an API key")
	}
	if err := a.Start(); err != nil {
		t.Errorf("unexpected start error: %v", err)
	}
	if a.StartupTime.IsZero() {
		t.Error("expected startup time to be set")
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	cfg := testConfig()
	cfg.STT.Provider = "whisper-local"

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestReady_NilReadiness(t *testing.T) {
	a := &Application{}
	if a.Ready() {
		t.Error("expected zero Application to be not ready")
	}
}
