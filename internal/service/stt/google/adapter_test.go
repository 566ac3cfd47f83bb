package google

import (
	"context"
	"errors"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/service/audio"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.LanguageCode)
	}
	if cfg.SampleRateHz != 48000 {
		t.Errorf("expected default sample rate 48000, got %d", cfg.SampleRateHz)
	}
	if cfg.AudioEncoding != "WEBM_OPUS" {
		t.Errorf("expected default encoding 'WEBM_OPUS', got %s", cfg.AudioEncoding)
	}
}

func TestParseAudioEncoding(t *testing.T) {
	tests := []struct {
		input    string
		expected speechpb.RecognitionConfig_AudioEncoding
	}{
		{"LINEAR16", speechpb.RecognitionConfig_LINEAR16},
		{"MULAW", speechpb.RecognitionConfig_MULAW},
		{"FLAC", speechpb.RecognitionConfig_FLAC},
		{"AMR_WB", speechpb.RecognitionConfig_AMR_WB},
		{"OGG_OPUS", speechpb.RecognitionConfig_OGG_OPUS},
		{"WEBM_OPUS", speechpb.RecognitionConfig_WEBM_OPUS},
		{"webm_opus", speechpb.RecognitionConfig_LINEAR16},
		{"", speechpb.RecognitionConfig_LINEAR16},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseAudioEncoding(tt.input)
			if got != tt.expected {
				t.Errorf("parseAudioEncoding(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTranscribe_JoinsResults(t *testing.T) {
	var gotReq *speechpb.RecognizeRequest
	a := &Adapter{
		cfg: DefaultConfig(),
		recognize: func(_ context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			gotReq = req
			return &speechpb.RecognizeResponse{
				Results: []*speechpb.SpeechRecognitionResult{
					{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: "I led the migration"}}},
					{},
					{Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: " to Kubernetes."}}},
				},
			}, nil
		},
	}

	text, err := a.Transcribe(context.Background(), audio.Clip{Data: []byte("opus")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "I led the migration to Kubernetes." {
		t.Errorf("unexpected transcript %q", text)
	}
	if gotReq.GetConfig().GetEncoding() != speechpb.RecognitionConfig_WEBM_OPUS {
		t.Errorf("expected WEBM_OPUS encoding, got %v", gotReq.GetConfig().GetEncoding())
	}
	if string(gotReq.GetAudio().GetContent()) != "opus" {
		t.Errorf("audio content not forwarded")
	}
}

func TestTranscribe_NoResultsIsEmpty(t *testing.T) {
	a := &Adapter{
		cfg: DefaultConfig(),
		recognize: func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return &speechpb.RecognizeResponse{}, nil
		},
	}

	text, err := a.Transcribe(context.Background(), audio.Clip{Data: []byte{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "" {
		t.Errorf("expected empty transcript, got %q", text)
	}
}

func TestTranscribe_StatusErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"invalid argument", status.Error(codes.InvalidArgument, "bad encoding"), "InvalidArgument"},
		{"unavailable", status.Error(codes.Unavailable, "try later"), "Unavailable"},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), "timeout"},
		{"plain error", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Adapter{
				cfg: DefaultConfig(),
				recognize: func(context.Context, *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
					return nil, tt.err
				},
			}

			_, err := a.Transcribe(context.Background(), audio.Clip{Data: []byte{1}})
			if err == nil {
				t.Fatal("expected error")
			}
			wrapped := domain.Upstream(domain.KindTranscriptionFailed, domain.StageTranscription, err)
			if wrapped.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, wrapped.Code)
			}
		})
	}
}
