// Package chat exposes incremental chat completion and speech synthesis.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/observability/logging"
	"github.com/syedarman1/screenme-sub001/internal/observability/metrics"
	"github.com/syedarman1/screenme-sub001/internal/service/llm"
	"github.com/syedarman1/screenme-sub001/internal/service/tts"
)

const tracerName = "github.com/syedarman1/screenme-sub001/internal/service/chat"

// MaxSpeechChars caps a single synthesis request.
const MaxSpeechChars = 4096

// WireMessage is a caller-supplied chat message before role validation.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Config struct {
	MaxTokens   int
	Temperature float32
}

type Service struct {
	completer   llm.Completer
	synthesizer tts.Synthesizer
	metrics     *metrics.Metrics
	cfg         Config
}

func New(completer llm.Completer, synthesizer tts.Synthesizer, cfg Config, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Service{completer: completer, synthesizer: synthesizer, metrics: m, cfg: cfg}
}

// ParseMessages maps caller roles onto completion roles. Any unknown role
// or an empty list is rejected.
func ParseMessages(in []WireMessage) ([]domain.Message, error) {
	if len(in) == 0 {
		return nil, domain.InvalidMessages(errors.New("messages must not be empty"))
	}
	out := make([]domain.Message, 0, len(in))
	for i, m := range in {
		role, err := domain.ParseRole(m.Role)
		if err != nil {
			return nil, domain.InvalidMessages(fmt.Errorf("message %d: %w", i, err))
		}
		out = append(out, domain.Message{Role: role, Content: m.Content})
	}
	return out, nil
}

// Stream validates the messages and forwards each fragment to onChunk in
// arrival order. Validation failures return before the upstream call.
// An error returned by onChunk stops the stream and is returned unchanged.
func (s *Service) Stream(ctx context.Context, requestID string, in []WireMessage, onChunk llm.ChunkFunc) error {
	logger := logging.WithRequest(requestID, "chat-stream")

	messages, err := ParseMessages(in)
	if err != nil {
		return err
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "chat.stream", trace.WithAttributes(
		attribute.String("llm.provider", s.completer.Name()),
		attribute.Int("messages", len(messages)),
	))
	defer span.End()

	var callbackErr error
	chunks := 0
	start := time.Now()
	err = s.completer.Stream(ctx, llm.Request{
		Messages:    messages,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}, func(fragment string) error {
		chunks++
		s.metrics.RecordStreamChunk()
		if err := onChunk(fragment); err != nil {
			callbackErr = err
			return err
		}
		return nil
	})

	if callbackErr != nil && errors.Is(err, callbackErr) {
		logger.Info().Err(err).Int("chunks", chunks).Msg("Stream stopped by consumer")
		return err
	}

	s.metrics.RecordUpstream(s.completer.Name(), string(domain.StageStreaming), err, domain.UpstreamCode(err), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "stream failed")
		derr := domain.Upstream(domain.KindStreamingFailed, domain.StageStreaming, err)
		logger.Error().Err(err).Str("code", derr.Code).Int("chunks", chunks).Msg("Chat stream failed")
		return derr
	}

	if chunks == 0 {
		logger.Warn().Msg("Chat stream produced no content")
		s.metrics.RecordEmptyResult(string(domain.StageStreaming))
	}
	logger.Debug().Int("chunks", chunks).Dur("elapsed", time.Since(start)).Msg("Chat stream finished")
	return nil
}

// Speak synthesizes text to audio in a single request.
func (s *Service) Speak(ctx context.Context, requestID, text string) (tts.Speech, error) {
	logger := logging.WithRequest(requestID, "speech")

	text = strings.TrimSpace(text)
	if text == "" {
		return tts.Speech{}, domain.ErrMissingText
	}
	if len([]rune(text)) > MaxSpeechChars {
		return tts.Speech{}, domain.InputTooLong(MaxSpeechChars)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "chat.speak", trace.WithAttributes(
		attribute.String("tts.provider", s.synthesizer.Name()),
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	start := time.Now()
	speech, err := s.synthesizer.Synthesize(ctx, text)
	s.metrics.RecordUpstream(s.synthesizer.Name(), string(domain.StageSynthesis), err, domain.UpstreamCode(err), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "synthesis failed")
		derr := domain.Upstream(domain.KindSynthesisFailed, domain.StageSynthesis, err)
		logger.Error().Err(err).Str("code", derr.Code).Msg("Speech synthesis failed")
		return tts.Speech{}, derr
	}

	logger.Debug().Int("bytes", len(speech.Data)).Msg("Speech synthesized")
	return speech, nil
}
