// Package conversation runs one spoken interview turn: transcribe the
// utterance, append it to the caller's history and ask for a reply.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/models"
	"github.com/syedarman1/screenme-sub001/internal/observability/logging"
	"github.com/syedarman1/screenme-sub001/internal/observability/metrics"
	"github.com/syedarman1/screenme-sub001/internal/service/audio"
	"github.com/syedarman1/screenme-sub001/internal/service/llm"
	"github.com/syedarman1/screenme-sub001/internal/service/stt"
)

const tracerName = "github.com/syedarman1/screenme-sub001/internal/service/conversation"

// availability is implemented by adapters that know before any network call
// whether their provider is configured.
type availability interface {
	Available() bool
}

func available(adapter any) bool {
	a, ok := adapter.(availability)
	return !ok || a.Available()
}

// Publisher receives turn events. Publishing is best effort.
type Publisher interface {
	PublishTurn(ctx context.Context, key, eventType string, event any) error
}

// Config bounds the completion request made for each turn.
type Config struct {
	MaxTokens   int
	Temperature float32
	Limits      audio.Limits
}

// DefaultConfig returns the reply budget used by the web client.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   100,
		Temperature: 0.75,
		Limits:      audio.DefaultLimits(),
	}
}

// Input is one turn request. A nil Audio means the field was not sent; a
// non-nil empty slice means an empty file was uploaded.
type Input struct {
	RequestID string
	Audio     []byte
	Filename  string
	History   string
}

// Processor is stateless between calls and safe for concurrent use.
type Processor struct {
	transcriber stt.Transcriber
	completer   llm.Completer
	publisher   Publisher
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	cfg         Config
	now         func() time.Time
}

// Option customizes a Processor.
type Option func(*Processor)

// WithPublisher sets the turn event publisher.
func WithPublisher(p Publisher) Option {
	return func(proc *Processor) { proc.publisher = p }
}

// WithMetrics overrides metrics.DefaultMetrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(proc *Processor) { proc.metrics = m }
}

// WithClock overrides time.Now, used for turn ids and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(proc *Processor) { proc.now = now }
}

func New(transcriber stt.Transcriber, completer llm.Completer, cfg Config, opts ...Option) *Processor {
	p := &Processor{
		transcriber: transcriber,
		completer:   completer,
		metrics:     metrics.DefaultMetrics,
		tracer:      otel.Tracer(tracerName),
		cfg:         cfg,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessTurn validates the input, transcribes the audio, appends the user
// turn to a copy of the history and returns the transcript with the reply.
// Validation failures and unconfigured providers return before any upstream
// call. Any failure after transcription carries the transcript.
func (p *Processor) ProcessTurn(ctx context.Context, in Input) (domain.TurnResult, error) {
	logger := logging.WithRequest(in.RequestID, "conversation-turn")
	start := p.now()

	clip, history, err := p.validate(in)
	if err != nil {
		logger.Info().Err(err).Msg("Rejected conversation turn")
		p.metrics.RecordTurn("rejected")
		return domain.TurnResult{}, err
	}
	p.metrics.RecordAudioReceived(clip.Size(), clip.MIMEType)

	if !available(p.transcriber) || !available(p.completer) {
		logger.Warn().
			Bool("transcriber", available(p.transcriber)).
			Bool("completer", available(p.completer)).
			Msg("AI provider not configured, skipping turn")
		p.metrics.RecordTurn("unavailable")
		return domain.TurnResult{}, domain.ErrServiceUnavailable
	}

	lc := NewLifecycle()

	transcript, err := p.transcribe(ctx, clip, logger)
	if err != nil {
		derr := domain.Upstream(domain.KindTranscriptionFailed, domain.StageTranscription, err)
		return domain.TurnResult{}, p.fail(ctx, in.RequestID, lc, domain.StageTranscription, derr, logger)
	}
	if err := lc.Transcribed(transcript); err != nil {
		return domain.TurnResult{}, domain.Internal(err)
	}

	turn := domain.Turn{
		ID:      history.NextID(p.now()),
		Speaker: domain.SpeakerUser,
		Text:    transcript,
	}
	updated := history.Append(turn)

	reply, err := p.complete(ctx, updated, logger)
	if err != nil {
		derr := domain.Upstream(domain.KindCompletionFailed, domain.StageCompletion, err)
		return domain.TurnResult{}, p.fail(ctx, in.RequestID, lc, domain.StageCompletion, derr, logger)
	}
	if err := lc.Completed(); err != nil {
		return domain.TurnResult{}, domain.Internal(err)
	}

	elapsed := p.now().Sub(start)
	logger.Info().
		Int64("turnId", turn.ID).
		Int("historyLength", len(updated)).
		Int("transcriptChars", len(transcript)).
		Int("replyChars", len(reply)).
		Dur("elapsed", elapsed).
		Msg("Conversation turn completed")
	p.metrics.RecordTurn("completed")

	ev := models.NewTurnCompleted(in.RequestID, p.now())
	ev.TurnID = turn.ID
	ev.HistoryLength = len(updated)
	ev.Transcript = transcript
	ev.Reply = reply
	ev.Transcriber = p.transcriber.Name()
	ev.Completer = p.completer.Name()
	ev.DurationMs = elapsed.Milliseconds()
	p.publish(ctx, in.RequestID, ev.EventType, ev, logger)

	return domain.TurnResult{Transcript: transcript, Reply: reply}, nil
}

// Transcribe runs only the speech-to-text stage on a raw upload.
func (p *Processor) Transcribe(ctx context.Context, requestID string, data []byte, filename string) (string, error) {
	logger := logging.WithRequest(requestID, "transcribe")

	if data == nil {
		return "", domain.ErrMissingAudio
	}
	clip, err := audio.Inspect(data, filename, p.cfg.Limits)
	if err != nil {
		return "", err
	}
	p.metrics.RecordAudioReceived(clip.Size(), clip.MIMEType)

	if !available(p.transcriber) {
		return "", domain.ErrServiceUnavailable
	}

	transcript, err := p.transcribe(ctx, clip, logger)
	if err != nil {
		derr := domain.Upstream(domain.KindTranscriptionFailed, domain.StageTranscription, err)
		logger.Error().Err(err).Str("code", derr.Code).Msg("Transcription failed")
		return "", derr
	}
	return transcript, nil
}

func (p *Processor) validate(in Input) (audio.Clip, domain.History, error) {
	if in.Audio == nil {
		return audio.Clip{}, nil, domain.ErrMissingAudio
	}
	clip, err := audio.Inspect(in.Audio, in.Filename, p.cfg.Limits)
	if err != nil {
		return audio.Clip{}, nil, err
	}
	history, err := domain.ParseHistory(in.History)
	if err != nil {
		return audio.Clip{}, nil, err
	}
	return clip, history, nil
}

func (p *Processor) transcribe(ctx context.Context, clip audio.Clip, logger zerolog.Logger) (string, error) {
	ctx, span := p.tracer.Start(ctx, "conversation.transcribe", trace.WithAttributes(
		attribute.String("stt.provider", p.transcriber.Name()),
		attribute.Int("audio.bytes", clip.Size()),
		attribute.String("audio.mime", clip.MIMEType),
	))
	defer span.End()

	start := time.Now()
	transcript, err := p.transcriber.Transcribe(ctx, clip)
	p.recordUpstream(p.transcriber.Name(), domain.StageTranscription, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "transcription failed")
		return "", err
	}

	if strings.TrimSpace(transcript) == "" {
		logger.Warn().Str("provider", p.transcriber.Name()).Msg("Transcription returned empty text")
		p.metrics.RecordEmptyResult(string(domain.StageTranscription))
	}
	return transcript, nil
}

func (p *Processor) complete(ctx context.Context, history domain.History, logger zerolog.Logger) (string, error) {
	ctx, span := p.tracer.Start(ctx, "conversation.complete", trace.WithAttributes(
		attribute.String("llm.provider", p.completer.Name()),
		attribute.Int("history.length", len(history)),
	))
	defer span.End()

	messages, err := history.Messages()
	if err != nil {
		return "", domain.Internal(err)
	}

	start := time.Now()
	reply, err := p.completer.Complete(ctx, llm.Request{
		Messages:    messages,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	p.recordUpstream(p.completer.Name(), domain.StageCompletion, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "completion failed")
		return "", err
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		logger.Warn().Str("provider", p.completer.Name()).Msg("Completion returned empty reply")
		p.metrics.RecordEmptyResult(string(domain.StageCompletion))
	}
	return reply, nil
}

func (p *Processor) recordUpstream(provider string, stage domain.Stage, err error, elapsed time.Duration) {
	p.metrics.RecordUpstream(provider, string(stage), err, domain.UpstreamCode(err), elapsed.Seconds())
}

// fail moves the lifecycle to FAILED and returns derr carrying the transcript
// when one was obtained before the failing stage.
func (p *Processor) fail(ctx context.Context, requestID string, lc *Lifecycle, stage domain.Stage, derr *domain.Error, logger zerolog.Logger) *domain.Error {
	if !lc.Fail(stage) {
		return domain.Internal(fmt.Errorf("turn already %s, cannot fail at %s", lc.State(), stage))
	}

	var transcript *string
	if text, ok := lc.Transcript(); ok {
		derr = derr.WithTranscript(text)
		transcript = derr.Transcript
	}

	logger.Error().
		Err(derr.Err).
		Str("kind", string(derr.Kind)).
		Str("stage", string(lc.FailedStage())).
		Str("code", derr.Code).
		Bool("hasTranscript", transcript != nil).
		Msg("Conversation turn failed")
	p.metrics.RecordTurn("failed")

	ev := models.NewTurnFailed(requestID, p.now())
	ev.Stage = string(lc.FailedStage())
	ev.Kind = string(derr.Kind)
	ev.Code = derr.Code
	ev.Transcript = transcript
	p.publish(ctx, requestID, ev.EventType, ev, logger)
	return derr
}

func (p *Processor) publish(ctx context.Context, key, eventType string, event any, logger zerolog.Logger) {
	if p.publisher == nil {
		return
	}
	// Publishing must not be cut short by a client that already got its answer.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := p.publisher.PublishTurn(pubCtx, key, eventType, event); err != nil {
		logger.Warn().Err(err).Str("eventType", eventType).Msg("Failed to publish turn event")
	}
}
