package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/syedarman1/screenme-sub001/internal/config"
	"github.com/syedarman1/screenme-sub001/internal/events"
	"github.com/syedarman1/screenme-sub001/internal/observability/logging"
	"github.com/syedarman1/screenme-sub001/internal/observability/metrics"
	"github.com/syedarman1/screenme-sub001/internal/schema"
	"github.com/syedarman1/screenme-sub001/internal/service/audio"
	"github.com/syedarman1/screenme-sub001/internal/service/chat"
	"github.com/syedarman1/screenme-sub001/internal/service/conversation"
	"github.com/syedarman1/screenme-sub001/internal/service/openai"
	"github.com/syedarman1/screenme-sub001/internal/service/prep"
	"github.com/syedarman1/screenme-sub001/internal/service/stt"
	"github.com/syedarman1/screenme-sub001/internal/service/stt/google"
	"github.com/syedarman1/screenme-sub001/internal/service/stt/mock"
)

// Application holds process-wide state for the service. Everything in it is
// built once at startup and read-only afterwards.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Config
	Metrics     *metrics.Metrics

	Turns *conversation.Processor
	Prep  *prep.Service
	Chat  *chat.Service

	// Readiness reports whether upstream AI calls can be attempted.
	Readiness func() bool

	publisher *events.Publisher
	closers   []func() error
}

// New constructs the application and its upstream clients from cfg. A
// missing OpenAI key is not an error: the service starts, logs a warning and
// reports not ready.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	a := &Application{
		Cfg:     cfg,
		Logger:  logging.WithComponent("application"),
		Metrics: metrics.DefaultMetrics,
	}

	client := openai.New(openai.Config{
		APIKey:             cfg.OpenAI.APIKey,
		BaseURL:            cfg.OpenAI.BaseURL,
		Timeout:            cfg.OpenAI.UpstreamTimeout,
		TranscriptionModel: cfg.STT.Model,
		ChatModel:          cfg.Chat.Model,
		SpeechModel:        cfg.TTS.Model,
		SpeechVoice:        cfg.TTS.Voice,
	})
	a.Readiness = client.Available

	transcriber, err := a.newTranscriber(ctx, client)
	if err != nil {
		return nil, err
	}

	a.publisher = events.New(&events.Config{
		Enabled:    cfg.Kafka.Enabled,
		Brokers:    cfg.Kafka.Brokers,
		TopicTurns: cfg.Kafka.TopicTurns,
		TopicPrep:  cfg.Kafka.TopicPrep,
		Principal:  cfg.Kafka.Principal,
		Metrics:    a.Metrics,
	})
	a.closers = append(a.closers, a.publisher.Close)

	a.Turns = conversation.New(transcriber, client, conversation.Config{
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
		Limits:      audio.Limits{MaxBytes: cfg.Audio.MaxBytes},
	}, conversation.WithPublisher(a.publisher), conversation.WithMetrics(a.Metrics))

	a.Prep = prep.New(client, schema.New(), cfg.Chat.PrepTemperature, a.publisher, a.Metrics)

	a.Chat = chat.New(client, client, chat.Config{
		MaxTokens:   cfg.Chat.MaxTokens,
		Temperature: cfg.Chat.Temperature,
	}, a.Metrics)

	a.Logger.Info().
		Str("sttProvider", transcriber.Name()).
		Str("chatModel", cfg.Chat.Model).
		Bool("aiConfigured", client.Available()).
		Bool("kafkaEnabled", cfg.Kafka.Enabled).
		Msg("Interview assist application created")
	return a, nil
}

func (a *Application) newTranscriber(ctx context.Context, client *openai.Client) (stt.Transcriber, error) {
	switch a.Cfg.STT.Provider {
	case "openai":
		return client, nil
	case "mock":
		a.Logger.Warn().Msg("Using mock speech-to-text provider")
		return mock.New(), nil
	case "google":
		g, err := google.New(ctx, google.Config{
			LanguageCode:  a.Cfg.STT.LanguageCode,
			SampleRateHz:  a.Cfg.STT.SampleRateHz,
			AudioEncoding: a.Cfg.STT.AudioEncoding,
			Timeout:       a.Cfg.OpenAI.UpstreamTimeout,
		})
		if err != nil {
			a.Logger.Warn().Err(err).Msg("Google Speech-to-Text unavailable; transcription will report service unavailable")
			return stt.Unavailable{Provider: "google"}, nil
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	default:
		return nil, errors.New("unsupported STT provider " + a.Cfg.STT.Provider)
	}
}

// Ready reports whether upstream AI calls can be attempted.
func (a *Application) Ready() bool {
	return a.Readiness != nil && a.Readiness()
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	a.StartupTime = time.Now().UTC()
	a.Logger.Info().
		Time("startupTime", a.StartupTime).
		Bool("ready", a.Ready()).
		Msg("Interview assist service starting")
	return nil
}

// Shutdown closes upstream clients and the event publisher.
func (a *Application) Shutdown() {
	a.Logger.Info().Msg("Interview assist service shutting down")
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn().Err(err).Msg("Error during shutdown")
		}
	}
}
