package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Service       ServiceConfig
	OpenAI        OpenAIConfig
	STT           STTConfig
	Chat          ChatConfig
	TTS           TTSConfig
	Audio         AudioConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name        string   `env:"SERVICE_NAME" envDefault:"interview-assist"`
	Environment string   `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort    string   `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort    string   `env:"GRPC_PORT" envDefault:"50051"`
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

type OpenAIConfig struct {
	APIKey          string        `env:"OPENAI_API_KEY"`
	BaseURL         string        `env:"OPENAI_BASE_URL"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`
}

// Configured reports whether an API credential was supplied.
func (c OpenAIConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type STTConfig struct {
	Provider      string `env:"STT_PROVIDER" envDefault:"openai"`
	Model         string `env:"TRANSCRIPTION_MODEL" envDefault:"whisper-1"`
	LanguageCode  string `env:"STT_LANGUAGE_CODE" envDefault:"en-US"`
	SampleRateHz  int32  `env:"STT_SAMPLE_RATE_HZ" envDefault:"48000"`
	AudioEncoding string `env:"STT_AUDIO_ENCODING" envDefault:"WEBM_OPUS"`
}

type ChatConfig struct {
	Model           string  `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	MaxTokens       int     `env:"CHAT_MAX_TOKENS" envDefault:"100"`
	Temperature     float32 `env:"CHAT_TEMPERATURE" envDefault:"0.75"`
	PrepTemperature float32 `env:"PREP_TEMPERATURE" envDefault:"0.3"`
}

type TTSConfig struct {
	Model string `env:"TTS_MODEL" envDefault:"tts-1"`
	Voice string `env:"TTS_VOICE" envDefault:"alloy"`
}

type AudioConfig struct {
	MaxBytes int64 `env:"AUDIO_MAX_BYTES" envDefault:"26214400"`
}

type KafkaConfig struct {
	Enabled    bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers    []string `env:"KAFKA_BROKERS" envSeparator:","`
	TopicTurns string   `env:"KAFKA_TOPIC_TURNS" envDefault:"conversation.turns"`
	TopicPrep  string   `env:"KAFKA_TOPIC_PREP" envDefault:"interview.prep"`
	Principal  string   `env:"KAFKA_PRINCIPAL"`
}

type ObservabilityConfig struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	MetricsPort  string `env:"METRICS_PORT" envDefault:"9090"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders  string `env:"OTEL_EXPORTER_OTLP_HEADERS"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Name
	}
	cfg.STT.Provider = strings.ToLower(strings.TrimSpace(cfg.STT.Provider))

	switch cfg.STT.Provider {
	case "openai", "google", "mock":
	default:
		return nil, fmt.Errorf("unsupported STT_PROVIDER %q", cfg.STT.Provider)
	}
	if cfg.Chat.MaxTokens <= 0 {
		return nil, fmt.Errorf("CHAT_MAX_TOKENS must be positive, got %d", cfg.Chat.MaxTokens)
	}
	if cfg.Audio.MaxBytes <= 0 {
		return nil, fmt.Errorf("AUDIO_MAX_BYTES must be positive, got %d", cfg.Audio.MaxBytes)
	}
	return cfg, nil
}
