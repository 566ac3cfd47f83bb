// Package openai adapts the hosted OpenAI API to the stt, llm and tts
// contracts. A client built without a credential never makes a network call.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/observability/logging"
	"github.com/syedarman1/screenme-sub001/internal/service/audio"
	"github.com/syedarman1/screenme-sub001/internal/service/llm"
	"github.com/syedarman1/screenme-sub001/internal/service/tts"
)

const providerName = "openai"

// Config holds the credential, endpoint and model choices.
type Config struct {
	APIKey             string
	BaseURL            string
	Timeout            time.Duration
	TranscriptionModel string
	ChatModel          string
	SpeechModel        string
	SpeechVoice        string
	HTTPClient         *http.Client
}

// Client implements stt.Transcriber, llm.Completer and tts.Synthesizer.
type Client struct {
	api    *openai.Client
	cfg    Config
	logger zerolog.Logger
}

// New builds a client. Without an API key it logs a warning and every
// method returns domain.ErrServiceUnavailable.
func New(cfg Config) *Client {
	c := &Client{cfg: cfg, logger: logging.WithComponent("openai")}
	if strings.TrimSpace(cfg.APIKey) == "" {
		c.logger.Warn().Msg("OPENAI_API_KEY is not set; AI endpoints will report service unavailable")
		return c
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}
	c.api = openai.NewClientWithConfig(apiCfg)
	return c
}

// Available reports whether a credential was configured.
func (c *Client) Available() bool {
	return c.api != nil
}

func (c *Client) Name() string { return providerName }

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// Transcribe implements stt.Transcriber.
func (c *Client) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	if !c.Available() {
		return "", domain.ErrServiceUnavailable
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.cfg.TranscriptionModel,
		FilePath: clip.Filename,
		Reader:   bytes.NewReader(clip.Data),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", upstreamError(err)
	}
	return resp.Text, nil
}

// Complete implements llm.Completer.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if !c.Available() {
		return "", domain.ErrServiceUnavailable
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, c.chatRequest(req))
	if err != nil {
		return "", upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream implements llm.Completer.
func (c *Client) Stream(ctx context.Context, req llm.Request, onChunk llm.ChunkFunc) error {
	if !c.Available() {
		return domain.ErrServiceUnavailable
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	chatReq := c.chatRequest(req)
	chatReq.Stream = true

	stream, err := c.api.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return upstreamError(err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return upstreamError(err)
		}
		for _, choice := range resp.Choices {
			if choice.Delta.Content == "" {
				continue
			}
			if err := onChunk(choice.Delta.Content); err != nil {
				return err
			}
		}
	}
}

// Synthesize implements tts.Synthesizer.
func (c *Client) Synthesize(ctx context.Context, text string) (tts.Speech, error) {
	if !c.Available() {
		return tts.Speech{}, domain.ErrServiceUnavailable
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.cfg.SpeechModel),
		Input:          text,
		Voice:          openai.SpeechVoice(c.cfg.SpeechVoice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return tts.Speech{}, upstreamError(err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return tts.Speech{}, upstreamError(err)
	}
	return tts.Speech{Data: data, ContentType: "audio/mpeg"}, nil
}

func (c *Client) chatRequest(req llm.Request) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	out := openai.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.Schema != nil {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   req.Schema.Name,
				Schema: req.Schema.Schema,
			},
		}
	}
	return out
}

// upstreamError normalizes go-openai errors into domain.UpstreamError.
// Context errors pass through so callers can report timeouts.
func upstreamError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := strconv.Itoa(apiErr.HTTPStatusCode)
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		return &domain.UpstreamError{
			Provider:   providerName,
			Code:       code,
			Detail:     apiErr.Message,
			HTTPStatus: apiErr.HTTPStatusCode,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.UpstreamError{
			Provider:   providerName,
			Code:       strconv.Itoa(reqErr.HTTPStatusCode),
			Detail:     reqErr.Error(),
			HTTPStatus: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	return &domain.UpstreamError{
		Provider: providerName,
		Code:     "network",
		Detail:   err.Error(),
		Err:      err,
	}
}
