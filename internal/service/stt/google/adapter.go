// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"errors"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/service/audio"
)

const providerName = "google"

// Config holds recognition settings for uploaded clips.
type Config struct {
	LanguageCode  string
	SampleRateHz  int32
	AudioEncoding string
	Timeout       time.Duration
}

// DefaultConfig matches what browsers record with MediaRecorder.
func DefaultConfig() Config {
	return Config{
		LanguageCode:  "en-US",
		SampleRateHz:  48000,
		AudioEncoding: "WEBM_OPUS",
		Timeout:       30 * time.Second,
	}
}

type recognizeFunc func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error)

// Adapter implements stt.Transcriber using synchronous recognition.
type Adapter struct {
	recognize recognizeFunc
	closer    func() error
	cfg       Config
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		recognize: func(ctx context.Context, req *speechpb.RecognizeRequest) (*speechpb.RecognizeResponse, error) {
			return c.Recognize(ctx, req)
		},
		closer: c.Close,
		cfg:    cfg,
	}, nil
}

func (a *Adapter) Name() string { return providerName }

// Transcribe sends the whole clip in one Recognize call and joins the
// top alternative of every result.
func (a *Adapter) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	resp, err := a.recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        parseAudioEncoding(a.cfg.AudioEncoding),
			SampleRateHertz: a.cfg.SampleRateHz,
			LanguageCode:    a.cfg.LanguageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: clip.Data},
		},
	})
	if err != nil {
		return "", upstreamError(ctx, err)
	}

	parts := make([]string, 0, len(resp.GetResults()))
	for _, r := range resp.GetResults() {
		if len(r.GetAlternatives()) == 0 {
			continue
		}
		if t := strings.TrimSpace(r.GetAlternatives()[0].GetTranscript()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}

// Close releases the underlying gRPC connection.
func (a *Adapter) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

func upstreamError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	st, ok := status.FromError(err)
	if !ok {
		return &domain.UpstreamError{Provider: providerName, Code: "unknown", Detail: err.Error(), Err: err}
	}
	if st.Code() == codes.DeadlineExceeded {
		return errors.Join(context.DeadlineExceeded, err)
	}
	return &domain.UpstreamError{
		Provider: providerName,
		Code:     st.Code().String(),
		Detail:   st.Message(),
		Err:      err,
	}
}

// parseAudioEncoding converts string encoding to protobuf enum.
func parseAudioEncoding(encoding string) speechpb.RecognitionConfig_AudioEncoding {
	switch encoding {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC
	case "AMR":
		return speechpb.RecognitionConfig_AMR
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
