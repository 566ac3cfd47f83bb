// Package prep generates likely interview questions with model answers for a
// job description and validates the model output before returning it.
package prep

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/syedarman1/screenme-sub001/internal/domain"
	"github.com/syedarman1/screenme-sub001/internal/models"
	"github.com/syedarman1/screenme-sub001/internal/observability/logging"
	"github.com/syedarman1/screenme-sub001/internal/observability/metrics"
	"github.com/syedarman1/screenme-sub001/internal/schema"
	"github.com/syedarman1/screenme-sub001/internal/service/llm"
)

const (
	tracerName = "github.com/syedarman1/screenme-sub001/internal/service/prep"
	schemaName = "interview_prep"
)

const systemPrompt = `You are an experienced hiring manager and interview coach.
Read the job description and write between 5 and 10 questions the candidate is
likely to be asked in an interview for this role. For each question write a
strong model answer in the first person that the candidate could adapt.
Respond only with a JSON object of the form
{"questions":[{"question":"...","modelAnswer":"..."}]}.
Each question must be at least 10 characters and each model answer at least 20 characters.`

// Publisher receives prep events. Publishing is best effort.
type Publisher interface {
	PublishPrep(ctx context.Context, key, eventType string, event any) error
}

// Request is the caller input. Context is optional background about the
// candidate, such as resume highlights.
type Request struct {
	RequestID string
	Job       string
	Context   string
}

type Service struct {
	completer   llm.Completer
	validator   *schema.Validator
	publisher   Publisher
	metrics     *metrics.Metrics
	temperature float32
}

func New(completer llm.Completer, validator *schema.Validator, temperature float32, publisher Publisher, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.DefaultMetrics
	}
	return &Service{
		completer:   completer,
		validator:   validator,
		publisher:   publisher,
		metrics:     m,
		temperature: temperature,
	}
}

// Generate returns a validated prep set. The raw model text is kept on
// UpstreamMalformedJSON and SchemaMismatch errors.
func (s *Service) Generate(ctx context.Context, req Request) (*domain.PrepResult, error) {
	logger := logging.WithRequest(req.RequestID, "interview-prep")

	job := strings.TrimSpace(req.Job)
	if job == "" {
		s.metrics.RecordPrep("rejected")
		return nil, domain.ErrMissingInput
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "prep.generate", trace.WithAttributes(
		attribute.String("llm.provider", s.completer.Name()),
		attribute.Int("job.length", len(job)),
	))
	defer span.End()

	start := time.Now()
	raw, err := s.completer.Complete(ctx, llm.Request{
		Messages:    buildMessages(job, req.Context),
		Temperature: s.temperature,
		Schema:      &llm.ResponseSchema{Name: schemaName, Schema: s.validator.JSONSchema()},
	})
	s.metrics.RecordUpstream(s.completer.Name(), string(domain.StageGeneration), err, domain.UpstreamCode(err), time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "generation failed")
		derr := domain.Upstream(domain.KindCompletionFailed, domain.StageGeneration, err)
		logger.Error().Err(err).Str("kind", string(derr.Kind)).Str("code", derr.Code).Msg("Interview prep generation failed")
		s.metrics.RecordPrep("failed")
		return nil, derr
	}

	result, err := s.validator.Parse(raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "invalid model output")
		var derr *domain.Error
		if errors.As(err, &derr) && derr.Kind == domain.KindSchemaMismatch {
			s.metrics.RecordPrep("schema_mismatch")
		} else {
			s.metrics.RecordPrep("malformed")
		}
		logger.Warn().Err(err).Int("rawChars", len(raw)).Msg("Model returned unusable interview prep")
		return nil, err
	}

	s.metrics.RecordPrep("ok")
	logger.Info().Int("questions", len(result.Questions)).Msg("Interview prep generated")

	if s.publisher != nil {
		ev := models.NewPrepGenerated(req.RequestID, time.Now())
		ev.QuestionCount = len(result.Questions)
		ev.JobDescLength = len(job)
		ev.HasUserContext = strings.TrimSpace(req.Context) != ""

		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.publisher.PublishPrep(pubCtx, req.RequestID, ev.EventType, ev); err != nil {
			logger.Warn().Err(err).Msg("Failed to publish prep event")
		}
	}
	return result, nil
}

func buildMessages(job, userContext string) []domain.Message {
	msgs := []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt},
		{Role: domain.RoleUser, Content: "Job description:\n" + job},
	}
	if c := strings.TrimSpace(userContext); c != "" {
		msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: "About me:\n" + c})
	}
	return msgs
}
