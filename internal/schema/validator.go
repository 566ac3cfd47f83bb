// Package schema parses and validates structured model output.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/invopop/jsonschema"

	"github.com/syedarman1/screenme-sub001/internal/domain"
)

// Validator checks generated interview-prep payloads against the result
// schema. It is stateless and safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

func New() *Validator {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	s := r.Reflect(&domain.PrepResult{})
	s.Version = ""
	s.ID = ""
	return &Validator{schema: s}
}

// JSONSchema returns the schema sent to the model as its response format.
func (v *Validator) JSONSchema() *jsonschema.Schema {
	return v.schema
}

// Validate checks field presence, minimum string lengths and the number of
// questions. It is a pure function of the value.
func (v *Validator) Validate(result *domain.PrepResult) error {
	return validation.ValidateStruct(result,
		validation.Field(&result.Questions,
			validation.Required,
			validation.Length(domain.MinPrepQuestions, domain.MaxPrepQuestions),
			validation.Each(validation.By(validateQuestion)),
		),
	)
}

func validateQuestion(value interface{}) error {
	q, ok := value.(domain.PrepQuestion)
	if !ok {
		return fmt.Errorf("unexpected question type %T", value)
	}
	return validation.ValidateStruct(&q,
		validation.Field(&q.Question, validation.Required, validation.RuneLength(domain.MinQuestionLength, 0)),
		validation.Field(&q.ModelAnswer, validation.Required, validation.RuneLength(domain.MinModelAnswerLength, 0)),
	)
}

// Parse decodes raw model output and validates it. Text that is not JSON
// yields UpstreamMalformedJSON. Well-formed JSON of the wrong shape, including
// wrong value types, yields SchemaMismatch with the offending fields in
// Issues. Both carry the raw text.
func (v *Validator) Parse(raw string) (*domain.PrepResult, error) {
	body := []byte(stripCodeFence(raw))

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &domain.Error{
			Kind:    domain.KindUpstreamMalformedJSON,
			Message: "AI returned invalid JSON",
			Stage:   domain.StageGeneration,
			Raw:     raw,
			Err:     err,
		}
	}

	var result domain.PrepResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, mismatch(raw, decodeIssues(err))
	}
	if err := v.Validate(&result); err != nil {
		return nil, mismatch(raw, err)
	}
	return &result, nil
}

func mismatch(raw string, issues error) *domain.Error {
	return &domain.Error{
		Kind:    domain.KindSchemaMismatch,
		Message: "AI response did not match the expected format",
		Stage:   domain.StageGeneration,
		Raw:     raw,
		Issues:  issues,
		Err:     issues,
	}
}

// decodeIssues reports a type error against the field path it occurred at,
// in the same shape as validation failures. "$" is the document root.
func decodeIssues(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "$"
		}
		return validation.Errors{
			field: fmt.Errorf("must be %s, got %s", jsonKind(typeErr.Type), typeErr.Value),
		}
	}
	return validation.Errors{"$": err}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}

// stripCodeFence removes a markdown ```json fence some models wrap output in.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
