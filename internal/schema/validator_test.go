package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/syedarman1/screenme-sub001/internal/domain"
)

func questions(n int, answer string) domain.PrepResult {
	out := domain.PrepResult{Questions: make([]domain.PrepQuestion, n)}
	for i := range out.Questions {
		out.Questions[i] = domain.PrepQuestion{
			Question:    fmt.Sprintf("Tell me about challenge %d.", i+1),
			ModelAnswer: answer,
		}
	}
	return out
}

const answer = "I broke the problem down and shipped in small increments."

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestValidator_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		result  domain.PrepResult
		wantErr bool
	}{
		{"three pairs", questions(3, answer), true},
		{"four pairs", questions(4, answer), true},
		{"exactly five", questions(5, answer), false},
		{"exactly ten", questions(10, answer), false},
		{"eleven pairs", questions(11, answer), true},
		{"short answer", questions(5, "Nineteen characters"), true},
		{"twenty char answer", questions(5, "Twenty characters ok"), false},
		{"empty", domain.PrepResult{}, true},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.result)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidator_ShortQuestion(t *testing.T) {
	r := questions(5, answer)
	r.Questions[2].Question = "Why us?"

	if err := New().Validate(&r); err == nil {
		t.Error("expected a question shorter than 10 characters to be rejected")
	}
}

func TestParse_MalformedJSON(t *testing.T) {
	raw := `{"questions": [`
	_, err := New().Parse(raw)

	var derr *domain.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if derr.Kind != domain.KindUpstreamMalformedJSON {
		t.Errorf("expected UpstreamMalformedJSON, got %s", derr.Kind)
	}
	if derr.Raw != raw {
		t.Errorf("expected raw text to be preserved, got %q", derr.Raw)
	}
}

func TestParse_SchemaMismatch(t *testing.T) {
	raw := mustJSON(t, questions(3, answer))
	_, err := New().Parse(raw)

	var derr *domain.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *domain.Error, got %T", err)
	}
	if derr.Kind != domain.KindSchemaMismatch {
		t.Errorf("expected SchemaMismatch, got %s", derr.Kind)
	}
	if derr.Issues == nil {
		t.Error("expected validation issues")
	}
	if derr.Raw != raw {
		t.Error("expected raw text to be preserved")
	}
}

func TestParse_WrongShapeIsMismatch(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"top-level array", `[1,2,3]`, "$"},
		{"top-level string", `"questions"`, "$"},
		{"questions not a list", `{"questions":"not a list"}`, "questions"},
		{"question is a number", `{"questions":[{"question":42,"modelAnswer":"` + answer + `"}]}`, "questions.question"},
		{"answer is an object", `{"questions":[{"question":"Why this team?","modelAnswer":{}}]}`, "questions.modelAnswer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse(tt.raw)

			var derr *domain.Error
			if !errors.As(err, &derr) {
				t.Fatalf("expected *domain.Error, got %T", err)
			}
			if derr.Kind != domain.KindSchemaMismatch {
				t.Fatalf("expected SchemaMismatch, got %s", derr.Kind)
			}
			if derr.Raw != tt.raw {
				t.Errorf("expected raw text to be preserved, got %q", derr.Raw)
			}

			var m json.Marshaler
			if !errors.As(derr.Issues, &m) {
				t.Fatalf("expected JSON-encodable issues, got %T", derr.Issues)
			}
			b, err := m.MarshalJSON()
			if err != nil {
				t.Fatalf("marshal issues: %v", err)
			}
			var issues map[string]any
			if err := json.Unmarshal(b, &issues); err != nil {
				t.Fatalf("unmarshal issues: %v", err)
			}
			if _, ok := issues[tt.wantField]; !ok {
				t.Errorf("expected an issue for %q, got %s", tt.wantField, b)
			}
		})
	}
}

func TestParse_NullIsMismatch(t *testing.T) {
	_, err := New().Parse("null")
	if !errors.Is(err, &domain.Error{Kind: domain.KindSchemaMismatch}) {
		t.Errorf("expected SchemaMismatch for null, got %v", err)
	}
}

func TestParse_CodeFence(t *testing.T) {
	raw := "```json\n" + mustJSON(t, questions(5, answer)) + "\n```"
	res, err := New().Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Questions) != 5 {
		t.Errorf("expected 5 questions, got %d", len(res.Questions))
	}
}

func TestParse_RoundTrip(t *testing.T) {
	v := New()
	first, err := v.Parse(mustJSON(t, questions(7, answer)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := v.Parse(mustJSON(t, first))
	if err != nil {
		t.Fatalf("unexpected error on round trip: %v", err)
	}
	if mustJSON(t, first) != mustJSON(t, second) {
		t.Error("round trip changed the structure")
	}
}

func TestJSONSchema_DeclaresBounds(t *testing.T) {
	raw := mustJSON(t, New().JSONSchema())

	var decoded struct {
		Type                 string `json:"type"`
		AdditionalProperties *bool  `json:"additionalProperties"`
		Required             []string
		Properties           struct {
			Questions struct {
				MinItems *int `json:"minItems"`
				MaxItems *int `json:"maxItems"`
				Items    struct {
					Properties map[string]struct {
						MinLength *int `json:"minLength"`
					} `json:"properties"`
				} `json:"items"`
			} `json:"questions"`
		} `json:"properties"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("unmarshal schema: %v", err)
	}

	if decoded.Type != "object" {
		t.Errorf("expected object schema, got %q", decoded.Type)
	}
	q := decoded.Properties.Questions
	if q.MinItems == nil || *q.MinItems != domain.MinPrepQuestions {
		t.Errorf("expected minItems %d, got %v", domain.MinPrepQuestions, q.MinItems)
	}
	if q.MaxItems == nil || *q.MaxItems != domain.MaxPrepQuestions {
		t.Errorf("expected maxItems %d, got %v", domain.MaxPrepQuestions, q.MaxItems)
	}
	answerProp, ok := q.Items.Properties["modelAnswer"]
	if !ok || answerProp.MinLength == nil || *answerProp.MinLength != domain.MinModelAnswerLength {
		t.Errorf("expected modelAnswer minLength %d", domain.MinModelAnswerLength)
	}
}
