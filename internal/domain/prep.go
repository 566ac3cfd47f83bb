package domain

// Bounds on a generated interview-prep set.
const (
	MinPrepQuestions     = 5
	MaxPrepQuestions     = 10
	MinQuestionLength    = 10
	MinModelAnswerLength = 20
)

// PrepQuestion is one likely interview question with a model answer.
type PrepQuestion struct {
	Question    string `json:"question" jsonschema:"minLength=10"`
	ModelAnswer string `json:"modelAnswer" jsonschema:"minLength=20"`
}

// PrepResult is the validated output of interview-prep generation.
type PrepResult struct {
	Questions []PrepQuestion `json:"questions" jsonschema:"minItems=5,maxItems=10"`
}
