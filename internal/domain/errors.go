package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Class groups error kinds by who is at fault and how the caller should react.
type Class int

const (
	ClassClientInput Class = iota
	ClassUpstreamService
	ClassUpstreamMalformed
	ClassServiceUnavailable
	ClassInternal
)

// Kind identifies a specific failure.
type Kind string

const (
	KindMissingAudio         Kind = "MissingAudio"
	KindEmptyAudio           Kind = "EmptyAudio"
	KindAudioTooLarge        Kind = "AudioTooLarge"
	KindMissingHistory       Kind = "MissingHistory"
	KindInvalidHistoryFormat Kind = "InvalidHistoryFormat"
	KindMissingInput         Kind = "MissingInput"
	KindInvalidMessages      Kind = "InvalidMessages"
	KindInvalidBody          Kind = "InvalidBody"
	KindInputTooLong         Kind = "InputTooLong"

	KindTranscriptionFailed Kind = "TranscriptionFailed"
	KindCompletionFailed    Kind = "CompletionFailed"
	KindSynthesisFailed     Kind = "SynthesisFailed"
	KindStreamingFailed     Kind = "StreamingFailed"

	KindUpstreamMalformedJSON Kind = "UpstreamMalformedJSON"
	KindSchemaMismatch        Kind = "SchemaMismatch"

	KindServiceUnavailable Kind = "ServiceUnavailable"
	KindInternal           Kind = "UnexpectedInternalError"
)

// Class returns the class the kind belongs to.
func (k Kind) Class() Class {
	switch k {
	case KindMissingAudio, KindEmptyAudio, KindAudioTooLarge, KindMissingHistory,
		KindInvalidHistoryFormat, KindMissingInput, KindInvalidMessages, KindInvalidBody,
		KindInputTooLong:
		return ClassClientInput
	case KindTranscriptionFailed, KindCompletionFailed, KindSynthesisFailed, KindStreamingFailed:
		return ClassUpstreamService
	case KindUpstreamMalformedJSON, KindSchemaMismatch:
		return ClassUpstreamMalformed
	case KindServiceUnavailable:
		return ClassServiceUnavailable
	default:
		return ClassInternal
	}
}

// Stage names the upstream call a failure happened in.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageCompletion    Stage = "completion"
	StageGeneration    Stage = "generation"
	StageStreaming     Stage = "streaming"
	StageSynthesis     Stage = "synthesis"
)

// Error is the error type returned by every service operation.
// Message is safe to show to the caller; Err is for logs only.
type Error struct {
	Kind    Kind
	Message string
	Stage   Stage
	Code    string
	Detail  string

	// Transcript is set when a completion fails after a successful
	// transcription so the caller can keep the partial result.
	Transcript *string
	// Raw holds the unparsed upstream text for malformed responses.
	Raw string
	// Issues holds structured validation failures for SchemaMismatch.
	Issues error

	Err error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Stage != "" {
		msg += " (stage=" + string(e.Stage) + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same kind, so the sentinels below work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// StatusCode maps the error class to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind.Class() {
	case ClassClientInput:
		return http.StatusBadRequest
	case ClassServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithTranscript returns a copy of e carrying the transcript.
func (e *Error) WithTranscript(transcript string) *Error {
	cp := *e
	cp.Transcript = &transcript
	return &cp
}

// Sentinel errors for client input and availability failures.
var (
	ErrMissingAudio         = &Error{Kind: KindMissingAudio, Message: "No audio file provided."}
	ErrEmptyAudio           = &Error{Kind: KindEmptyAudio, Message: "Received empty audio file."}
	ErrAudioTooLarge        = &Error{Kind: KindAudioTooLarge, Message: "Audio file is too large."}
	ErrMissingHistory       = &Error{Kind: KindMissingHistory, Message: "Missing conversation history."}
	ErrInvalidHistoryFormat = &Error{Kind: KindInvalidHistoryFormat, Message: "Invalid history format."}
	ErrMissingInput         = &Error{Kind: KindMissingInput, Message: "Missing job description"}
	ErrMissingText          = &Error{Kind: KindMissingInput, Message: "Missing text to synthesize."}
	ErrInvalidMessages      = &Error{Kind: KindInvalidMessages, Message: "Invalid chat messages."}
	ErrInvalidBody          = &Error{Kind: KindInvalidBody, Message: "Invalid request body."}
	ErrServiceUnavailable   = &Error{Kind: KindServiceUnavailable, Message: "AI service is not configured."}
)

// InvalidHistory returns an InvalidHistoryFormat error wrapping the parse cause.
func InvalidHistory(cause error) *Error {
	return &Error{Kind: KindInvalidHistoryFormat, Message: ErrInvalidHistoryFormat.Message, Err: cause}
}

// InputTooLong reports text longer than limit characters.
func InputTooLong(limit int) *Error {
	return &Error{Kind: KindInputTooLong, Message: fmt.Sprintf("Text exceeds %d characters.", limit)}
}

// InvalidMessages returns an InvalidMessages error wrapping the cause.
func InvalidMessages(cause error) *Error {
	return &Error{Kind: KindInvalidMessages, Message: ErrInvalidMessages.Message, Err: cause}
}

// Internal wraps an unclassified error. The message never includes the cause.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "An unexpected error occurred.", Err: cause}
}

// UpstreamError is returned by provider adapters when the remote service
// rejects or fails a call.
type UpstreamError struct {
	Provider   string
	Code       string
	Detail     string
	HTTPStatus int
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error (code=%s): %s", e.Provider, e.Code, e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

var stageMessages = map[Kind]string{
	KindTranscriptionFailed: "Failed to transcribe audio.",
	KindCompletionFailed:    "Failed to generate a reply.",
	KindSynthesisFailed:     "Failed to synthesize speech.",
	KindStreamingFailed:     "Streaming completion failed.",
}

// Upstream annotates an adapter failure with the stage that failed.
// ServiceUnavailable passes through unchanged.
func Upstream(kind Kind, stage Stage, err error) *Error {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindServiceUnavailable {
		return de
	}

	out := &Error{Kind: kind, Message: stageMessages[kind], Stage: stage, Err: err}
	out.Code, out.Detail = upstreamDetail(err)
	return out
}

// UpstreamCode returns the short code used to label an adapter failure.
func UpstreamCode(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Kind == KindServiceUnavailable {
		return string(KindServiceUnavailable)
	}
	code, _ := upstreamDetail(err)
	return code
}

func upstreamDetail(err error) (code, detail string) {
	var ue *UpstreamError
	switch {
	case err == nil:
		return "", ""
	case errors.As(err, &ue):
		return ue.Code, ue.Detail
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", "upstream call timed out"
	case errors.Is(err, context.Canceled):
		return "canceled", "request was canceled"
	default:
		return "unknown", err.Error()
	}
}

// AsError converts any error into *Error, classifying unknown errors as internal.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Internal(err)
}
