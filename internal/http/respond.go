package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/syedarman1/screenme-sub001/internal/domain"
)

// errorResponse is the JSON body of every failed API call. Which optional
// fields are set depends on the error kind.
type errorResponse struct {
	Error      string  `json:"error"`
	Details    any     `json:"details,omitempty"`
	Code       string  `json:"code,omitempty"`
	Transcript *string `json:"transcript,omitempty"`
	Raw        *string `json:"raw,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status code and response shape. Internal
// errors never expose their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	derr := domain.AsError(err)
	writeJSON(w, derr.StatusCode(), errorBody(derr))

	if derr.Kind == domain.KindInternal {
		log.Error().
			Err(derr.Err).
			Str("requestId", requestID(r)).
			Str("path", r.URL.Path).
			Msg("Unexpected internal error")
	}
}

// writeMessageOnly writes only the error message, for routes whose callers
// expect a bare {error} body.
func writeMessageOnly(w http.ResponseWriter, err error) {
	derr := domain.AsError(err)
	writeJSON(w, derr.StatusCode(), errorResponse{Error: derr.Message})
}

func errorBody(derr *domain.Error) errorResponse {
	body := errorResponse{Error: derr.Message}

	switch derr.Kind.Class() {
	case domain.ClassUpstreamService:
		body.Details = derr.Detail
		body.Code = derr.Code
		body.Transcript = derr.Transcript
	case domain.ClassUpstreamMalformed:
		raw := derr.Raw
		body.Raw = &raw
		if derr.Kind == domain.KindSchemaMismatch && derr.Issues != nil {
			body.Details = issuesDetail(derr.Issues)
		}
	case domain.ClassServiceUnavailable:
		body.Transcript = derr.Transcript
	}
	return body
}

// issuesDetail keeps structured validation errors as JSON objects.
func issuesDetail(issues error) any {
	var m json.Marshaler
	if errors.As(issues, &m) {
		if b, err := m.MarshalJSON(); err == nil {
			return json.RawMessage(b)
		}
	}
	return issues.Error()
}
