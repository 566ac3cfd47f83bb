package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindMissingAudio, http.StatusBadRequest},
		{KindAudioTooLarge, http.StatusBadRequest},
		{KindInvalidHistoryFormat, http.StatusBadRequest},
		{KindInvalidBody, http.StatusBadRequest},
		{KindInputTooLong, http.StatusBadRequest},
		{KindTranscriptionFailed, http.StatusInternalServerError},
		{KindStreamingFailed, http.StatusInternalServerError},
		{KindSchemaMismatch, http.StatusInternalServerError},
		{KindServiceUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
		{Kind("Whatever"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, (&Error{Kind: tt.kind}).StatusCode())
		})
	}
}

func TestErrorIs_MatchesKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", InvalidHistory(errors.New("bad")))

	assert.True(t, errors.Is(err, ErrInvalidHistoryFormat))
	assert.False(t, errors.Is(err, ErrMissingHistory))
	assert.Contains(t, err.Error(), "bad")
}

func TestUpstream(t *testing.T) {
	t.Run("upstream error carries code", func(t *testing.T) {
		cause := &UpstreamError{Provider: "openai", Code: "rate_limit_exceeded", Detail: "slow down", HTTPStatus: 429}
		de := Upstream(KindTranscriptionFailed, StageTranscription, cause)

		assert.Equal(t, KindTranscriptionFailed, de.Kind)
		assert.Equal(t, StageTranscription, de.Stage)
		assert.Equal(t, "rate_limit_exceeded", de.Code)
		assert.Equal(t, "slow down", de.Detail)
		assert.Equal(t, "Failed to transcribe audio.", de.Message)
		assert.ErrorIs(t, de, cause)
	})

	t.Run("timeout", func(t *testing.T) {
		de := Upstream(KindCompletionFailed, StageCompletion, fmt.Errorf("call: %w", context.DeadlineExceeded))
		assert.Equal(t, "timeout", de.Code)
	})

	t.Run("canceled", func(t *testing.T) {
		de := Upstream(KindCompletionFailed, StageCompletion, context.Canceled)
		assert.Equal(t, "canceled", de.Code)
	})

	t.Run("unknown", func(t *testing.T) {
		de := Upstream(KindSynthesisFailed, StageSynthesis, errors.New("boom"))
		assert.Equal(t, "unknown", de.Code)
		assert.Equal(t, "boom", de.Detail)
	})

	t.Run("service unavailable passes through", func(t *testing.T) {
		de := Upstream(KindCompletionFailed, StageCompletion, ErrServiceUnavailable)
		assert.Equal(t, KindServiceUnavailable, de.Kind)
		assert.Equal(t, http.StatusServiceUnavailable, de.StatusCode())
	})
}

func TestUpstreamCode(t *testing.T) {
	assert.Equal(t, "ServiceUnavailable", UpstreamCode(ErrServiceUnavailable))
	assert.Equal(t, "400", UpstreamCode(&UpstreamError{Code: "400"}))
	assert.Equal(t, "timeout", UpstreamCode(context.DeadlineExceeded))
	assert.Equal(t, "", UpstreamCode(nil))
}

func TestWithTranscript_Copies(t *testing.T) {
	orig := Upstream(KindCompletionFailed, StageCompletion, errors.New("x"))
	withT := orig.WithTranscript("hello")

	require.NotNil(t, withT.Transcript)
	assert.Equal(t, "hello", *withT.Transcript)
	assert.Nil(t, orig.Transcript)
	assert.Equal(t, orig.Kind, withT.Kind)
}

func TestAsError(t *testing.T) {
	de := AsError(fmt.Errorf("ctx: %w", ErrEmptyAudio))
	assert.Equal(t, KindEmptyAudio, de.Kind)

	internal := AsError(errors.New("secret detail"))
	assert.Equal(t, KindInternal, internal.Kind)
	assert.NotContains(t, internal.Message, "secret")
	assert.Equal(t, http.StatusInternalServerError, internal.StatusCode())
}
