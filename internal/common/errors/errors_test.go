package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeUnauthenticated, http.StatusUnauthorized},
		{ErrCodePermissionDenied, http.StatusForbidden},
		{ErrCodeInputValidationFailed, http.StatusBadRequest},
		{ErrCodeConfigMissing, http.StatusInternalServerError},
		{ErrCodeUpstreamFailed, http.StatusInternalServerError},
		{ErrCodeUpstreamTimeout, http.StatusInternalServerError},
		{ErrCodeParseFailed, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Nil(t, Normalize(nil))

	parse := NewParseFailedError("abc", stderrors.New("no object"))
	wrapped := fmt.Errorf("pipeline: %w", parse)
	assert.Same(t, parse, Normalize(wrapped))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestStandardError_IsAndUnwrap(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := NewUpstreamFailedError(0, cause)

	assert.True(t, stderrors.Is(err, &StandardError{Code: ErrCodeUpstreamFailed}))
	assert.False(t, stderrors.Is(err, &StandardError{Code: ErrCodeParseFailed}))
	assert.True(t, stderrors.Is(err, cause))
}

func TestNewUpstreamFailedError_Retryable(t *testing.T) {
	assert.True(t, NewUpstreamFailedError(0, stderrors.New("network")).Retryable)
	assert.True(t, NewUpstreamFailedError(http.StatusTooManyRequests, stderrors.New("rate")).Retryable)
	assert.True(t, NewUpstreamFailedError(http.StatusBadGateway, stderrors.New("5xx")).Retryable)
	assert.False(t, NewUpstreamFailedError(http.StatusUnauthorized, stderrors.New("bad key")).Retryable)

	err := NewUpstreamFailedError(http.StatusBadGateway, stderrors.New("5xx"))
	assert.Equal(t, http.StatusBadGateway, err.Metadata["upstreamStatus"])
}

func TestConvertToBPMNError(t *testing.T) {
	parse := NewParseFailedError("{broken", stderrors.New("unexpected EOF"))
	bpmn := ConvertToBPMNError(parse)
	assert.Equal(t, "PARSE_FAILED", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
	assert.Equal(t, "{broken", bpmn.ErrorVariables["debug"])

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "PARSE_FAILED", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])

	upstream := ConvertToBPMNError(NewUpstreamFailedError(http.StatusServiceUnavailable, stderrors.New("down")))
	assert.Equal(t, 2, upstream.Retries)

	nonRetryable := ConvertToBPMNError(NewUpstreamFailedError(http.StatusBadRequest, stderrors.New("bad")))
	assert.Equal(t, 0, nonRetryable.Retries)
}

func TestRemainingRetries(t *testing.T) {
	assert.Equal(t, 2, RemainingRetries(5, 2))
	assert.Equal(t, 1, RemainingRetries(2, 2))
	assert.Equal(t, 0, RemainingRetries(1, 2))
	assert.Equal(t, 0, RemainingRetries(0, 2))
	assert.Equal(t, 0, RemainingRetries(3, 0))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodePermissionDenied))
	assert.Equal(t, "AUTH", GetErrorCategory(ErrCodeUnauthenticated))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputValidationFailed))
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeUpstreamTimeout))
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeParseFailed))
	assert.Equal(t, "CONFIG", GetErrorCategory(ErrCodeConfigMissing))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestStandardError_Error(t *testing.T) {
	err := NewInputValidationError("topic: required")
	require.Error(t, err)
	assert.Equal(t, "StandardError[INPUT_VALIDATION_FAILED]: Invalid generation request: topic: required", err.Error())
}
