package orchestrator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJobInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantCode  apperrors.ErrorCode
	}{
		{"valid", `{"topic":"Bitcoin","type":"news","model":"sonar-pro","requestedBy":{"userId":"u1","role":"ADMIN"}}`, ""},
		{"invalid json", `{"topic":`, apperrors.ErrCodeInputValidationFailed},
		{"no requester", `{"topic":"Bitcoin","type":"news"}`, apperrors.ErrCodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := DecodeJobInput(tt.variables)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.Normalize(err).Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.GenerationRequest{
				Topic:       "Bitcoin",
				ContentType: models.ContentTypeNews,
				ModelTier:   "sonar-pro",
			}, input.Request())
			assert.Equal(t, models.Principal{UserID: "u1", Role: "ADMIN"}, input.RequestedBy)
		})
	}
}

func TestHandlerExecute(t *testing.T) {
	completer := &fakeCompleter{text: newsJSON(t), in: 1000, out: 500}
	o := newOrchestrator(t, completer)
	h := NewHandler(o, &Config{AllowedRoles: DefaultAllowedRoles, JobTimeout: time.Second}, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(),
		`{"topic":"Bitcoin ETF","type":"news","model":"pro","requestedBy":{"userId":"u1","role":"EDITOR"}}`)
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.NotEmpty(t, output.RequestID)
	assert.InDelta(t, 0.0155, output.Usage.EstimatedCost, 1e-9)
	require.NotNil(t, output.Validation)

	encoded, err := json.Marshal(output)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "sec-aprova-etf-de-bitcoin-a-vista", data["slug"])
	assert.Contains(t, decoded, "validation")
}

func TestHandlerExecute_PermissionDenied(t *testing.T) {
	o := newOrchestrator(t, &fakeCompleter{text: "{}"})
	h := NewHandler(o, &Config{AllowedRoles: DefaultAllowedRoles, JobTimeout: time.Second}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(),
		`{"topic":"Bitcoin","type":"news","requestedBy":{"userId":"u1","role":"VIEWER"}}`)
	require.Error(t, err)

	bpmn := apperrors.ConvertToBPMNError(apperrors.Normalize(err))
	assert.Equal(t, "PERMISSION_DENIED", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
}
