package completionclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"article-pipeline/internal/common/config"
	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	return New(&Config{
		BaseURL:      url,
		APIKey:       "test-key",
		Timeout:      timeout,
		SystemPrompt: "system",
	}, logger.NewTestLogger(t))
}

func TestComplete_Success(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"title\":\"T\"}"}}],
			"usage": {"prompt_tokens": 1000, "completion_tokens": 2000},
			"citations": ["https://a.example", "https://b.example"]
		}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, 5*time.Second)
	raw, err := c.Complete(context.Background(), Request{
		Prompt:      "prompt",
		ContentType: models.ContentTypeNews,
		Tier:        models.ModelTierPro,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"title":"T"}`, raw.Text)
	assert.Equal(t, 1000, raw.InputTokens)
	assert.Equal(t, 2000, raw.OutputTokens)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, raw.Citations)

	assert.Equal(t, "sonar-pro", captured.Model)
	assert.Equal(t, 2000, captured.MaxTokens)
	assert.Equal(t, Temperature, captured.Temperature)
	assert.Equal(t, TopP, captured.TopP)
	assert.Equal(t, "day", captured.SearchRecencyFilter)
	assert.True(t, captured.ReturnCitations)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "system", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "prompt", captured.Messages[1].Content)
}

func TestComplete_ProfilePerTier(t *testing.T) {
	tests := []struct {
		tier      models.ModelTier
		ct        models.ContentType
		model     string
		maxTokens int
		recency   string
	}{
		{models.ModelTierBase, models.ContentTypeEducational, "sonar", 1500, ""},
		{models.ModelTierStandard, models.ContentTypeResource, "sonar", 1500, ""},
		{models.ModelTierPro, models.ContentTypeNews, "sonar-pro", 2000, "day"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			var captured map[string]interface{}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewDecoder(r.Body).Decode(&captured)
				_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}],"usage":{}}`))
			}))
			defer server.Close()

			raw, err := newTestClient(t, server.URL, time.Second).Complete(context.Background(),
				Request{Prompt: "p", ContentType: tt.ct, Tier: tt.tier})
			require.NoError(t, err)
			assert.NotNil(t, raw.Citations)

			assert.Equal(t, tt.model, captured["model"])
			assert.Equal(t, float64(tt.maxTokens), captured["max_tokens"])
			if tt.recency == "" {
				assert.NotContains(t, captured, "search_recency_filter")
			} else {
				assert.Equal(t, tt.recency, captured["search_recency_filter"])
			}
		})
	}
}

func TestComplete_NonSuccessStatusIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, time.Second).Complete(context.Background(),
		Request{Prompt: "p", ContentType: models.ContentTypeNews, Tier: models.ModelTierStandard})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, errors.Is(err, ErrCompletionFailed))

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeUpstreamFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "503")
	assert.Contains(t, stdErr.Details, "overloaded")
	assert.Equal(t, 503, stdErr.Metadata["upstreamStatus"])
}

func TestComplete_ErrorBodyIsBounded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, time.Second).Complete(context.Background(),
		Request{Prompt: "p", ContentType: models.ContentTypeNews, Tier: models.ModelTierBase})

	require.Error(t, err)
	assert.Less(t, len(apperrors.Normalize(err).Details), 700)
}

func TestComplete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, 50*time.Millisecond).Complete(context.Background(),
		Request{Prompt: "p", ContentType: models.ContentTypeNews, Tier: models.ModelTierBase})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompletionTimeout))
	assert.Equal(t, apperrors.ErrCodeUpstreamTimeout, apperrors.Normalize(err).Code)
}

func TestComplete_ContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, server.URL, 5*time.Second).Complete(ctx,
		Request{Prompt: "p", ContentType: models.ContentTypeNews, Tier: models.ModelTierBase})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUpstreamTimeout, apperrors.Normalize(err).Code)
}

func TestComplete_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no choices", `{"choices":[],"usage":{"prompt_tokens":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL, time.Second).Complete(context.Background(),
				Request{Prompt: "p", ContentType: models.ContentTypeNews, Tier: models.ModelTierBase})

			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeUpstreamFailed, apperrors.Normalize(err).Code)
		})
	}
}

func TestReady_MissingAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := New(&Config{BaseURL: server.URL, Timeout: time.Second}, logger.NewNoOpLogger())

	err := c.Ready()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfigMissing, apperrors.Normalize(err).Code)

	_, err = c.Complete(context.Background(), Request{Prompt: "p", ContentType: models.ContentTypeNews, Tier: models.ModelTierBase})
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestComplete_UnknownTier(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0", time.Second)
	_, err := c.Complete(context.Background(), Request{Prompt: "p", ContentType: models.ContentTypeNews, Tier: "ultra"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTier))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(config.CompletionConfig{})
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.NotEmpty(t, cfg.SystemPrompt)
}
