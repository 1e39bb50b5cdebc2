// internal/generation/completion-client/client.go
package completionclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	apperrors "article-pipeline/internal/common/errors"
	httpclient "article-pipeline/internal/common/http"
	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/models"
)

// bodyExcerptLimit bounds how much of an upstream error body is kept.
const bodyExcerptLimit = 500

var (
	ErrCompletionTimeout = errors.New("COMPLETION_TIMEOUT")
	ErrCompletionFailed  = errors.New("COMPLETION_FAILED")
	ErrUnknownTier       = errors.New("UNKNOWN_MODEL_TIER")
)

// Client calls the chat completion endpoint once per request. It never
// retries; retry policy belongs to the caller.
type Client struct {
	config *Config
	http   *httpclient.Client
	logger logger.Logger
}

func New(config *Config, log logger.Logger) *Client {
	return &Client{
		config: config,
		http:   httpclient.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"component": "completion-client",
		}),
	}
}

// Ready reports CONFIG_MISSING when no API key is configured.
func (c *Client) Ready() error {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return apperrors.NewConfigMissingError("PERPLEXITY_API_KEY")
	}
	return nil
}

func (c *Client) Complete(ctx context.Context, req Request) (*models.RawCompletion, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	profile, ok := ProfileFor(req.Tier)
	if !ok {
		return nil, apperrors.NewInternalError(fmt.Errorf("%w: %q", ErrUnknownTier, req.Tier))
	}

	payload := chatRequest{
		Model: profile.Model,
		Messages: []message{
			{Role: "system", Content: c.config.SystemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature:         Temperature,
		TopP:                TopP,
		MaxTokens:           profile.MaxTokens,
		SearchRecencyFilter: RecencyFor(req.ContentType),
		ReturnCitations:     true,
	}

	c.logger.Debug("calling completion service", map[string]interface{}{
		"model":       profile.Model,
		"contentType": string(req.ContentType),
		"maxTokens":   profile.MaxTokens,
	})

	resp, err := c.http.PostJSON(ctx, c.config.BaseURL+chatPath, map[string]string{
		"Authorization": "Bearer " + c.config.APIKey,
	}, payload)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apperrors.NewUpstreamTimeoutError(fmt.Errorf("%w: %v", ErrCompletionTimeout, err))
		}
		return nil, apperrors.NewUpstreamFailedError(0, fmt.Errorf("%w: %v", ErrCompletionFailed, err))
	}

	if !resp.OK() {
		c.logger.Warn("completion service returned error status", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return nil, apperrors.NewUpstreamFailedError(resp.StatusCode,
			fmt.Errorf("%w: status %d: %s", ErrCompletionFailed, resp.StatusCode, excerpt(resp.Body)))
	}

	var decoded chatResponse
	if err := json.Unmarshal(resp.Body, &decoded); err != nil {
		return nil, apperrors.NewUpstreamFailedError(resp.StatusCode,
			fmt.Errorf("%w: decode response: %v", ErrCompletionFailed, err))
	}
	if len(decoded.Choices) == 0 {
		return nil, apperrors.NewUpstreamFailedError(resp.StatusCode,
			fmt.Errorf("%w: response has no choices", ErrCompletionFailed))
	}

	citations := decoded.Citations
	if citations == nil {
		citations = []string{}
	}

	return &models.RawCompletion{
		Text:         decoded.Choices[0].Message.Content,
		InputTokens:  decoded.Usage.PromptTokens,
		OutputTokens: decoded.Usage.CompletionTokens,
		Citations:    citations,
	}, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= bodyExcerptLimit {
		return s
	}
	cut := bodyExcerptLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
