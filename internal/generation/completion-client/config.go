// internal/generation/completion-client/config.go
package completionclient

import (
	"strings"
	"time"

	"article-pipeline/internal/common/config"
	"article-pipeline/internal/models"
	promptbuilder "article-pipeline/internal/generation/prompt-builder"
)

const (
	DefaultBaseURL = "https://api.perplexity.ai"
	chatPath       = "/chat/completions"

	Temperature = 0.7
	TopP        = 0.9

	// RecencyDay limits web search to the last 24 hours.
	RecencyDay = "day"
)

type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	SystemPrompt string
}

func LoadConfig(cfg config.CompletionConfig) *Config {
	c := &Config{
		BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:       cfg.APIKey,
		Timeout:      config.GetDuration(cfg.Timeout),
		SystemPrompt: cfg.SystemPrompt,
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = promptbuilder.SystemMessage
	}
	return c
}

// Profile is the fixed sampling setup of a model tier.
type Profile struct {
	Model     string
	MaxTokens int
}

var profiles = map[models.ModelTier]Profile{
	models.ModelTierBase:     {Model: "sonar", MaxTokens: 1500},
	models.ModelTierStandard: {Model: "sonar", MaxTokens: 1500},
	models.ModelTierPro:      {Model: "sonar-pro", MaxTokens: 2000},
}

// ProfileFor returns the profile of tier and whether the tier is known.
func ProfileFor(tier models.ModelTier) (Profile, bool) {
	p, ok := profiles[tier]
	return p, ok
}

// RecencyFor returns the search recency filter for a content type, or "".
func RecencyFor(contentType models.ContentType) string {
	if contentType == models.ContentTypeNews {
		return RecencyDay
	}
	return ""
}
