// internal/models/article.go
package models

import (
	"fmt"
	"strings"
)

// ContentType selects the prompt template, validation rules and derivation
// behaviour of a generation request.
type ContentType string

const (
	ContentTypeNews        ContentType = "news"
	ContentTypeEducational ContentType = "educational"
	ContentTypeResource    ContentType = "resource"
)

// ContentTypes lists every supported variant in declaration order.
var ContentTypes = []ContentType{ContentTypeNews, ContentTypeEducational, ContentTypeResource}

func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeNews, ContentTypeEducational, ContentTypeResource:
		return true
	default:
		return false
	}
}

// IsProse reports whether the content type produces a markdown article that
// goes through validation and metadata derivation.
func (c ContentType) IsProse() bool {
	return c == ContentTypeNews || c == ContentTypeEducational
}

// ModelTier is the pricing/sampling tier requested by the caller.
type ModelTier string

const (
	ModelTierBase     ModelTier = "base"
	ModelTierStandard ModelTier = "standard"
	ModelTierPro      ModelTier = "pro"
)

var ModelTiers = []ModelTier{ModelTierBase, ModelTierStandard, ModelTierPro}

// tierAliases maps the public wire names onto tiers.
var tierAliases = map[string]ModelTier{
	"":           ModelTierStandard,
	"base":       ModelTierBase,
	"standard":   ModelTierStandard,
	"pro":        ModelTierPro,
	"sonar-base": ModelTierBase,
	"sonar":      ModelTierStandard,
	"sonar-pro":  ModelTierPro,
}

// ParseModelTier accepts either a tier name or its wire alias. An empty value
// yields the standard tier.
func ParseModelTier(s string) (ModelTier, error) {
	tier, ok := tierAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown model %q", s)
	}
	return tier, nil
}

func (t ModelTier) Valid() bool {
	switch t {
	case ModelTierBase, ModelTierStandard, ModelTierPro:
		return true
	default:
		return false
	}
}

// GenerationRequest is the validated input of one pipeline run.
type GenerationRequest struct {
	Topic       string      `json:"topic"`
	ContentType ContentType `json:"type"`
	ModelTier   ModelTier   `json:"model,omitempty"`
}

// Principal identifies the caller of a generation request.
type Principal struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// RawCompletion is what the completion service returned for a single call.
type RawCompletion struct {
	Text         string   `json:"text"`
	InputTokens  int      `json:"inputTokens"`
	OutputTokens int      `json:"outputTokens"`
	Citations    []string `json:"citations,omitempty"`
}

// ArticleDraft is the typed view of a recovered news or educational payload.
// Resource payloads stay in Raw only.
type ArticleDraft struct {
	Title       string                 `json:"title,omitempty"`
	Excerpt     string                 `json:"excerpt,omitempty"`
	Description string                 `json:"description,omitempty"`
	Content     string                 `json:"content,omitempty"`
	Category    string                 `json:"category,omitempty"`
	Sentiment   string                 `json:"sentiment,omitempty"`
	Level       string                 `json:"level,omitempty"`
	Tags        []string               `json:"tags,omitempty"`
	Raw         map[string]interface{} `json:"-"`
}

// EnrichedDraft is the article returned to the caller for news and
// educational requests.
type EnrichedDraft struct {
	Title     string   `json:"title"`
	Slug      string   `json:"slug"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Level     string   `json:"level,omitempty"`
	Tags      []string `json:"tags"`
	ReadTime  string   `json:"readTime"`
	Sentiment string   `json:"sentiment,omitempty"`
	Citations []string `json:"citations"`
}

// UsageReport is the token accounting and cost estimate of one completion.
type UsageReport struct {
	InputTokens   int     `json:"inputTokens"`
	OutputTokens  int     `json:"outputTokens"`
	EstimatedCost float64 `json:"estimatedCost"`
}
