// internal/generation/completion-client/models.go
package completionclient

import "article-pipeline/internal/models"

// Request is one completion call.
type Request struct {
	Prompt      string
	ContentType models.ContentType
	Tier        models.ModelTier
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string    `json:"model"`
	Messages            []message `json:"messages"`
	Temperature         float64   `json:"temperature"`
	TopP                float64   `json:"top_p"`
	MaxTokens           int       `json:"max_tokens"`
	SearchRecencyFilter string    `json:"search_recency_filter,omitempty"`
	ReturnCitations     bool      `json:"return_citations"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Citations []string `json:"citations"`
}
