// internal/generation/orchestrator/models.go
package orchestrator

import "article-pipeline/internal/models"

// Result is the successful outcome of one run. Exactly one of Article and
// Resource is set.
type Result struct {
	RequestID   string
	ContentType models.ContentType
	ModelTier   models.ModelTier
	Article     *models.EnrichedDraft
	Resource    map[string]interface{}
	Usage       models.UsageReport
	Validation  *models.ValidationReport
}

// Data is the payload returned to the caller.
func (r *Result) Data() interface{} {
	if r.Article != nil {
		return r.Article
	}
	return r.Resource
}

// JobInput is the variable set of a generate-article job.
type JobInput struct {
	Topic       string           `json:"topic"`
	Type        string           `json:"type"`
	Model       string           `json:"model,omitempty"`
	RequestedBy models.Principal `json:"requestedBy"`
}

func (in JobInput) Request() models.GenerationRequest {
	return models.GenerationRequest{
		Topic:       in.Topic,
		ContentType: models.ContentType(in.Type),
		ModelTier:   models.ModelTier(in.Model),
	}
}

type JobOutput struct {
	Success    bool                     `json:"success"`
	RequestID  string                   `json:"requestId"`
	Data       interface{}              `json:"data"`
	Usage      models.UsageReport       `json:"usage"`
	Validation *models.ValidationReport `json:"validation,omitempty"`
}

func NewJobOutput(r *Result) *JobOutput {
	return &JobOutput{
		Success:    true,
		RequestID:  r.RequestID,
		Data:       r.Data(),
		Usage:      r.Usage,
		Validation: r.Validation,
	}
}
