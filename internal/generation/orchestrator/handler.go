// internal/generation/orchestrator/handler.go
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "generate-article"
)

// Handler exposes the pipeline as a Zeebe job worker.
type Handler struct {
	orchestrator *Orchestrator
	config       *Config
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(o *Orchestrator, config *Config, log logger.Logger) *Handler {
	scoped := log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		orchestrator: o,
		config:       config,
		errorHandler: apperrors.NewErrorHandler(scoped),
		logger:       scoped,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.JobTimeout)
	defer cancel()

	output, err := h.Execute(ctx, job.Variables)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// Execute decodes job variables and runs the pipeline.
func (h *Handler) Execute(ctx context.Context, variables string) (*JobOutput, error) {
	input, err := DecodeJobInput(variables)
	if err != nil {
		return nil, err
	}

	result, err := h.orchestrator.Execute(ctx, input.RequestedBy, input.Request())
	if err != nil {
		return nil, err
	}
	return NewJobOutput(result), nil
}

func DecodeJobInput(variables string) (*JobInput, error) {
	var input JobInput
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewInputValidationError(fmt.Sprintf("parse job variables: %v", err))
	}
	if input.RequestedBy.UserID == "" {
		return nil, apperrors.NewUnauthenticatedError("job has no requestedBy.userId")
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *JobOutput) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}
