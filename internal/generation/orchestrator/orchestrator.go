// internal/generation/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/common/metrics"
	"article-pipeline/internal/common/observability"
	"article-pipeline/internal/common/validation"
	completionclient "article-pipeline/internal/generation/completion-client"
	contentvalidator "article-pipeline/internal/generation/content-validator"
	costestimator "article-pipeline/internal/generation/cost-estimator"
	metadataderiver "article-pipeline/internal/generation/metadata-deriver"
	promptbuilder "article-pipeline/internal/generation/prompt-builder"
	responseextractor "article-pipeline/internal/generation/response-extractor"
	"article-pipeline/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const recordTimeout = 3 * time.Second

// Completer is the completion service seen by the pipeline.
type Completer interface {
	Ready() error
	Complete(ctx context.Context, req completionclient.Request) (*models.RawCompletion, error)
}

// Recorder receives a summary of every run that reached the completion
// service. Recorder errors are logged and never returned to the caller.
type Recorder interface {
	Record(ctx context.Context, rec models.GenerationRecord) error
}

type Deps struct {
	Completer     Completer
	Estimator     *costestimator.Estimator
	Validator     *contentvalidator.Validator
	Observability *observability.Observability
	Recorders     []Recorder
}

type Orchestrator struct {
	config        *Config
	completer     Completer
	estimator     *costestimator.Estimator
	validator     *contentvalidator.Validator
	observability *observability.Observability
	recorders     []Recorder
	logger        logger.Logger
}

func New(config *Config, deps Deps, log logger.Logger) *Orchestrator {
	o := &Orchestrator{
		config:        config,
		completer:     deps.Completer,
		estimator:     deps.Estimator,
		validator:     deps.Validator,
		observability: deps.Observability,
		recorders:     deps.Recorders,
		logger: log.With(map[string]interface{}{
			"component": "orchestrator",
		}),
	}
	if o.estimator == nil {
		o.estimator = costestimator.New(costestimator.DefaultPriceTable())
	}
	if o.validator == nil {
		o.validator = contentvalidator.New(contentvalidator.DefaultConfig())
	}
	return o
}

// run carries the state of a single Execute call.
type run struct {
	id        string
	principal models.Principal
	request   models.GenerationRequest
	started   time.Time
	log       logger.Logger
	usage     models.UsageReport
}

// Execute runs the whole pipeline for one request. Gates are checked in order:
// role, completion service configuration, request shape.
func (o *Orchestrator) Execute(ctx context.Context, principal models.Principal, req models.GenerationRequest) (*Result, error) {
	r := &run{
		id:        uuid.NewString(),
		principal: principal,
		request:   req,
		started:   time.Now(),
	}
	r.log = o.logger.With(map[string]interface{}{
		"requestId":   r.id,
		"userId":      principal.UserID,
		"contentType": string(req.ContentType),
	})

	ctx, span := o.observability.Tracer().Start(ctx, "generate-article", trace.WithAttributes(
		attribute.String("request.id", r.id),
		attribute.String("content.type", string(req.ContentType)),
	))
	defer span.End()

	metrics.GenerationsActive.Inc()
	defer metrics.GenerationsActive.Dec()

	result, err := o.execute(ctx, r)
	o.observe(r, result, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.Normalize(err).Code))
		return nil, err
	}
	return result, nil
}

// Admit runs the gates that do not depend on the request body: the caller's
// role, then the completion service configuration.
func (o *Orchestrator) Admit(principal models.Principal) error {
	if !o.config.RoleAllowed(principal.Role) {
		o.logger.Warn("role not allowed to generate", map[string]interface{}{
			"userId": principal.UserID,
			"role":   principal.Role,
		})
		return apperrors.NewPermissionDeniedError(principal.Role)
	}

	if err := o.completer.Ready(); err != nil {
		o.logger.Error("completion service not configured", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, r *run) (*Result, error) {
	if err := o.Admit(r.principal); err != nil {
		return nil, err
	}

	tier, err := validateRequest(r.request)
	if err != nil {
		r.log.Info("request rejected", map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	r.request.ModelTier = tier
	r.log = r.log.With(map[string]interface{}{"model": string(tier)})

	result, err := o.generate(ctx, r)
	o.record(ctx, r, result, err)
	return result, err
}

// validateRequest checks the request against GenerationRequestSchema and
// resolves the tier alias.
func validateRequest(req models.GenerationRequest) (models.ModelTier, error) {
	vr, err := validation.GenerationRequestSchema.Validate(map[string]interface{}{
		"topic": req.Topic,
		"type":  string(req.ContentType),
		"model": string(req.ModelTier),
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if !vr.Valid {
		return "", apperrors.NewInputValidationError(strings.Join(vr.GetErrorMessages(), "; "))
	}

	tier, err := models.ParseModelTier(string(req.ModelTier))
	if err != nil {
		return "", apperrors.NewInputValidationError(err.Error())
	}
	return tier, nil
}

func (o *Orchestrator) generate(ctx context.Context, r *run) (*Result, error) {
	ct := r.request.ContentType
	tier := r.request.ModelTier

	var prompt string
	err := o.stage(ctx, "prompt", func(context.Context) error {
		var err error
		prompt, err = promptbuilder.Build(r.request.Topic, ct)
		return err
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var raw *models.RawCompletion
	err = o.stage(ctx, "completion", func(ctx context.Context) error {
		var err error
		raw, err = o.completer.Complete(ctx, completionclient.Request{
			Prompt:      prompt,
			ContentType: ct,
			Tier:        tier,
		})
		return err
	})
	if err != nil {
		r.log.Error("completion failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	usage, err := o.estimator.Estimate(raw.InputTokens, raw.OutputTokens, tier)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	r.usage = usage

	var obj map[string]interface{}
	var draft models.ArticleDraft
	err = o.stage(ctx, "extraction", func(context.Context) error {
		var err error
		if obj, err = responseextractor.Extract(raw.Text); err != nil {
			return err
		}
		if ct.IsProse() {
			draft, err = responseextractor.DraftFromObject(ct, obj)
		}
		return err
	})
	if err != nil {
		preview := responseextractor.Preview(raw.Text)
		r.log.Warn("could not recover article from completion", map[string]interface{}{
			"error":   err.Error(),
			"preview": preview,
		})
		return nil, apperrors.NewParseFailedError(preview, err)
	}

	result := &Result{
		RequestID:   r.id,
		ContentType: ct,
		ModelTier:   tier,
		Usage:       usage,
	}

	if !ct.IsProse() {
		result.Resource = withCitations(obj, raw.Citations)
		return result, nil
	}

	draft.Content = metadataderiver.CleanContent(draft.Content, ct)
	if draft.Raw != nil {
		draft.Raw["content"] = draft.Content
	}

	var report models.ValidationReport
	var article models.EnrichedDraft
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return o.stage(gctx, "validation", func(context.Context) error {
			report = o.validator.Validate(draft, ct)
			return nil
		})
	})
	g.Go(func() error {
		return o.stage(gctx, "derivation", func(context.Context) error {
			article = metadataderiver.Derive(draft, ct, raw.Citations)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if !report.Passed {
		r.log.Warn("generated article failed validation", map[string]interface{}{
			"score":   report.Score,
			"summary": contentvalidator.Format(report),
		})
	}
	for _, issue := range report.Issues {
		metrics.ValidationIssuesTotal.WithLabelValues(string(ct), string(issue.Code), string(issue.Severity)).Inc()
	}

	result.Article = &article
	result.Validation = &report
	return result, nil
}

// stage runs fn inside a child span and records its duration.
func (o *Orchestrator) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := o.observability.Tracer().Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	o.observability.RecordStage(ctx, name, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func withCitations(obj map[string]interface{}, citations []string) map[string]interface{} {
	out := make(map[string]interface{}, len(obj)+1)
	for k, v := range obj {
		out[k] = v
	}
	if _, ok := out["citations"]; !ok {
		if citations == nil {
			citations = []string{}
		}
		out["citations"] = citations
	}
	return out
}

func (o *Orchestrator) record(ctx context.Context, r *run, result *Result, err error) {
	if len(o.recorders) == 0 {
		return
	}

	rec := models.GenerationRecord{
		ID:          r.id,
		UserID:      r.principal.UserID,
		Role:        r.principal.Role,
		Topic:       r.request.Topic,
		ContentType: r.request.ContentType,
		ModelTier:   r.request.ModelTier,
		Success:     err == nil,
		Usage:       r.usage,
		Duration:    time.Since(r.started),
		CreatedAt:   r.started.UTC(),
	}
	if err != nil {
		rec.ErrorCode = string(apperrors.Normalize(err).Code)
	}
	if result != nil && result.Article != nil {
		rec.Title = result.Article.Title
		rec.Slug = result.Article.Slug
	}
	if result != nil && result.Validation != nil {
		score := result.Validation.Score
		rec.ValidationScore = &score
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	for _, recorder := range o.recorders {
		if recErr := recorder.Record(ctx, rec); recErr != nil {
			r.log.Warn("failed to record generation", map[string]interface{}{
				"recorder": fmt.Sprintf("%T", recorder),
				"error":    recErr.Error(),
			})
		}
	}
}

func (o *Orchestrator) observe(r *run, result *Result, err error) {
	tier, ct := "unknown", "unknown"
	if r.request.ModelTier.Valid() {
		tier = string(r.request.ModelTier)
	}
	if r.request.ContentType.Valid() {
		ct = string(r.request.ContentType)
	}

	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(apperrors.Normalize(err).Code))
	}
	metrics.GenerationsTotal.WithLabelValues(ct, tier, outcome).Inc()
	metrics.GenerationDuration.WithLabelValues(ct, tier).Observe(time.Since(r.started).Seconds())

	if r.usage.InputTokens > 0 || r.usage.OutputTokens > 0 {
		metrics.TokensTotal.WithLabelValues(tier, "input").Add(float64(r.usage.InputTokens))
		metrics.TokensTotal.WithLabelValues(tier, "output").Add(float64(r.usage.OutputTokens))
		metrics.EstimatedCostTotal.WithLabelValues(tier).Add(r.usage.EstimatedCost)
	}

	fields := map[string]interface{}{
		"outcome":    outcome,
		"durationMs": time.Since(r.started).Milliseconds(),
	}
	if result != nil {
		fields["estimatedCost"] = result.Usage.EstimatedCost
		if result.Validation != nil {
			fields["validationScore"] = result.Validation.Score
		}
		r.log.Info("generation completed", fields)
		return
	}
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) && stdErr.Retryable {
		fields["retryable"] = true
	}
	r.log.Info("generation failed", fields)
}
