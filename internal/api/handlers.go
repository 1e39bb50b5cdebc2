// internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "article-pipeline/internal/common/errors"
	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/generation/orchestrator"
	"article-pipeline/internal/models"
	"article-pipeline/internal/usage"

	"github.com/gin-gonic/gin"
)

// Generator runs the generation pipeline. Admit applies the caller and
// configuration gates before the request body is read.
type Generator interface {
	Admit(principal models.Principal) error
	Execute(ctx context.Context, principal models.Principal, req models.GenerationRequest) (*orchestrator.Result, error)
}

type UsageReader interface {
	Daily(ctx context.Context, day string) (*usage.DailyUsage, error)
	UserDaily(ctx context.Context, day, userID string) (*usage.DailyUsage, error)
}

type HistoryReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]models.GenerationRecord, error)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type generateRequest struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
	Model string `json:"model"`
}

type Handler struct {
	generator Generator
	usage     UsageReader
	history   HistoryReader
	checks    map[string]HealthCheck
	logger    logger.Logger
}

// GenerateArticle handles POST /api/generate-article.
func (h *Handler) GenerateArticle(c *gin.Context) {
	principal := principalFrom(c)
	if err := h.generator.Admit(principal); err != nil {
		writeError(c, err)
		return
	}

	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, apperrors.NewInputValidationError("request body must be a JSON object: "+err.Error()))
		return
	}

	result, err := h.generator.Execute(c.Request.Context(), principal, models.GenerationRequest{
		Topic:       body.Topic,
		ContentType: models.ContentType(body.Type),
		ModelTier:   models.ModelTier(body.Model),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success:    true,
		RequestID:  result.RequestID,
		Data:       result.Data(),
		Usage:      &result.Usage,
		Validation: result.Validation,
	})
}

// Usage handles GET /api/generate-article/usage?day=YYYY-MM-DD[&userId=].
// day defaults to today in UTC.
func (h *Handler) Usage(c *gin.Context) {
	day := c.DefaultQuery("day", time.Now().UTC().Format(usage.DayLayout))

	var (
		daily *usage.DailyUsage
		err   error
	)
	if userID := c.Query("userId"); userID != "" {
		daily, err = h.usage.UserDaily(c.Request.Context(), day, userID)
	} else {
		daily, err = h.usage.Daily(c.Request.Context(), day)
	}
	if err != nil {
		if errors.Is(err, usage.ErrInvalidDay) {
			writeError(c, apperrors.NewInputValidationError("day must be formatted YYYY-MM-DD"))
			return
		}
		h.logger.Error("usage lookup failed", map[string]interface{}{"day": day, "error": err.Error()})
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: daily})
}

// History handles GET /api/generate-article/history?limit=N[&userId=].
func (h *Handler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(c, apperrors.NewInputValidationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := h.history.Recent(c.Request.Context(), c.Query("userId"), limit)
	if err != nil {
		h.logger.Error("history lookup failed", map[string]interface{}{"error": err.Error()})
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: records})
}

// Healthz runs every registered check and answers 503 when one fails.
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": results})
}
