// internal/usage/ledger.go
package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"article-pipeline/internal/common/logger"
	costestimator "article-pipeline/internal/generation/cost-estimator"
	"article-pipeline/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	DayLayout  = "2006-01-02"
	keyPrefix  = "article-usage"
	typePrefix = "type:"
	tierPrefix = "tier:"

	fieldRequests     = "requests"
	fieldSucceeded    = "succeeded"
	fieldFailed       = "failed"
	fieldInputTokens  = "input_tokens"
	fieldOutputTokens = "output_tokens"
	fieldCost         = "estimated_cost"
)

var ErrInvalidDay = errors.New("INVALID_DAY")

// DailyUsage aggregates every recorded run of one UTC day.
type DailyUsage struct {
	Day           string           `json:"day"`
	Requests      int64            `json:"requests"`
	Succeeded     int64            `json:"succeeded"`
	Failed        int64            `json:"failed"`
	InputTokens   int64            `json:"inputTokens"`
	OutputTokens  int64            `json:"outputTokens"`
	EstimatedCost float64          `json:"estimatedCost"`
	ByType        map[string]int64 `json:"byType"`
	ByTier        map[string]int64 `json:"byTier"`
}

// Ledger keeps per-day counters in Redis hashes, one for the whole service
// and one per user. Keys expire after the retention window.
type Ledger struct {
	client    redis.UniversalClient
	retention time.Duration
	logger    logger.Logger
}

func NewLedger(client redis.UniversalClient, retentionDays int, log logger.Logger) *Ledger {
	if retentionDays <= 0 {
		retentionDays = 90
	}
	return &Ledger{
		client:    client,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger: log.With(map[string]interface{}{
			"component": "usage-ledger",
		}),
	}
}

func dayKey(day string) string {
	return keyPrefix + ":" + day
}

func userKey(day, userID string) string {
	return keyPrefix + ":" + day + ":user:" + userID
}

// Record implements the orchestrator's Recorder.
func (l *Ledger) Record(ctx context.Context, rec models.GenerationRecord) error {
	day := rec.CreatedAt.UTC().Format(DayLayout)
	keys := []string{dayKey(day)}
	if rec.UserID != "" {
		keys = append(keys, userKey(day, rec.UserID))
	}

	outcome := fieldFailed
	if rec.Success {
		outcome = fieldSucceeded
	}

	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.HIncrBy(ctx, key, fieldRequests, 1)
			pipe.HIncrBy(ctx, key, outcome, 1)
			pipe.HIncrBy(ctx, key, typePrefix+string(rec.ContentType), 1)
			pipe.HIncrBy(ctx, key, tierPrefix+string(rec.ModelTier), 1)
			if rec.Usage.InputTokens > 0 || rec.Usage.OutputTokens > 0 {
				pipe.HIncrBy(ctx, key, fieldInputTokens, int64(rec.Usage.InputTokens))
				pipe.HIncrBy(ctx, key, fieldOutputTokens, int64(rec.Usage.OutputTokens))
				pipe.HIncrByFloat(ctx, key, fieldCost, rec.Usage.EstimatedCost)
			}
			pipe.Expire(ctx, key, l.retention)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record usage for %s: %w", day, err)
	}

	l.logger.Debug("usage recorded", map[string]interface{}{
		"day":       day,
		"requestId": rec.ID,
	})
	return nil
}

// Daily returns the service-wide totals of day (YYYY-MM-DD). Unknown days
// yield zero totals.
func (l *Ledger) Daily(ctx context.Context, day string) (*DailyUsage, error) {
	if err := checkDay(day); err != nil {
		return nil, err
	}
	return l.read(ctx, day, dayKey(day))
}

func (l *Ledger) UserDaily(ctx context.Context, day, userID string) (*DailyUsage, error) {
	if err := checkDay(day); err != nil {
		return nil, err
	}
	return l.read(ctx, day, userKey(day, userID))
}

func checkDay(day string) error {
	if _, err := time.Parse(DayLayout, day); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return nil
}

func (l *Ledger) read(ctx context.Context, day, key string) (*DailyUsage, error) {
	fields, err := l.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read usage for %s: %w", day, err)
	}

	out := &DailyUsage{
		Day:    day,
		ByType: map[string]int64{},
		ByTier: map[string]int64{},
	}
	for field, raw := range fields {
		switch {
		case field == fieldCost:
			cost, _ := strconv.ParseFloat(raw, 64)
			out.EstimatedCost = costestimator.Round(cost)
		case strings.HasPrefix(field, typePrefix):
			out.ByType[strings.TrimPrefix(field, typePrefix)] = parseInt(raw)
		case strings.HasPrefix(field, tierPrefix):
			out.ByTier[strings.TrimPrefix(field, tierPrefix)] = parseInt(raw)
		case field == fieldRequests:
			out.Requests = parseInt(raw)
		case field == fieldSucceeded:
			out.Succeeded = parseInt(raw)
		case field == fieldFailed:
			out.Failed = parseInt(raw)
		case field == fieldInputTokens:
			out.InputTokens = parseInt(raw)
		case field == fieldOutputTokens:
			out.OutputTokens = parseInt(raw)
		}
	}
	return out, nil
}

func parseInt(raw string) int64 {
	n, _ := strconv.ParseInt(raw, 10, 64)
	return n
}
