// internal/audit/store.go
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"article-pipeline/internal/common/logger"
	"article-pipeline/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Store is the append-only audit log of generation runs.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db: db,
		logger: log.With(map[string]interface{}{
			"component": "audit-store",
		}),
	}
}

// Migrate creates the audit table when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("migrate generation_audit: %w", err)
	}
	return nil
}

// Record implements the orchestrator's Recorder.
func (s *Store) Record(ctx context.Context, rec models.GenerationRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var score sql.NullInt64
	if rec.ValidationScore != nil {
		score = sql.NullInt64{Int64: int64(*rec.ValidationScore), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, insertSQL,
		rec.ID,
		rec.UserID,
		rec.Role,
		rec.Topic,
		string(rec.ContentType),
		string(rec.ModelTier),
		rec.Success,
		rec.ErrorCode,
		rec.Usage.InputTokens,
		rec.Usage.OutputTokens,
		rec.Usage.EstimatedCost,
		score,
		rec.Title,
		rec.Slug,
		rec.DurationMs(),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record %s: %w", rec.ID, err)
	}
	return nil
}

// Recent lists the newest records, optionally only those of userID. limit is
// clamped to [1, MaxLimit]; zero means DefaultLimit.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]models.GenerationRecord, error) {
	limit = ClampLimit(limit)

	var rows *sql.Rows
	var err error
	if userID == "" {
		rows, err = s.db.QueryContext(ctx, recentSQL, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, recentByUserSQL, userID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	records := make([]models.GenerationRecord, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func scanRecord(rows *sql.Rows) (models.GenerationRecord, error) {
	var (
		rec         models.GenerationRecord
		contentType string
		modelTier   string
		score       sql.NullInt64
		durationMs  int64
	)
	err := rows.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Role,
		&rec.Topic,
		&contentType,
		&modelTier,
		&rec.Success,
		&rec.ErrorCode,
		&rec.Usage.InputTokens,
		&rec.Usage.OutputTokens,
		&rec.Usage.EstimatedCost,
		&score,
		&rec.Title,
		&rec.Slug,
		&durationMs,
		&rec.CreatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("scan audit record: %w", err)
	}

	rec.ContentType = models.ContentType(contentType)
	rec.ModelTier = models.ModelTier(modelTier)
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	if score.Valid {
		v := int(score.Int64)
		rec.ValidationScore = &v
	}
	return rec, nil
}
