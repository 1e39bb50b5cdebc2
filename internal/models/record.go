// internal/models/record.go
package models

import "time"

// GenerationRecord summarizes one finished pipeline run for the usage ledger
// and the audit log.
type GenerationRecord struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId"`
	Role            string        `json:"role"`
	Topic           string        `json:"topic"`
	ContentType     ContentType   `json:"type"`
	ModelTier       ModelTier     `json:"model"`
	Success         bool          `json:"success"`
	ErrorCode       string        `json:"errorCode,omitempty"`
	Usage           UsageReport   `json:"usage"`
	ValidationScore *int          `json:"validationScore,omitempty"`
	Title           string        `json:"title,omitempty"`
	Slug            string        `json:"slug,omitempty"`
	Duration        time.Duration `json:"-"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// DurationMs is the run duration in whole milliseconds.
func (r GenerationRecord) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
