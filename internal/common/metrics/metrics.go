// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_generations_total",
			Help: "Total number of generation requests by outcome",
		},
		[]string{"content_type", "tier", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "article_generation_duration_seconds",
			Help:    "Duration of a full generation run in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
		},
		[]string{"content_type", "tier"},
	)

	GenerationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "article_generations_active",
			Help: "Number of generation runs in progress",
		},
	)

	TokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_generation_tokens_total",
			Help: "Tokens consumed by completion calls",
		},
		[]string{"tier", "direction"},
	)

	EstimatedCostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_generation_estimated_cost_total",
			Help: "Sum of estimated completion cost",
		},
		[]string{"tier"},
	)

	ValidationIssuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "article_validation_issues_total",
			Help: "Validation issues found in generated drafts",
		},
		[]string{"content_type", "code", "severity"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)
