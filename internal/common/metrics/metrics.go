// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SubmissionStageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_stage_transitions_total",
			Help: "Total number of submission stage transitions",
		},
		[]string{"from_stage", "to_stage"},
	)

	FieldMapLowConfidence = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldmap_low_confidence_total",
			Help: "Total number of form fields left unmapped below the similarity threshold",
		},
		[]string{"form"},
	)

	IntentClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_classifications_total",
			Help: "Total number of intent classifications by source and outcome",
		},
		[]string{"source", "intent"},
	)
)
