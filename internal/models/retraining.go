// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package models

import "time"

// JobStatus tracks a retraining job through its lifecycle.
// Jobs are created pending; the external training worker reports the
// transitions to running, completed, or failed.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the status ends the job lifecycle.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// TrainingMetrics holds model quality metrics reported by the training
// worker when a job completes.
type TrainingMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
}

// RetrainingJob records one retraining run and the feedback snapshot that
// produced it. FeedbackIDs is fixed at creation; feedback arriving later
// belongs to the next job.
type RetrainingJob struct {
	JobID         string           `json:"job_id"`
	Status        JobStatus        `json:"status"`
	FeedbackCount int              `json:"feedback_count"`
	FeedbackIDs   []string         `json:"feedback_ids"`
	CreatedAt     time.Time        `json:"created_at"`
	TrainingStart *time.Time       `json:"training_start,omitempty"`
	TrainingEnd   *time.Time       `json:"training_end,omitempty"`
	Metrics       *TrainingMetrics `json:"metrics,omitempty"`
}

// RetrainingStatus aggregates job counts by status for operator dashboards.
type RetrainingStatus struct {
	TotalJobs int            `json:"total_jobs"`
	Pending   int            `json:"pending"`
	Running   int            `json:"running"`
	Completed int            `json:"completed"`
	Failed    int            `json:"failed"`
	LastJob   *RetrainingJob `json:"last_job,omitempty"`
}
