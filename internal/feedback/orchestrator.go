// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package feedback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sentinelshield/sentinelshield/internal/logging"
	"github.com/sentinelshield/sentinelshield/internal/metrics"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// ErrUnknownJob is returned by UpdateJobStatus for an unknown job ID.
var ErrUnknownJob = errors.New("feedback: unknown retraining job")

// ErrInvalidStatus is returned by UpdateJobStatus for a status outside
// the job lifecycle.
var ErrInvalidStatus = errors.New("feedback: invalid job status")

// Orchestrator creates and tracks retraining jobs. Jobs are created in
// pending; the external training worker reports the transitions to
// running, completed, or failed through UpdateJobStatus.
type Orchestrator struct {
	buffer   *Buffer
	store    Store
	notifier *TrainerNotifier
	jobs     jobIndex
}

// NewOrchestrator creates an orchestrator over the buffer. store and
// notifier are optional; when a store is supplied, existing jobs are
// loaded so status history survives restarts.
func NewOrchestrator(buffer *Buffer, store Store, notifier *TrainerNotifier) (*Orchestrator, error) {
	o := &Orchestrator{
		buffer:   buffer,
		store:    store,
		notifier: notifier,
	}
	o.jobs.init()

	if store != nil {
		jobs, err := store.LoadJobs()
		if err != nil {
			return nil, err
		}
		sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.Before(jobs[j].CreatedAt) })
		for i := range jobs {
			o.jobs.add(&jobs[i])
		}
	}

	return o, nil
}

// TriggerRetraining creates a retraining job when the buffer has reached
// its threshold. The unprocessed snapshot and the processed marks are
// atomic with respect to concurrent AddFeedback calls; the created job
// records exactly the snapshot IDs and their count. Returns false, with
// no side effects, when the threshold is not met.
func (o *Orchestrator) TriggerRetraining() bool {
	ids, ok := o.buffer.ConsumeForRetraining()
	if !ok {
		logging.Debug().
			Int("unprocessed", o.buffer.UnprocessedCount()).
			Int("threshold", o.buffer.Threshold()).
			Msg("retraining threshold not met")
		return false
	}

	job := &models.RetrainingJob{
		JobID:         newJobID(),
		Status:        models.JobStatusPending,
		FeedbackCount: len(ids),
		FeedbackIDs:   ids,
		CreatedAt:     time.Now().UTC(),
	}
	o.jobs.add(job)

	if o.store != nil {
		if err := o.store.SaveJob(job); err != nil {
			logging.Error().Err(err).Str("job_id", job.JobID).Msg("job persist failed")
		}
	}

	metrics.RetrainingJobs.WithLabelValues(string(models.JobStatusPending)).Inc()
	logging.Info().
		Str("job_id", job.JobID).
		Int("feedback_count", job.FeedbackCount).
		Msg("retraining job created")

	if o.notifier != nil {
		// Dispatch must not block the trigger path; the worker polls job
		// state on its own schedule if the webhook is down.
		go func(j models.RetrainingJob) {
			if err := o.notifier.Dispatch(context.Background(), &j); err != nil {
				metrics.TrainerDispatchFailures.Inc()
				logging.Error().Err(err).Str("job_id", j.JobID).Msg("trainer dispatch failed")
			}
		}(*job)
	}

	return true
}

// UpdateJobStatus records a status reported by the training worker.
// Reporting the job's current status again is a no-op, so worker retries
// are safe. Running stamps the training start; completed and failed stamp
// the training end and attach metrics when provided.
func (o *Orchestrator) UpdateJobStatus(jobID string, status models.JobStatus, m *models.TrainingMetrics) error {
	if !status.Valid() || status == models.JobStatusPending {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	job, changed := o.jobs.update(jobID, func(job *models.RetrainingJob) bool {
		if job.Status == status {
			return false
		}
		now := time.Now().UTC()
		switch status {
		case models.JobStatusRunning:
			job.TrainingStart = &now
		case models.JobStatusCompleted, models.JobStatusFailed:
			if job.TrainingStart == nil {
				job.TrainingStart = &now
			}
			job.TrainingEnd = &now
			if m != nil {
				job.Metrics = m
			}
		}
		job.Status = status
		return true
	})
	if job == nil {
		return fmt.Errorf("%w: %q", ErrUnknownJob, jobID)
	}
	if !changed {
		return nil
	}

	if o.store != nil {
		if err := o.store.SaveJob(job); err != nil {
			logging.Error().Err(err).Str("job_id", job.JobID).Msg("job persist failed")
		}
	}

	metrics.RetrainingJobs.WithLabelValues(string(status)).Inc()
	logging.Info().
		Str("job_id", jobID).
		Str("status", string(status)).
		Msg("retraining job status updated")

	return nil
}

// RetrainingStatus aggregates job counts by status.
func (o *Orchestrator) RetrainingStatus() models.RetrainingStatus {
	return o.jobs.aggregate()
}

// Jobs returns a snapshot of all jobs, oldest first.
func (o *Orchestrator) Jobs() []models.RetrainingJob {
	return o.jobs.snapshot()
}

// Job returns a copy of one job by ID.
func (o *Orchestrator) Job(jobID string) (models.RetrainingJob, bool) {
	return o.jobs.get(jobID)
}

// newJobID builds a unique, time-derived job identifier.
func newJobID() string {
	return fmt.Sprintf("job-%d", time.Now().UTC().UnixNano())
}
