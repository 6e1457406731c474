// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sentinelshield/sentinelshield/internal/feedback"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// TriggerRetraining force-checks the buffer threshold. Returns 202 with
// the new job when one was created, 200 with triggered=false otherwise.
func (h *Handler) TriggerRetraining(w http.ResponseWriter, r *http.Request) {
	if !h.orchestrator.TriggerRetraining() {
		stats := h.buffer.Statistics()
		respondData(w, http.StatusOK, map[string]interface{}{
			"triggered":              false,
			"unprocessed_count":      stats.Unprocessed,
			"feedback_until_retrain": stats.FeedbackUntilRetrain,
		})
		return
	}

	jobs := h.orchestrator.Jobs()
	respondData(w, http.StatusAccepted, map[string]interface{}{
		"triggered": true,
		"job":       jobs[len(jobs)-1],
	})
}

// RetrainingStatus reports aggregate job counts.
func (h *Handler) RetrainingStatus(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.orchestrator.RetrainingStatus())
}

// ListRetrainingJobs returns all jobs, oldest first.
func (h *Handler) ListRetrainingJobs(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"jobs": h.orchestrator.Jobs(),
	})
}

// GetRetrainingJob returns one job by ID.
func (h *Handler) GetRetrainingJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, ok := h.orchestrator.Job(jobID)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "retraining job not found", nil)
		return
	}
	respondData(w, http.StatusOK, job)
}

// UpdateRetrainingJobRequest is the body of PATCH /retraining/jobs/{jobID}.
// The training worker reports lifecycle transitions through it.
type UpdateRetrainingJobRequest struct {
	Status  string                  `json:"status" validate:"required,oneof=running completed failed"`
	Metrics *models.TrainingMetrics `json:"metrics,omitempty"`
}

// UpdateRetrainingJob records a status reported by the training worker.
func (h *Handler) UpdateRetrainingJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	var req UpdateRetrainingJobRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	err := h.orchestrator.UpdateJobStatus(jobID, models.JobStatus(req.Status), req.Metrics)
	if err != nil {
		switch {
		case errors.Is(err, feedback.ErrUnknownJob):
			respondError(w, http.StatusNotFound, "NOT_FOUND", "retraining job not found", nil)
		case errors.Is(err, feedback.ErrInvalidStatus):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid job status", nil)
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update job", err)
		}
		return
	}

	job, _ := h.orchestrator.Job(jobID)
	respondData(w, http.StatusOK, job)
}
