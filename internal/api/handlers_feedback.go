// SentinelShield - Multi-Tenant Security Monitoring Backend
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentinelshield/sentinelshield

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sentinelshield/sentinelshield/internal/feedback"
	"github.com/sentinelshield/sentinelshield/internal/models"
)

// SubmitFeedbackRequest is the body of POST /api/v1/feedback.
type SubmitFeedbackRequest struct {
	ThreatLogID             string  `json:"threat_log_id" validate:"required,max=128"`
	OriginalClassification  string  `json:"original_classification" validate:"required,oneof=threat anomaly normal"`
	CorrectedClassification string  `json:"corrected_classification" validate:"required,oneof=threat anomaly normal"`
	ConfidenceScore         float64 `json:"confidence_score"`
	Reason                  string  `json:"reason" validate:"max=2000"`
}

// SubmitFeedback records one analyst correction. When the submission
// pushes the buffer to its threshold a retraining job is created in the
// same request.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication", nil)
		return
	}

	var req SubmitFeedbackRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	item := models.FeedbackItem{
		ThreatLogID:             req.ThreatLogID,
		OriginalClassification:  models.Classification(req.OriginalClassification),
		CorrectedClassification: models.Classification(req.CorrectedClassification),
		ConfidenceScore:         req.ConfidenceScore,
		Reason:                  req.Reason,
		AnalystID:               claims.UserID,
	}

	if err := h.buffer.AddFeedback(item); err != nil {
		if errors.Is(err, feedback.ErrInvalidClassification) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid classification", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to record feedback", err)
		return
	}

	h.router.BroadcastAudit(models.AuditEvent{
		EventType:      models.AuditEventFeedbackSubmitted,
		ResourceType:   "threat_log",
		UserID:         claims.UserID,
		OrganizationID: claims.OrganizationID,
		Timestamp:      time.Now().UTC(),
		Details: map[string]any{
			"threat_log_id":            req.ThreatLogID,
			"corrected_classification": req.CorrectedClassification,
		},
	})

	triggered := h.orchestrator.TriggerRetraining()
	if triggered {
		h.router.BroadcastAudit(models.AuditEvent{
			EventType:      models.AuditEventRetrainingTriggered,
			ResourceType:   "retraining_job",
			OrganizationID: claims.OrganizationID,
			Timestamp:      time.Now().UTC(),
			Details:        map[string]any{"source": "feedback_threshold"},
		})
	}

	stats := h.buffer.Statistics()
	respondData(w, http.StatusCreated, map[string]interface{}{
		"accepted":               true,
		"retraining_triggered":   triggered,
		"unprocessed_count":      stats.Unprocessed,
		"feedback_until_retrain": stats.FeedbackUntilRetrain,
	})
}

// FeedbackStatistics reports buffer totals and the correction rate.
func (h *Handler) FeedbackStatistics(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.buffer.Statistics())
}

// FeedbackDistribution reports unprocessed counts per corrected
// classification.
func (h *Handler) FeedbackDistribution(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"distribution": h.buffer.ClassificationDistribution(),
	})
}
